/*******************************************************************************
*
* Copyright 2024 Linden10
*
* This file is part of Eagls-engine-tool.
*
* Eagls-engine-tool is free software: you can redistribute it and/or modify it
* under the terms of the GNU General Public License as published by the Free
* Software Foundation, either version 3 of the License, or (at your option)
* any later version.
*
* Eagls-engine-tool is distributed in the hope that it will be useful, but
* WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY
* or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for
* more details.
*
* You should have received a copy of the GNU General Public License along
* with Eagls-engine-tool. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/Linden10/Eagls-engine-tool/cipher"
)

//buildRaw assembles an unencrypted DAT buffer for a single section named
//"TEXT" holding body, via Create, and leaves it unencrypted so tests can
//inspect scanning behavior directly; Open is exercised separately with the
//cipher applied on top.
func buildRaw(t *testing.T, body []byte) []byte {
	t.Helper()
	raw, err := Create([]Section{{Name: "TEXT"}}, [][]byte{body})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return raw
}

//TestExtractTextKnownAnswer is the format notes' known-answer vector: a
//section whose body is a quoted payload of bytes 40 00 41 yields exactly
//one sidecar triplet whose first two lines are the lowercase hex of those
//inner bytes, followed by a blank line.
func TestExtractTextKnownAnswer(t *testing.T) {
	body := append([]byte{'"'}, 0x40, 0x00, 0x41)
	body = append(body, '"')
	raw := buildRaw(t, body)

	encrypted := append([]byte(nil), raw...)
	encryptForOpen(encrypted)

	c, err := Open(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	got := string(c.ExtractText())
	want := "400041\n400041\n\n"
	if got != want {
		t.Fatalf("ExtractText() = %q, want %q", got, want)
	}
}

func TestExtractSkipsIdentifiers(t *testing.T) {
	body := []byte(`"SYSTEM.CALL(1,2):=end" "Hello, player."`)
	raw := buildRaw(t, body)
	encrypted := append([]byte(nil), raw...)
	encryptForOpen(encrypted)

	c, err := Open(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	out := string(c.ExtractText())
	if bytes.Contains([]byte(out), []byte("53595354454d")) {
		t.Fatalf("identifier payload leaked into sidecar: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("48656c6c6f2c20706c617965722e")) {
		t.Fatalf("ordinary text payload missing from sidecar: %q", out)
	}
}

func TestReplaceTextRoundTrip(t *testing.T) {
	body := []byte(`"Hello, player." # a trailing comment`)
	raw := buildRaw(t, body)
	encrypted := append([]byte(nil), raw...)
	encryptForOpen(encrypted)

	c, err := Open(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	sidecar := c.ExtractText()

	var warned []string
	if err := c.ReplaceText(sidecar, func(m string) { warned = append(warned, m) }); err != nil {
		t.Fatal(err)
	}
	if len(warned) != 0 {
		t.Fatalf("unexpected warnings for an unedited sidecar: %v", warned)
	}

	got, err := c.SectionData("TEXT")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("replaying an unedited sidecar changed the section: got %q, want %q", got, body)
	}
}

func TestReplaceTextSkipsLongerReplacement(t *testing.T) {
	body := []byte(`"Hi."`)
	raw := buildRaw(t, body)
	encrypted := append([]byte(nil), raw...)
	encryptForOpen(encrypted)

	c, err := Open(encrypted)
	if err != nil {
		t.Fatal(err)
	}

	origHex := hexOf("Hi.")
	replHex := hexOf("Hi. much longer now")
	sidecar := []byte(origHex + "\n" + replHex + "\n\n")

	var warned []string
	if err := c.ReplaceText(sidecar, func(m string) { warned = append(warned, m) }); err != nil {
		t.Fatal(err)
	}
	if len(warned) != 1 {
		t.Fatalf("expected exactly one warning, got %v", warned)
	}

	got, err := c.SectionData("TEXT")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("a skipped-too-long replacement must leave the section untouched: got %q, want %q", got, body)
	}
}

func TestSectionsPreserveTableOrder(t *testing.T) {
	names := []string{"OPENING", "CHAPTER1", "ENDING"}
	bodies := make([][]byte, len(names))
	sections := make([]Section, len(names))
	for i, n := range names {
		sections[i] = Section{Name: n}
		bodies[i] = []byte("body of " + n)
	}
	raw, err := Create(sections, bodies)
	if err != nil {
		t.Fatal(err)
	}
	encrypted := append([]byte(nil), raw...)
	encryptForOpen(encrypted)

	c, err := Open(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Sections()
	if len(got) != len(names) {
		t.Fatalf("section count = %d, want %d", len(got), len(names))
	}
	for i, s := range got {
		if s.Name != names[i] {
			t.Fatalf("section %d = %q, want %q", i, s.Name, names[i])
		}
	}
}

func TestOpenRejectsUndersizedBuffer(t *testing.T) {
	_, err := Open(make([]byte, SectionTableSize))
	if err == nil {
		t.Fatal("expected an error opening a buffer no larger than the section table")
	}
}

//encryptForOpen applies the same involution Open expects to undo, letting
//tests build plaintext via Create and feed Open something that looks like a
//real on-disk file.
func encryptForOpen(buf []byte) {
	cipher.ScriptBody(buf)
}

func hexOf(s string) string {
	return hex.EncodeToString([]byte(s))
}
