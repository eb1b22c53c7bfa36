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

//Package script reads and writes the DAT script container: a fixed-size
//section table followed by a text region, and the extract/replace
//round-trip used to pull translatable strings out to a sidecar file and
//write them back without shifting any offset.
package script

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/Linden10/Eagls-engine-tool/cipher"
	"github.com/Linden10/Eagls-engine-tool/eaglserr"
)

const (
	//SectionTableSize is the fixed width, in bytes, of the section table
	//region at the start of every DAT buffer.
	SectionTableSize = 0xE10
	//TextOffset is where the text region begins; numerically equal to
	//SectionTableSize.
	TextOffset = SectionTableSize
	//SectionNameSize is the width of a section's NUL-padded name field.
	SectionNameSize = 0x20
	//SectionEntrySize is the on-disk width of one section-table record
	//(SectionNameSize + 4).
	SectionEntrySize = 0x24
	//MaxSections is the largest section count the table can hold.
	MaxSections = SectionTableSize / SectionEntrySize
	//maxPayloadLen is the largest accepted quoted/comment inner length.
	maxPayloadLen = 1000
)

//identifierPattern matches program identifiers and punctuation that must
//not be treated as translatable text, even though they appear quoted or
//commented.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.%@(),:=\\]+$`)

//Section describes one table entry resolved to an absolute byte range.
type Section struct {
	Name   string
	Offset int //absolute offset into the container buffer
	Size   int
}

//Container is a fully loaded DAT buffer plus its section map, rebuilt
//after every load or mutation.
type Container struct {
	buf     []byte
	order   []string
	section map[string]Section
}

//Open loads raw bytes, applies the script-body cipher, and indexes the
//section table. A zero-name slot terminates the table walk.
func Open(raw []byte) (*Container, error) {
	buf := append([]byte(nil), raw...)
	cipher.ScriptBody(buf)

	c := &Container{buf: buf, section: make(map[string]Section)}
	if err := c.rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) rebuild() error {
	c.order = nil
	c.section = make(map[string]Section)

	if len(c.buf) <= SectionTableSize {
		return eaglserr.New(eaglserr.InvalidContainer, nil)
	}

	type rawSection struct {
		name   string
		relOff int
	}
	var raws []rawSection
	for off := 0; off+SectionEntrySize <= SectionTableSize; off += SectionEntrySize {
		rec := c.buf[off : off+SectionEntrySize]
		if rec[0] == 0 {
			break
		}
		name := cString(rec[:SectionNameSize])
		relOff := int(binary.LittleEndian.Uint32(rec[SectionNameSize : SectionNameSize+4]))
		raws = append(raws, rawSection{name, relOff})
	}

	for i, r := range raws {
		abs := TextOffset + r.relOff
		size := len(c.buf) - abs
		if i+1 < len(raws) {
			size = raws[i+1].relOff - r.relOff
		}
		if abs < TextOffset || abs+size > len(c.buf) {
			return eaglserr.WithEntry(eaglserr.FormatError, r.name, nil)
		}
		c.order = append(c.order, r.name)
		c.section[r.name] = Section{Name: r.name, Offset: abs, Size: size}
	}
	return nil
}

//Sections returns section descriptors in table order.
func (c *Container) Sections() []Section {
	out := make([]Section, len(c.order))
	for i, name := range c.order {
		out[i] = c.section[name]
	}
	return out
}

//SectionData returns a copy of one named section's bytes.
func (c *Container) SectionData(name string) ([]byte, error) {
	s, ok := c.section[name]
	if !ok {
		return nil, eaglserr.WithEntry(eaglserr.NotFound, name, nil)
	}
	return append([]byte(nil), c.buf[s.Offset:s.Offset+s.Size]...), nil
}

//scanPayloads walks data exactly as the reference scanner does: at each
//position it looks for a double-quoted or line-comment span; a span whose
//inner length exceeds maxPayloadLen is skipped (cursor advances by one);
//a properly closed span within the limit invokes fn with its inner byte
//range and advances the cursor past the closing delimiter, even when fn is
//not called because the span ran off the end of data unterminated.
func scanPayloads(data []byte, fn func(start, end int)) {
	i := 0
	for i < len(data) {
		j := -1
		switch data[i] {
		case '"':
			j = i + 1
			for j < len(data) && data[j] != '"' {
				j++
			}
		case '#':
			j = i + 1
			for j < len(data) && !(data[j] == '\n' || (data[j] == '\r' && j+1 < len(data) && data[j+1] == '\n')) {
				j++
			}
		}

		if j != -1 && j-i-1 <= maxPayloadLen {
			if j < len(data) {
				fn(i+1, j)
			}
			i = j + 1
		} else {
			i++
		}
	}
}

//ExtractText scans every section in table order for quoted/commented
//payloads and writes a three-line sidecar record (hex key, hex key again,
//blank) for each accepted payload, skipping pure program identifiers.
func (c *Container) ExtractText() []byte {
	var out bytes.Buffer
	for _, name := range c.order {
		s := c.section[name]
		data := c.buf[s.Offset : s.Offset+s.Size]

		scanPayloads(data, func(start, end int) {
			payload := data[start:end]
			if len(payload) > 0 && !identifierPattern.Match(payload) {
				encoded := hex.EncodeToString(payload)
				fmt.Fprintf(&out, "%s\n%s\n\n", encoded, encoded)
			}
		})
	}
	return out.Bytes()
}

//ReplaceText parses a sidecar produced by ExtractText (optionally hand
//edited on its second line of each triplet) and rewrites every section's
//matching payloads in place. Offsets and the section table are never
//touched, so the container's size is unchanged. A replacement longer than
//its original is skipped with a message on warn, per the in-place
//protocol's no-growth rule.
func (c *Container) ReplaceText(sidecar []byte, warn func(string)) error {
	lines := splitLines(sidecar)
	if len(lines)%3 != 0 {
		return eaglserr.New(eaglserr.FormatError, fmt.Errorf("sidecar line count %d is not a multiple of 3", len(lines)))
	}

	replacements := make(map[string][]byte)
	for i := 0; i < len(lines); i += 3 {
		orig, err := hex.DecodeString(lines[i])
		if err != nil {
			return eaglserr.New(eaglserr.FormatError, err)
		}
		repl, err := hex.DecodeString(lines[i+1])
		if err != nil {
			return eaglserr.New(eaglserr.FormatError, err)
		}
		replacements[string(orig)] = repl
	}

	for _, name := range c.order {
		s := c.section[name]
		data := c.buf[s.Offset : s.Offset+s.Size]

		scanPayloads(data, func(start, end int) {
			key := string(data[start:end])
			repl, found := replacements[key]
			if !found {
				return
			}
			if len(repl) > len(key) {
				if warn != nil {
					warn(fmt.Sprintf("replacement for %q is longer than the original, skipping", key))
				}
				return
			}
			copy(data[start:end], repl)
			for j := start + len(repl); j < end; j++ {
				data[j] = 0
			}
		})
	}
	return nil
}

//Bytes applies the script-body cipher (an involution, so this re-encrypts)
//and returns the final on-disk buffer, ready to write out.
func (c *Container) Bytes() []byte {
	out := append([]byte(nil), c.buf...)
	cipher.ScriptBody(out)
	return out
}

//Create builds a fresh, unencrypted DAT buffer from an ordered list of
//named sections. The caller is responsible for encrypting the result (via
//cipher.ScriptBody) before writing it to disk, mirroring Open/Bytes.
func Create(sections []Section, bodies [][]byte) ([]byte, error) {
	if len(sections) != len(bodies) {
		return nil, eaglserr.New(eaglserr.FormatError, fmt.Errorf("sections/bodies length mismatch"))
	}
	if len(sections) > MaxSections {
		return nil, eaglserr.New(eaglserr.CapacityExceeded, nil)
	}

	seen := make(map[string]bool, len(sections))
	textSize := 0
	for i, s := range sections {
		if len(s.Name) >= SectionNameSize {
			return nil, eaglserr.WithEntry(eaglserr.FormatError, s.Name, nil)
		}
		if seen[s.Name] {
			return nil, eaglserr.WithEntry(eaglserr.FormatError, s.Name, fmt.Errorf("duplicate section name"))
		}
		seen[s.Name] = true
		textSize += len(bodies[i])
	}

	buf := make([]byte, TextOffset+textSize)
	offset := TextOffset
	tableOff := 0
	for i, s := range sections {
		copy(buf[tableOff:tableOff+SectionNameSize], []byte(s.Name))
		binary.LittleEndian.PutUint32(buf[tableOff+SectionNameSize:tableOff+SectionNameSize+4], uint32(offset-TextOffset))
		copy(buf[offset:offset+len(bodies[i])], bodies[i])
		offset += len(bodies[i])
		tableOff += SectionEntrySize
	}
	return buf, nil
}

func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}

//splitLines mirrors std::getline over a text file: splits on '\n' and
//drops the single trailing empty field a final newline leaves behind,
//without losing a genuine blank line earlier in the file (the blank third
//line of every sidecar triplet).
func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
