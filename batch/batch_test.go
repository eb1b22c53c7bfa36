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

package batch

import (
	"archive/tar"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Linden10/Eagls-engine-tool/cipher"
	"github.com/Linden10/Eagls-engine-tool/eaglserr"
	"github.com/Linden10/Eagls-engine-tool/pak"
	"github.com/Linden10/Eagls-engine-tool/script"
)

func TestLoadParsesManifest(t *testing.T) {
	doc := `
[[archive]]
path = "game.pak"
extract_to = "out/archive"

[[script]]
path = "title.dat"
sidecar_to = "out/title.sidecar"

[bundle]
format = "tar"
path = "out/bundle.tar"
`
	m, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Archive) != 1 || m.Archive[0].Path != "game.pak" {
		t.Fatalf("archive steps = %+v", m.Archive)
	}
	if len(m.Script) != 1 || m.Script[0].Path != "title.dat" {
		t.Fatalf("script steps = %+v", m.Script)
	}
	if m.Bundle.Format != "tar" || m.Bundle.Path != "out/bundle.tar" {
		t.Fatalf("bundle step = %+v", m.Bundle)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(strings.NewReader("this is not [valid")); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir, err := ioutil.TempDir("", "batch-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	idxPath := filepath.Join(dir, "GAME.idx")
	pakPath := filepath.Join(dir, "GAME.pak")
	if err := pak.Create(idxPath, pakPath, []pak.Member{
		{Name: "README.TXT", Body: []byte("hello from the archive")},
	}); err != nil {
		t.Fatal(err)
	}

	datPath := filepath.Join(dir, "TITLE.dat")
	raw, err := script.Create([]script.Section{{Name: "TEXT"}}, [][]byte{[]byte(`"Hello, player."`)})
	if err != nil {
		t.Fatal(err)
	}
	cipher.ScriptBody(raw)
	if err := ioutil.WriteFile(datPath, raw, 0666); err != nil {
		t.Fatal(err)
	}

	extractDir := filepath.Join(dir, "extracted")
	sidecarPath := filepath.Join(dir, "title.sidecar")
	bundlePath := filepath.Join(dir, "export.tar")

	m := &Manifest{
		Archive: []ArchiveStep{{Path: pakPath, ExtractTo: extractDir}},
		Script:  []ScriptStep{{Path: datPath, SidecarTo: sidecarPath}},
		Bundle:  BundleStep{Format: "tar", Path: bundlePath},
	}

	var c eaglserr.Collector
	if err := Run(m, &c); err != nil {
		t.Fatal(err)
	}
	if !c.OK() {
		t.Fatalf("Run recorded unexpected failures: %v", c.Errors)
	}

	got, err := ioutil.ReadFile(filepath.Join(extractDir, "README.TXT"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello from the archive" {
		t.Fatalf("extracted file = %q", got)
	}

	sidecar, err := ioutil.ReadFile(sidecarPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(sidecar) == 0 {
		t.Fatal("sidecar file is empty")
	}

	f, err := os.Open(bundlePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tr := tar.NewReader(f)
	var names []string
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	if len(names) != 2 {
		t.Fatalf("bundle member names = %v, want 2 entries", names)
	}
}

func TestRunCollectsFailuresWithoutAborting(t *testing.T) {
	dir, err := ioutil.TempDir("", "batch-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	m := &Manifest{
		Archive: []ArchiveStep{{Path: filepath.Join(dir, "missing.pak"), ExtractTo: dir}},
		Script:  []ScriptStep{{Path: filepath.Join(dir, "missing.dat"), SidecarTo: filepath.Join(dir, "x.sidecar")}},
	}
	var c eaglserr.Collector
	if err := Run(m, &c); err != nil {
		t.Fatal(err)
	}
	if c.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (one per missing-file step)", c.Count())
	}
}
