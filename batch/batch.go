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

//Package batch runs a multi-archive, multi-script job described by a single
//TOML manifest: extract a list of PAKs, pull sidecar text out of a list of
//DATs, and optionally bundle everything extracted into one export archive.
//A failing step does not abort the run; eaglserr.Collector accumulates
//every failure so the job can report a success/failure count at the end.
package batch

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Linden10/Eagls-engine-tool/bundle"
	"github.com/Linden10/Eagls-engine-tool/eaglserr"
	"github.com/Linden10/Eagls-engine-tool/pak"
	"github.com/Linden10/Eagls-engine-tool/script"
)

//ArchiveStep only needs a nice exported name for the TOML parser to
//produce more meaningful error messages on malformed input data.
type ArchiveStep struct {
	Path      string `toml:"path"` //the .pak path; its sibling .idx is derived automatically
	ExtractTo string `toml:"extract_to"`
}

//ScriptStep only needs a nice exported name for the TOML parser to produce
//more meaningful error messages on malformed input data.
type ScriptStep struct {
	Path      string `toml:"path"`
	SidecarTo string `toml:"sidecar_to"`
}

//BundleStep only needs a nice exported name for the TOML parser to produce
//more meaningful error messages on malformed input data.
type BundleStep struct {
	Format string `toml:"format"` //"tar" | "targz" | "ar" | "cpio"
	Path   string `toml:"path"`
}

//Manifest is the root of a batch TOML document.
type Manifest struct {
	Archive []ArchiveStep
	Script  []ScriptStep
	Bundle  BundleStep
}

//Load decodes a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	blob, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, eaglserr.New(eaglserr.IoError, err)
	}
	var m Manifest
	if _, err := toml.Decode(string(blob), &m); err != nil {
		return nil, eaglserr.New(eaglserr.FormatError, err)
	}
	return &m, nil
}

//Run executes every step of the manifest, collecting extracted files for
//an optional final bundle step. It never stops early: one step's failure is
//recorded on the collector and the run continues with the next step.
func Run(m *Manifest, c *eaglserr.Collector) error {
	var bundled []bundle.File

	for _, step := range m.Archive {
		idxPath := step.Path[:len(step.Path)-len(filepath.Ext(step.Path))] + ".idx"
		a, err := pak.Open(idxPath, step.Path)
		if err != nil {
			c.Add(err)
			continue
		}
		for _, entry := range a.Entries() {
			body, err := a.Extract(entry.Name)
			if err != nil {
				c.Add(err)
				continue
			}
			outPath := filepath.Join(step.ExtractTo, entry.Name)
			if err := os.MkdirAll(filepath.Dir(outPath), 0777); err != nil {
				c.Add(eaglserr.New(eaglserr.IoError, err))
				continue
			}
			if err := ioutil.WriteFile(outPath, body, 0666); err != nil {
				c.Add(eaglserr.New(eaglserr.IoError, err))
				continue
			}
			bundled = append(bundled, bundle.File{Name: entry.Name, Body: body})
		}
	}

	for _, step := range m.Script {
		raw, err := ioutil.ReadFile(step.Path)
		if err != nil {
			c.Add(eaglserr.New(eaglserr.IoError, err))
			continue
		}
		container, err := script.Open(raw)
		if err != nil {
			c.Add(err)
			continue
		}
		sidecar := container.ExtractText()
		if err := ioutil.WriteFile(step.SidecarTo, sidecar, 0666); err != nil {
			c.Add(eaglserr.New(eaglserr.IoError, err))
			continue
		}
		bundled = append(bundled, bundle.File{Name: filepath.Base(step.SidecarTo), Body: sidecar})
	}

	if m.Bundle.Path != "" {
		var buf bytes.Buffer
		var err error
		switch m.Bundle.Format {
		case "tar", "":
			err = bundle.WriteTar(&buf, bundled)
		case "targz":
			err = bundle.WriteTarGZ(&buf, bundled)
		case "ar":
			err = bundle.WriteAr(&buf, bundled)
		case "cpio":
			err = bundle.WriteCPIO(&buf, bundled)
		default:
			err = eaglserr.New(eaglserr.FormatError, nil)
		}
		if err != nil {
			c.Add(err)
		} else if err := ioutil.WriteFile(m.Bundle.Path, buf.Bytes(), 0666); err != nil {
			c.Add(eaglserr.New(eaglserr.IoError, err))
		}
	}

	return nil
}
