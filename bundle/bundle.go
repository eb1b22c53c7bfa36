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

//Package bundle repackages already-extracted, already-decrypted EAGLS
//assets (script sections, unwrapped graphics) into portable container
//formats for downstream tools. None of these functions touch the EAGLS
//ciphers or LZSS codec; they operate on plain byte slices the core has
//already produced.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"time"

	"github.com/blakesmith/ar"
	cpio "github.com/surma/gocpio"
)

//File is one member of a bundle: a flat name and its content. Bundles are
//always flat (no subdirectories), matching the way a PAK directory or a DAT
//section table names its members.
type File struct {
	Name string
	Body []byte
}

//epoch is the fixed modification time stamped on every entry, so that two
//runs over the same inputs produce byte-identical archives.
var epoch = time.Unix(0, 0)

//WriteTar writes files as a POSIX tar archive.
func WriteTar(w io.Writer, files []File) error {
	tw := tar.NewWriter(w)
	for _, f := range files {
		err := tw.WriteHeader(&tar.Header{
			Name:       f.Name,
			Size:       int64(len(f.Body)),
			Typeflag:   tar.TypeReg,
			Mode:       0644,
			ModTime:    epoch,
			AccessTime: epoch,
			ChangeTime: epoch,
		})
		if err != nil {
			tw.Close()
			return err
		}
		if _, err := tw.Write(f.Body); err != nil {
			tw.Close()
			return err
		}
	}
	return tw.Close()
}

//WriteTarGZ is identical to WriteTar, but gzip-compresses the result.
func WriteTarGZ(w io.Writer, files []File) error {
	gzw := gzip.NewWriter(w)
	if err := WriteTar(gzw, files); err != nil {
		gzw.Close()
		return err
	}
	return gzw.Close()
}

//WriteAr writes files as a flat Unix ar(1) archive, for handing a small
//number of assets to tools that expect one.
func WriteAr(w io.Writer, files []File) error {
	aw := ar.NewWriter(w)
	if err := aw.WriteGlobalHeader(); err != nil {
		return err
	}
	for _, f := range files {
		err := aw.WriteHeader(&ar.Header{
			Name:    f.Name,
			Size:    int64(len(f.Body)),
			Mode:    0644,
			ModTime: epoch,
		})
		if err != nil {
			return err
		}
		if _, err := aw.Write(f.Body); err != nil {
			return err
		}
	}
	return nil
}

//WriteCPIO writes files as a "newc"-format cpio archive, delegating the
//record format to the library instead of hand-rolling it the way the
//teacher project's RPM payload writer does.
func WriteCPIO(w io.Writer, files []File) error {
	cw := cpio.NewWriter(w)
	for _, f := range files {
		err := cw.WriteHeader(&cpio.Header{
			Name: f.Name,
			Type: cpio.TYPE_REG,
			Mode: 0644,
			Size: int64(len(f.Body)),
		})
		if err != nil {
			cw.Close()
			return err
		}
		if _, err := cw.Write(f.Body); err != nil {
			cw.Close()
			return err
		}
	}
	return cw.Close()
}
