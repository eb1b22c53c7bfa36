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

//Package pak reads and writes the paired .pak/.idx archive container: a
//fixed-size, ciphered directory (.idx) pointing into a flat data file
//(.pak). Entries are decrypted on access by filename extension: .dat
//bodies go through cipher.ScriptBody, .gr bodies through cipher.Graphics,
//everything else is passed through untouched.
package pak

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"strings"

	"github.com/Linden10/Eagls-engine-tool/cipher"
	"github.com/Linden10/Eagls-engine-tool/eaglserr"
)

const (
	//NameSize is the width, in bytes, of an entry's NUL-padded filename.
	NameSize = 0x18
	//EntrySize is the on-disk width of one directory entry (NameSize + 8 +
	//4 + 4).
	EntrySize = 0x28
	//IndexSize is the fixed total length of every .idx file.
	IndexSize = 0x61A84
	//offsetAdjust is the constant the original writer adds to every
	//recorded logical offset; reading a body requires subtracting it back
	//out. See DESIGN.md for the source-confirmed justification.
	offsetAdjust = 0x174B
	//MaxEntries is the largest directory entry count that fits IndexSize.
	MaxEntries = (IndexSize - 4) / EntrySize
)

//Entry describes one archive member as recorded in the directory.
type Entry struct {
	Name   string
	Offset uint64 //logical offset, i.e. actual+offsetAdjust
	Size   uint32
	Flags  uint32
}

//Archive is an opened PAK/IDX pair. The data file is not read until an
//entry is extracted; the directory is fully decrypted and indexed at Open
//time.
type Archive struct {
	pakPath string
	order   []string
	entries map[string]Entry
}

//Open loads idxPath, decrypts its directory in place and indexes it by
//name. pakPath is recorded for later Extract calls but is not opened here.
func Open(idxPath, pakPath string) (*Archive, error) {
	raw, err := ioutil.ReadFile(idxPath)
	if err != nil {
		return nil, eaglserr.New(eaglserr.IoError, err)
	}
	if len(raw) != IndexSize {
		return nil, eaglserr.WithOffset(eaglserr.InvalidContainer, int64(len(raw)), nil)
	}

	cipher.Directory(raw)

	a := &Archive{pakPath: pakPath, entries: make(map[string]Entry)}
	for off := 0; off+EntrySize <= IndexSize-4; off += EntrySize {
		rec := raw[off : off+EntrySize]
		if rec[0] == 0 {
			break
		}
		name := cString(rec[:NameSize])
		entry := Entry{
			Name:   name,
			Offset: binary.LittleEndian.Uint64(rec[NameSize : NameSize+8]),
			Size:   binary.LittleEndian.Uint32(rec[NameSize+8 : NameSize+12]),
			Flags:  binary.LittleEndian.Uint32(rec[NameSize+12 : NameSize+16]),
		}
		a.order = append(a.order, name)
		a.entries[name] = entry
	}
	return a, nil
}

//Entries returns the directory in on-disk order.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.order))
	for i, name := range a.order {
		out[i] = a.entries[name]
	}
	return out
}

//Extract reads and, unless the name's extension says otherwise, decrypts
//one archive member by exact name match.
func (a *Archive) Extract(name string) ([]byte, error) {
	entry, ok := a.entries[name]
	if !ok {
		return nil, eaglserr.WithEntry(eaglserr.NotFound, name, nil)
	}

	f, err := ioutil.ReadFile(a.pakPath)
	if err != nil {
		return nil, eaglserr.New(eaglserr.IoError, err)
	}

	start := entry.Offset - offsetAdjust
	end := start + uint64(entry.Size)
	if end > uint64(len(f)) {
		return nil, eaglserr.WithEntry(eaglserr.InvalidContainer, name, nil)
	}

	body := append([]byte(nil), f[start:end]...)
	decrypt(body, name)
	return body, nil
}

//decrypt applies the per-extension cipher dispatch in place.
func decrypt(body []byte, name string) {
	switch ext(name) {
	case "dat":
		cipher.ScriptBody(body)
	case "gr":
		cipher.Graphics(body)
	}
}

func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

//Member is one input to Create: a name and its plaintext body. Encryption
//by extension dispatch is applied by Create itself.
type Member struct {
	Name string
	Body []byte
}

//Create writes a fresh .pak/.idx pair for the given members, in the order
//given. It returns eaglserr.CapacityExceeded if len(members) exceeds
//MaxEntries.
func Create(idxPath, pakPath string, members []Member) error {
	if len(members) > MaxEntries {
		return eaglserr.New(eaglserr.CapacityExceeded, nil)
	}

	var pakBuf bytes.Buffer
	entries := make([]Entry, len(members))
	for i, m := range members {
		body := append([]byte(nil), m.Body...)
		encrypt(body, m.Name)

		entries[i] = Entry{
			Name:   m.Name,
			Offset: uint64(pakBuf.Len()) + offsetAdjust,
			Size:   uint32(len(body)),
		}
		pakBuf.Write(body)
	}

	idxBuf := make([]byte, IndexSize)
	for i, e := range entries {
		off := i * EntrySize
		copy(idxBuf[off:off+NameSize], []byte(e.Name))
		binary.LittleEndian.PutUint64(idxBuf[off+NameSize:off+NameSize+8], e.Offset)
		binary.LittleEndian.PutUint32(idxBuf[off+NameSize+8:off+NameSize+12], e.Size)
		binary.LittleEndian.PutUint32(idxBuf[off+NameSize+12:off+NameSize+16], e.Flags)
	}
	idxBuf[IndexSize-4] = 0x60

	cipher.Directory(idxBuf)

	if err := ioutil.WriteFile(pakPath, pakBuf.Bytes(), 0666); err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	if err := ioutil.WriteFile(idxPath, idxBuf, 0666); err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	return nil
}

//encrypt applies the per-extension cipher dispatch in place (the same
//involution used by decrypt; kept as a separate name for call-site clarity).
func encrypt(body []byte, name string) {
	decrypt(body, name)
}

//Append adds one new member to an existing archive, computing its logical
//offset from the current .pak length and rewriting the .idx.
func Append(idxPath, pakPath string, m Member) error {
	a, err := Open(idxPath, pakPath)
	if err != nil {
		return err
	}

	pakData, err := ioutil.ReadFile(pakPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}

	body := append([]byte(nil), m.Body...)
	encrypt(body, m.Name)

	newEntry := Entry{
		Name:   m.Name,
		Offset: uint64(len(pakData)) + offsetAdjust,
		Size:   uint32(len(body)),
	}

	members := make([]Member, 0, len(a.order)+1)
	for _, name := range a.order {
		e := a.entries[name]
		start := e.Offset - offsetAdjust
		end := start + uint64(e.Size)
		plain := append([]byte(nil), pakData[start:end]...)
		decrypt(plain, name)
		members = append(members, Member{Name: name, Body: plain})
	}
	members = append(members, Member{Name: newEntry.Name, Body: m.Body})

	return Create(idxPath, pakPath, members)
}

func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}
