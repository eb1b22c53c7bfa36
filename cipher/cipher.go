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

//Package cipher implements the EAGLS XOR-keystream transform and its three
//fixed call sites: the directory cipher (PAK/IDX), the script-body cipher
//(DAT) and the graphics cipher (GR). All three are involutions: encrypting
//an already-encrypted buffer with the same parameters restores the original
//bytes. None of the three keeps state between calls; every call seeds a
//fresh rng.CRT or rng.Lehmer from the buffer it is about to transform.
package cipher

import "github.com/Linden10/Eagls-engine-tool/rng"

//IndexKey is the 46-byte ASCII keystream source for the directory cipher.
const IndexKey = "1qaz2wsx3edc4rfv5tgb6yhn7ujm8ik,9ol.0p;/-@:^[]"

//EaglsKey is the 12-byte ASCII keystream source shared by the script-body
//and graphics ciphers.
const EaglsKey = "EAGLS_SYSTEM"

//drawer is satisfied by both rng.CRT and rng.Lehmer; it lets xor share one
//loop body across the CRT- and Lehmer-seeded call sites.
type drawer interface {
	Next() uint16
}

//crtDrawer adapts rng.CRT.Next (uint16) to drawer.
type crtDrawer struct{ g *rng.CRT }

func (d crtDrawer) Next() uint16 { return d.g.Next() }

//lehmerDrawer adapts rng.Lehmer.Next (byte) to drawer.
type lehmerDrawer struct{ g *rng.Lehmer }

func (d lehmerDrawer) Next() uint16 { return uint16(d.g.Next()) }

//xor applies the keystream to b[start:end:stride] in place: for each index
//i = start, start+stride, ... < end, b[i] ^= key[draw()%len(key)]. key must
//be non-empty. xor is its own inverse for fixed (draw sequence, region,
//stride, key).
func xor(b []byte, key string, d drawer, start, end, stride int) {
	if start < 0 {
		start = 0
	}
	if end > len(b) {
		end = len(b)
	}
	for i := start; i < end; i += stride {
		b[i] ^= key[int(d.Next())%len(key)]
	}
}

//Directory applies the PAK/IDX directory cipher to b in place. b must be
//the full index buffer; its last 4 bytes (the trailer) hold the
//little-endian seed and are never touched. Directory is self-inverse.
func Directory(b []byte) {
	total := len(b)
	if total < 4 {
		return
	}
	seed := uint32(b[total-4]) | uint32(b[total-3])<<8 | uint32(b[total-2])<<16 | uint32(b[total-1])<<24
	xor(b, IndexKey, crtDrawer{rng.NewCRT(seed)}, 0, total-4, 1)
}

//ScriptBody applies the DAT script-body cipher to b in place. The seed is
//the buffer's last byte, interpreted as signed 8-bit then sign-extended to
//32-bit — this is a deliberate, source-confirmed quirk, not a bug; see
//DESIGN.md. A buffer of 3602 bytes or fewer is left untouched.
//ScriptBody is self-inverse.
func ScriptBody(b []byte) {
	total := len(b)
	if total <= 3602 {
		return
	}
	seed := uint32(int32(int8(b[total-1])))
	xor(b, EaglsKey, crtDrawer{rng.NewCRT(seed)}, 3600, total-2, 2)
}

//Graphics applies the GR graphics cipher to b in place. The seed is the
//buffer's last byte widened unsigned to 32-bit. Graphics is self-inverse.
func Graphics(b []byte) {
	total := len(b)
	if total == 0 {
		return
	}
	seed := uint32(b[total-1])
	limit := total - 1
	if limit > 0x174B {
		limit = 0x174B
	}
	xor(b, EaglsKey, lehmerDrawer{rng.NewLehmer(seed)}, 0, limit, 1)
}
