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

//Package graphics wraps and unwraps the .gr container: Lehmer-encrypted,
//LZSS-compressed raw BMP bytes. It does not parse the BMP payload itself —
//that is left to whatever caller wants to decode or produce the pixels.
package graphics

import (
	"github.com/Linden10/Eagls-engine-tool/cipher"
	"github.com/Linden10/Eagls-engine-tool/lzss"
)

//preBits is the LZSS window-size parameter the .gr format always uses.
const preBits = 7

//Unwrap turns .gr bytes into a raw BMP blob: decrypt, then LZSS-decode.
func Unwrap(gr []byte) []byte {
	buf := append([]byte(nil), gr...)
	cipher.Graphics(buf)
	return lzss.New(preBits).Decode(buf)
}

//Wrap turns a raw BMP blob into .gr bytes: LZSS-encode, then encrypt (the
//same function serves both directions, since the cipher is self-inverse).
func Wrap(bmp []byte) []byte {
	buf := lzss.New(preBits).Encode(bmp)
	cipher.Graphics(buf)
	return buf
}
