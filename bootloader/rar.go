// This file is part of Quiesce.
//
// Quiesce is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quiesce is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Quiesce.  If not, see <https://www.gnu.org/licenses/>.

package bootloader

import (
	"bytes"
	"io"

	"github.com/jetsetilly/quiesce/curated"
	"github.com/nwaples/rardecode/v2"
)

// rar archives can only be read in order so the entries are decompressed as
// they are found
func extractRar(raw []byte, filename string) ([]byte, string, error) {
	r, err := rardecode.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", curated.Errorf("bootloader: rar: %v", err)
	}

	var entries []entry
	for {
		hdr, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", curated.Errorf("bootloader: rar: %v", err)
		}
		if hdr.IsDir {
			continue
		}

		b, err := limitedRead(r)
		if err != nil {
			return nil, "", err
		}
		entries = append(entries, entry{
			name: hdr.Name,
			open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(b)), nil
			},
		})
	}

	return choose(entries, filename)
}
