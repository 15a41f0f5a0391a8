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
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jetsetilly/quiesce/curated"
)

// Format of the loaded data.
type Format int

// List of valid formats.
const (
	FormatRaw Format = iota
	FormatZip
	FormatGzip
	Format7z
	FormatRar
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZip:
		return "zip"
	case FormatGzip:
		return "gzip"
	case Format7z:
		return "7z"
	case FormatRar:
		return "rar"
	}
	return ""
}

// magic bytes at the start of each archive format
var (
	magicZip      = []byte{0x50, 0x4b, 0x03, 0x04}
	magicZipEmpty = []byte{0x50, 0x4b, 0x05, 0x06}
	magicGzip     = []byte{0x1f, 0x8b}
	magic7z       = []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}
	magicRar      = []byte{0x52, 0x61, 0x72, 0x21}
)

// DetectFormat returns the format of the data by looking at the first few
// bytes. Data that is not a recognised archive is raw.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicZip) || bytes.HasPrefix(data, magicZipEmpty):
		return FormatZip
	case bytes.HasPrefix(data, magicGzip):
		return FormatGzip
	case bytes.HasPrefix(data, magic7z):
		return Format7z
	case bytes.HasPrefix(data, magicRar):
		return FormatRar
	}
	return FormatRaw
}

// isImageFile returns true if the filename has one of the ImageExtensions
func isImageFile(name string) bool {
	return slices.Contains(ImageExtensions[:], strings.ToUpper(filepath.Ext(name)))
}

// entry is a file in an archive
type entry struct {
	name string
	open func() (io.ReadCloser, error)
}

// choose the entry to use from the archive. the first entry with a preferred
// extension or the first entry if there are none with a preferred extension
func choose(entries []entry, filename string) ([]byte, string, error) {
	if len(entries) == 0 {
		return nil, "", curated.Errorf(NoImage, filepath.Base(filename))
	}

	e := entries[0]
	for _, c := range entries {
		if isImageFile(c.name) {
			e = c
			break
		}
	}

	rc, err := e.open()
	if err != nil {
		return nil, "", curated.Errorf("bootloader: %s: %v", e.name, err)
	}
	defer rc.Close()

	data, err := limitedRead(rc)
	if err != nil {
		return nil, "", err
	}

	return data, filepath.Base(e.name), nil
}

// extract the image from the raw data. returns the image data, the name of
// the archive entry and the format of the raw data
func extract(raw []byte, filename string) ([]byte, string, Format, error) {
	var data []byte
	var name string
	var err error

	format := DetectFormat(raw)

	switch format {
	case FormatRaw:
		return raw, "", format, nil
	case FormatZip:
		data, name, err = extractZip(raw, filename)
	case FormatGzip:
		data, name, err = extractGzip(raw, filename)
	case Format7z:
		data, name, err = extract7z(raw, filename)
	case FormatRar:
		data, name, err = extractRar(raw, filename)
	}

	if err != nil {
		return nil, "", format, err
	}

	return data, name, format, nil
}

func extractZip(raw []byte, filename string) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, "", curated.Errorf("bootloader: zip: %v", err)
	}

	var entries []entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, entry{name: f.Name, open: f.Open})
	}

	return choose(entries, filename)
}

// a gzip file is either a single compressed file or a compressed tar archive
func extractGzip(raw []byte, filename string) ([]byte, string, error) {
	gr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", curated.Errorf("bootloader: gzip: %v", err)
	}
	defer gr.Close()

	data, err := limitedRead(gr)
	if err != nil {
		return nil, "", err
	}

	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".tar.gz") && !strings.HasSuffix(lower, ".tgz") {
		name := gr.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		}
		return data, name, nil
	}

	var entries []entry
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", curated.Errorf("bootloader: tar: %v", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, "", curated.Errorf("bootloader: tar: %v", err)
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
