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
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/jetsetilly/quiesce/curated"
)

// MaxImageSize is the largest image that will be loaded.
const MaxImageSize = 8 * 1024 * 1024

// Sentinal error patterns.
const (
	NoImage       = "bootloader: no image in archive (%s)"
	ImageTooLarge = "bootloader: image is too large"
	HashMismatch  = "bootloader: unexpected hash value"
)

// ImageExtensions is the list of file extensions that are preferred when
// choosing a file from an archive.
var ImageExtensions = [...]string{".BIN", ".ROM", ".IMG"}

// Loader specifies the image to be booted.
type Loader struct {
	// filename of the image to load. can be an http or https URL
	Filename string

	// expected hash of the loaded data. empty string indicates that the hash
	// is unknown and need not be validated. after a load operation the value
	// will be the hash of the loaded data
	//
	// for archives the hash is of the extracted image, not the archive
	Hash string

	// copy of the loaded data
	Data []byte

	// the format of the loaded data and the name of the file that was
	// extracted from the archive, if any
	Format Format
	Entry  string
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: filename,
	}
}

// ShortName returns a shortened version of the filename, suitable for
// displaying to the user.
func (ld Loader) ShortName() string {
	name := path.Base(ld.Filename)
	name = strings.TrimSuffix(name, path.Ext(name))

	// .tar.gz and similar
	if ld.Format == FormatGzip {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	return name
}

// HasLoaded returns true if Load() has been successfully called.
func (ld Loader) HasLoaded() bool {
	return len(ld.Data) > 0
}

// Load the image data. Filenames with a valid scheme will use that method to
// load the data. Nothing happens if the data has already been loaded.
func (ld *Loader) Load() error {
	if len(ld.Data) > 0 {
		return nil
	}

	scheme := "file"

	u, err := url.Parse(ld.Filename)
	if err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}

	var raw []byte

	switch scheme {
	case "http":
		fallthrough
	case "https":
		resp, err := http.Get(ld.Filename)
		if err != nil {
			return curated.Errorf("bootloader: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return curated.Errorf("bootloader: %v", resp.Status)
		}

		raw, err = limitedRead(resp.Body)
		if err != nil {
			return err
		}

	case "file":
		f, err := os.Open(ld.Filename)
		if err != nil {
			return curated.Errorf("bootloader: %v", err)
		}
		defer f.Close()

		raw, err = limitedRead(f)
		if err != nil {
			return err
		}

	default:
		return curated.Errorf("bootloader: %v", fmt.Sprintf("unsupported URL scheme (%s)", scheme))
	}

	data, entry, format, err := extract(raw, ld.Filename)
	if err != nil {
		return err
	}

	hash := fmt.Sprintf("%x", sha1.Sum(data))
	if ld.Hash != "" && ld.Hash != hash {
		return curated.Errorf(HashMismatch)
	}

	ld.Hash = hash
	ld.Data = data
	ld.Entry = entry
	ld.Format = format

	return nil
}

// limitedRead reads all the data from the reader, up to MaxImageSize bytes
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, curated.Errorf("bootloader: %v", err)
	}
	if len(data) > MaxImageSize {
		return nil, curated.Errorf(ImageTooLarge)
	}
	return data, nil
}
