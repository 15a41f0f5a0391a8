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

package bootloader_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/quiesce/bootloader"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/test"
)

var image = []byte("quiesce boot image")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	test.DemandSuccess(t, os.WriteFile(fn, data, 0o644))
	return fn
}

func zipped(t *testing.T, files ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f)
		test.DemandSuccess(t, err)
		if filepath.Ext(f) == ".bin" {
			w.Write(image)
		} else {
			w.Write([]byte(f))
		}
	}
	test.DemandSuccess(t, zw.Close())
	return buf.Bytes()
}

func TestRaw(t *testing.T) {
	ld := bootloader.NewLoader(writeFile(t, "demo.bin", image))
	test.ExpectFailure(t, ld.HasLoaded())
	test.DemandSuccess(t, ld.Load())
	test.ExpectSuccess(t, ld.HasLoaded())
	test.ExpectEquality(t, string(ld.Data), string(image))
	test.ExpectEquality(t, ld.Format, bootloader.FormatRaw)
	test.ExpectEquality(t, ld.ShortName(), "demo")
	test.ExpectEquality(t, len(ld.Hash), 40)

	// the same hash is expected when loaded again
	ld2 := bootloader.NewLoader(ld.Filename)
	ld2.Hash = ld.Hash
	test.ExpectSuccess(t, ld2.Load())

	ld3 := bootloader.NewLoader(ld.Filename)
	ld3.Hash = "0000"
	err := ld3.Load()
	test.ExpectSuccess(t, curated.Is(err, bootloader.HashMismatch))
	test.ExpectFailure(t, ld3.HasLoaded())
}

func TestZip(t *testing.T) {
	ld := bootloader.NewLoader(writeFile(t, "demo.zip", zipped(t, "readme.txt", "images/demo.bin")))
	test.DemandSuccess(t, ld.Load())
	test.ExpectEquality(t, ld.Format, bootloader.FormatZip)
	test.ExpectEquality(t, ld.Entry, "demo.bin")
	test.ExpectEquality(t, string(ld.Data), string(image))

	// without a preferred extension the first file is used
	ld = bootloader.NewLoader(writeFile(t, "other.zip", zipped(t, "first.dat", "second.dat")))
	test.DemandSuccess(t, ld.Load())
	test.ExpectEquality(t, ld.Entry, "first.dat")
	test.ExpectEquality(t, string(ld.Data), "first.dat")

	// empty archive
	ld = bootloader.NewLoader(writeFile(t, "empty.zip", zipped(t)))
	err := ld.Load()
	test.ExpectSuccess(t, curated.Is(err, bootloader.NoImage))
}

func TestGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write(image)
	test.DemandSuccess(t, gw.Close())

	ld := bootloader.NewLoader(writeFile(t, "demo.bin.gz", buf.Bytes()))
	test.DemandSuccess(t, ld.Load())
	test.ExpectEquality(t, ld.Format, bootloader.FormatGzip)
	test.ExpectEquality(t, ld.Entry, "demo.bin")
	test.ExpectEquality(t, string(ld.Data), string(image))
	test.ExpectEquality(t, ld.ShortName(), "demo")
}

func TestTarGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, f := range []struct {
		name string
		data []byte
	}{
		{"notes.txt", []byte("notes")},
		{"demo.rom", image},
	} {
		test.DemandSuccess(t, tw.WriteHeader(&tar.Header{
			Name:     f.name,
			Mode:     0o644,
			Size:     int64(len(f.data)),
			Typeflag: tar.TypeReg,
		}))
		tw.Write(f.data)
	}
	test.DemandSuccess(t, tw.Close())
	test.DemandSuccess(t, gw.Close())

	ld := bootloader.NewLoader(writeFile(t, "demo.tar.gz", buf.Bytes()))
	test.DemandSuccess(t, ld.Load())
	test.ExpectEquality(t, ld.Entry, "demo.rom")
	test.ExpectEquality(t, string(ld.Data), string(image))
}

func TestDetectFormat(t *testing.T) {
	test.ExpectEquality(t, bootloader.DetectFormat(nil), bootloader.FormatRaw)
	test.ExpectEquality(t, bootloader.DetectFormat(image), bootloader.FormatRaw)
	test.ExpectEquality(t, bootloader.DetectFormat([]byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c, 0x00}), bootloader.Format7z)
	test.ExpectEquality(t, bootloader.DetectFormat([]byte("Rar!\x1a\x07")), bootloader.FormatRar)
	test.ExpectEquality(t, bootloader.Format7z.String(), "7z")
}

func TestCorruptArchives(t *testing.T) {
	for _, data := range [][]byte{
		{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c, 0x00, 0x04, 0xff, 0xff},
		[]byte("Rar!\x1a\x07\x00garbage"),
		{0x1f, 0x8b, 0x00, 0x00},
	} {
		ld := bootloader.NewLoader(writeFile(t, "corrupt", data))
		err := ld.Load()
		test.ExpectSuccess(t, curated.IsAny(err))
		test.ExpectFailure(t, ld.HasLoaded())
	}
}

func TestTooLarge(t *testing.T) {
	ld := bootloader.NewLoader(writeFile(t, "large.bin", make([]byte, bootloader.MaxImageSize+1)))
	err := ld.Load()
	test.ExpectSuccess(t, curated.Is(err, bootloader.ImageTooLarge))
}

func TestHTTP(t *testing.T) {
	archive := zipped(t, "demo.bin")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	defer srv.Close()

	ld := bootloader.NewLoader(srv.URL + "/demo.zip")
	test.DemandSuccess(t, ld.Load())
	test.ExpectEquality(t, string(ld.Data), string(image))

	ld = bootloader.NewLoader(srv.URL + "/missing.zip")
	test.ExpectFailure(t, ld.Load())
}

func TestUnsupportedScheme(t *testing.T) {
	ld := bootloader.NewLoader("ftp://example.com/demo.bin")
	test.ExpectFailure(t, ld.Load())

	ld = bootloader.NewLoader(filepath.Join(t.TempDir(), "missing.bin"))
	test.ExpectFailure(t, ld.Load())
}
