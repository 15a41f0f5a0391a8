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

// Package bootloader is used to specify the image that is to be booted by a
// session.
//
// When the image is ready to be loaded the Load() function should be used.
// Load() handles loading of data from different sources. Local files and data
// over HTTP are supported.
//
// Files can be raw images or archives. Archives are recognised by the first
// few bytes of the data, not by the filename extension. Zip, gzip, 7z and rar
// archives are supported. The first file in the archive with one of the
// extensions in ImageExtensions is used. If there is no such file then the
// first file in the archive is used.
//
// The simplest use of the Loader type:
//
//	ld := bootloader.NewLoader("images/demo.zip")
//	err := ld.Load()
package bootloader
