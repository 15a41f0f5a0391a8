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

// Package gpu sits between the CPU and the video backend. Frames produced by
// the CPU are submitted to the Fifo and are presented by the backend, either
// immediately or by a dedicated GPU goroutine running RunGpuLoop().
//
// A frame that is identical to the previous frame (by checksum) is not
// presented and the Presenter is not notified.
package gpu
