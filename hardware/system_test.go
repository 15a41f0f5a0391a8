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

package hardware_test

import (
	"testing"

	"github.com/jetsetilly/quiesce/hardware"
	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/test"
)

func TestStages(t *testing.T) {
	sys := hardware.NewSystem(hardware.Config{
		VideoBackend: "null",
		Pads:         1,
		MemoryCards:  2,
	}, identity.NewRegistry(), nil, nil)

	stages := sys.Stages()
	test.DemandEquality(t, len(stages), 4)
	test.ExpectEquality(t, stages[0].Name, hardware.StageSoundStream)
	test.ExpectEquality(t, stages[1].Name, hardware.StageHardware)
	test.ExpectEquality(t, stages[2].Name, hardware.StageVideoBackend)
	test.ExpectEquality(t, stages[3].Name, hardware.StageDSP)

	for _, s := range stages {
		test.ExpectSuccess(t, s.Init(), s.Name)
	}
	test.ExpectEquality(t, len(sys.Bus.Devices()), 2)

	for i := len(stages) - 1; i >= 0; i-- {
		test.ExpectSuccess(t, stages[i].Shutdown(), stages[i].Name)
	}
}

func TestStageFailure(t *testing.T) {
	sys := hardware.NewSystem(hardware.Config{
		VideoBackend: "bogus",
	}, identity.NewRegistry(), nil, nil)
	defer sys.Input.Stop()

	var failed string
	for _, s := range sys.Stages() {
		if err := s.Init(); err != nil {
			failed = s.Name
			break
		}
	}
	test.ExpectEquality(t, failed, hardware.StageVideoBackend)
}
