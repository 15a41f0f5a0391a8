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

package hostjobs_test

import (
	"sync"
	"testing"

	"github.com/jetsetilly/quiesce/hostjobs"
	"github.com/jetsetilly/quiesce/test"
)

type policy struct {
	booting bool
	running bool
}

func (p *policy) IsBooting() bool {
	return p.booting
}

func (p *policy) IsRunning() bool {
	return p.running
}

func TestOrdering(t *testing.T) {
	p := &policy{running: true}
	q := hostjobs.NewQueue(p)

	var order []int
	test.ExpectSuccess(t, q.Enqueue(func() { order = append(order, 1) }, false))
	test.ExpectFailure(t, q.Enqueue(func() { order = append(order, 2) }, false))
	test.ExpectFailure(t, q.Enqueue(func() { order = append(order, 3) }, true))
	test.ExpectEquality(t, q.Len(), 3)

	q.Drain()
	test.DemandEquality(t, len(order), 3)
	test.ExpectEquality(t, order[0], 1)
	test.ExpectEquality(t, order[1], 2)
	test.ExpectEquality(t, order[2], 3)
	test.ExpectEquality(t, q.Len(), 0)

	// queue is empty again so the next job reports that
	test.ExpectSuccess(t, q.Enqueue(func() {}, false))
}

func TestNilJob(t *testing.T) {
	q := hostjobs.NewQueue(&policy{running: true})
	test.ExpectFailure(t, q.Enqueue(nil, false))
	test.ExpectEquality(t, q.Len(), 0)
}

func TestReentrancy(t *testing.T) {
	p := &policy{running: true}
	q := hostjobs.NewQueue(p)

	var order []string
	q.Enqueue(func() {
		order = append(order, "outer")

		// a job that adds a job. the new job is run by the same drain
		q.Enqueue(func() {
			order = append(order, "inner")
		}, false)

		// a job that drains the queue itself
		q.Drain()
		order = append(order, "outer end")
	}, false)
	q.Enqueue(func() {
		order = append(order, "second")
	}, false)

	q.Drain()
	test.DemandEquality(t, len(order), 4)
	test.ExpectEquality(t, order[0], "outer")
	test.ExpectEquality(t, order[1], "second")
	test.ExpectEquality(t, order[2], "inner")
	test.ExpectEquality(t, order[3], "outer end")
}

func TestStopPolicy(t *testing.T) {
	p := &policy{}
	q := hostjobs.NewQueue(p)

	var ranStale, ranStop bool
	q.Enqueue(func() { ranStale = true }, false)
	q.Enqueue(func() { ranStop = true }, true)
	q.Drain()

	test.ExpectFailure(t, ranStale)
	test.ExpectSuccess(t, ranStop)

	// stale job is discarded and not requeued
	test.ExpectEquality(t, q.Len(), 0)

	// jobs are allowed while booting
	p.booting = true
	var ranBooting bool
	q.Enqueue(func() { ranBooting = true }, false)
	q.Drain()
	test.ExpectSuccess(t, ranBooting)
}

func TestPolicyCheckedAtDequeue(t *testing.T) {
	p := &policy{running: true}
	q := hostjobs.NewQueue(p)

	var ranAfterStop bool
	q.Enqueue(func() { p.running = false }, false)
	q.Enqueue(func() { ranAfterStop = true }, false)
	q.Drain()

	test.ExpectFailure(t, ranAfterStop)
}

func TestConcurrentEnqueue(t *testing.T) {
	p := &policy{running: true}
	q := hostjobs.NewQueue(p)

	var crit sync.Mutex
	var count int

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Enqueue(func() {
					crit.Lock()
					count++
					crit.Unlock()
				}, false)
			}
		}()
	}
	wg.Wait()

	q.Drain()
	test.ExpectEquality(t, count, 800)
}

func TestClear(t *testing.T) {
	q := hostjobs.NewQueue(&policy{running: true})

	var ran bool
	q.Enqueue(func() { ran = true }, true)
	q.Clear()
	q.Drain()
	test.ExpectFailure(t, ran)
}
