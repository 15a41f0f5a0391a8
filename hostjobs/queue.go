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

package hostjobs

import (
	"sync"
)

// Policy is consulted by Drain() when deciding whether a job should be run.
type Policy interface {
	IsBooting() bool
	IsRunning() bool
}

// Job is a function that is to be run by the host goroutine.
type Job struct {
	Fn func()

	// a job with RunDuringStop set will be run even if the session is not
	// booting or running
	RunDuringStop bool
}

// Queue is an ordered list of jobs. Jobs can be added to the queue from any
// goroutine but the queue should only be drained by the host goroutine.
type Queue struct {
	crit   sync.Mutex
	jobs   []Job
	policy Policy
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue(policy Policy) *Queue {
	return &Queue{
		jobs:   make([]Job, 0, 16),
		policy: policy,
	}
}

// Enqueue adds the function to the end of the queue. A nil function is
// ignored.
//
// Returns true if the queue was empty before the job was added. The caller can
// use this to decide whether to wake the host goroutine. If the queue was not
// empty then the host will already have been woken and the new job will be run
// along with the others.
func (q *Queue) Enqueue(fn func(), runDuringStop bool) bool {
	if fn == nil {
		return false
	}

	q.crit.Lock()
	defer q.crit.Unlock()

	wasEmpty := len(q.jobs) == 0
	q.jobs = append(q.jobs, Job{Fn: fn, RunDuringStop: runDuringStop})
	return wasEmpty
}

// Drain runs jobs in the order they were added until the queue is empty.
//
// The critical section is released while a job is running so a job can add
// more jobs to the queue, or drain the queue itself.
//
// A job without RunDuringStop set is discarded if, at the moment it is
// removed from the queue, the session is neither booting nor running.
func (q *Queue) Drain() {
	q.crit.Lock()
	defer q.crit.Unlock()

	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs[0] = Job{}
		q.jobs = q.jobs[1:]

		// the booting flag must be checked before the running flag. a
		// session that is starting is not running but it will be soon
		if !job.RunDuringStop && !q.policy.IsBooting() && !q.policy.IsRunning() {
			continue
		}

		q.crit.Unlock()
		job.Fn()
		q.crit.Lock()
	}
}

// Clear discards all jobs without running them.
func (q *Queue) Clear() {
	q.crit.Lock()
	defer q.crit.Unlock()
	clear(q.jobs)
	q.jobs = q.jobs[:0]
}

// Len returns the number of jobs waiting in the queue.
func (q *Queue) Len() int {
	q.crit.Lock()
	defer q.crit.Unlock()
	return len(q.jobs)
}
