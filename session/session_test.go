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

package session_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/logger"
	"github.com/jetsetilly/quiesce/session"
	"github.com/jetsetilly/quiesce/test"
)

const timeout = 5 * time.Second

// recorder keeps a record of state changes
type recorder struct {
	crit   sync.Mutex
	states []govern.State
}

func (r *recorder) observe(st govern.State) {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) seen(st govern.State) bool {
	r.crit.Lock()
	defer r.crit.Unlock()
	return slices.Contains(r.states, st)
}

func (r *recorder) list() []govern.State {
	r.crit.Lock()
	defer r.crit.Unlock()
	return slices.Clone(r.states)
}

func preferences(t *testing.T, topology govern.Topology) *session.Preferences {
	t.Helper()
	p, err := session.NewPreferences("")
	test.DemandSuccess(t, err)
	p.DualThread.Set(topology == govern.DualThread)
	p.VideoBackend.Set("null")
	p.Throttle.Set(false)
	p.Pads.Set(1)
	return p
}

// newSession creates a session with a ChannelHost that is served until the
// end of the test
func newSession(t *testing.T, p *session.Preferences) (*session.Session, *session.ChannelHost) {
	t.Helper()
	host := session.NewChannelHost()
	s := session.NewSession(host, p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		host.Serve(ctx, s)
		close(done)
	}()

	t.Cleanup(func() {
		s.Shutdown()
		cancel()
		<-done
	})

	return s, host
}

// forEachTopology runs the test function as a subtest for both topologies
func forEachTopology(t *testing.T, f func(t *testing.T, topology govern.Topology)) {
	for _, topology := range []govern.Topology{govern.SingleThread, govern.DualThread} {
		t.Run(topology.String(), func(t *testing.T) {
			f(t, topology)
		})
	}
}

func waitForEnd(t *testing.T, s *session.Session) {
	t.Helper()
	done := s.Wait()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("emulation goroutine did not end")
	}
}

// captureStageLog clears the central log and returns a function that returns
// the hardware stage messages logged since the clear
func captureStageLog(t *testing.T) func() []string {
	t.Helper()
	logger.Clear()
	return func() []string {
		var stages []string
		logger.BorrowLog(func(entries []logger.Entry) {
			for _, e := range entries {
				if e.Tag != "session" {
					continue
				}
				for _, suffix := range []string{": initialised", ": failed", ": shutdown"} {
					if i := strings.Index(e.Detail, suffix); i >= 0 {
						stages = append(stages, e.Detail[:i+len(suffix)])
						break
					}
				}
			}
		})
		return stages
	}
}

func TestLifecycle(t *testing.T) {
	forEachTopology(t, func(t *testing.T, topology govern.Topology) {
		s, _ := newSession(t, preferences(t, topology))
		rec := &recorder{}
		s.Subscribe(rec.observe)

		test.ExpectEquality(t, s.State(), govern.Uninitialized)
		test.ExpectEquality(t, s.SessionID(), "")

		test.DemandSuccess(t, s.Init(session.Boot{Name: "lifecycle", Image: []byte{1, 2, 3}}))
		test.DemandEventually(t, timeout, func() bool { return s.State() == govern.Running })
		test.ExpectSuccess(t, s.IsRunning())
		test.ExpectSuccess(t, s.IsRunningAndStarted())
		test.ExpectInequality(t, s.SessionID(), "")

		// a second emulation cannot be started while the first is running
		err := s.Init(session.Boot{Name: "second"})
		test.ExpectSuccess(t, curated.Is(err, session.AlreadyRunning))

		sys := s.System()
		test.DemandSuccess(t, sys != nil)
		test.ExpectEquality(t, sys.Config.Topology, topology)
		test.DemandEventually(t, timeout, func() bool { return sys.Machine.Field() > 5 })

		s.SetState(govern.Paused)
		test.ExpectEquality(t, s.State(), govern.Paused)
		n := sys.Machine.Field()
		time.Sleep(10 * time.Millisecond)
		test.ExpectEquality(t, sys.Machine.Field(), n)

		s.SetState(govern.Running)
		test.ExpectEquality(t, s.State(), govern.Running)
		test.DemandEventually(t, timeout, func() bool { return sys.Machine.Field() > n })

		s.Stop()
		st := s.State()
		test.ExpectSuccess(t, st == govern.Stopping || st == govern.Uninitialized)
		test.ExpectFailure(t, s.IsRunning())

		waitForEnd(t, s)
		test.ExpectEquality(t, s.State(), govern.Uninitialized)
		test.ExpectEquality(t, s.ActualEmulationSpeed(), 1.0)
		test.ExpectEquality(t, s.System(), nil)

		states := rec.list()
		test.DemandSuccess(t, len(states) > 0)
		test.ExpectEquality(t, states[0], govern.Starting)
		test.ExpectEquality(t, states[len(states)-1], govern.Uninitialized)
		stopping := slices.Index(states, govern.Stopping)
		test.ExpectSuccess(t, stopping > slices.Index(states, govern.Paused))
		test.ExpectSuccess(t, stopping > slices.Index(states, govern.Running))

		// stopping a stopped session does nothing
		s.Stop()
		test.ExpectEquality(t, s.State(), govern.Uninitialized)

		// the session can be started again
		id := s.SessionID()
		test.DemandSuccess(t, s.Init(session.Boot{Name: "restart"}))
		test.DemandEventually(t, timeout, func() bool { return s.State() == govern.Running })
		test.ExpectInequality(t, s.SessionID(), id)
	})
}

func TestStartupIsDeferredToHost(t *testing.T) {
	// the host is never served so the host jobs must be dispatched by the
	// test
	s := session.NewSession(nil, preferences(t, govern.DualThread))
	defer func() {
		s.Shutdown()
		test.ExpectEquality(t, s.State(), govern.Uninitialized)
	}()

	test.DemandSuccess(t, s.Init(session.Boot{Name: "deferred"}))
	test.DemandEventually(t, timeout, s.IsRunningAndStarted)

	// the hardware is running but the CPU is stepping until the initial state
	// has been set by the host job
	test.ExpectEquality(t, s.State(), govern.Paused)
	time.Sleep(10 * time.Millisecond)
	test.ExpectEquality(t, s.System().Machine.Field(), uint64(0))

	test.DemandEventually(t, timeout, func() bool {
		s.HostDispatchJobs()
		return s.State() == govern.Running
	})
}

func TestStaleHostJobs(t *testing.T) {
	s := session.NewSession(nil, preferences(t, govern.SingleThread))

	var crit sync.Mutex
	var ran []string
	job := func(name string) func() {
		return func() {
			crit.Lock()
			defer crit.Unlock()
			ran = append(ran, name)
		}
	}

	// jobs are run while the session is running
	test.DemandSuccess(t, s.Init(session.Boot{Name: "stale"}))
	test.DemandEventually(t, timeout, s.IsRunning)
	s.QueueHostJob(job("running"), false)
	s.HostDispatchJobs()

	s.QueueHostJob(job("stale"), false)
	s.QueueHostJob(job("stop"), true)
	s.Shutdown()

	// the stale job is discarded because the session stopped before the job
	// was dispatched
	crit.Lock()
	defer crit.Unlock()
	test.DemandEquality(t, len(ran), 2)
	test.ExpectEquality(t, ran[0], "running")
	test.ExpectEquality(t, ran[1], "stop")
}

func TestInvalidTargetState(t *testing.T) {
	s := session.NewSession(nil, nil)

	// requesting a valid state before the session has started does nothing
	s.SetState(govern.Running)
	test.ExpectEquality(t, s.State(), govern.Uninitialized)

	for _, st := range []govern.State{govern.Uninitialized, govern.Starting, govern.Stopping} {
		func() {
			defer func() {
				r := recover()
				test.DemandSuccess(t, r != nil, st)
				err, ok := r.(error)
				test.DemandSuccess(t, ok, st)
				test.ExpectSuccess(t, curated.Is(err, session.InvalidTargetState), st)
			}()
			s.SetState(st)
		}()
	}
}

func TestSubscriptions(t *testing.T) {
	s := session.NewSession(nil, nil)
	f := func(govern.State) {}

	test.ExpectEquality(t, s.Subscribe(nil), -1)
	test.ExpectEquality(t, s.Subscribe(f), 0)
	test.ExpectEquality(t, s.Subscribe(f), 1)
	test.ExpectEquality(t, s.Subscribe(f), 2)

	test.ExpectSuccess(t, s.Unsubscribe(1))
	test.ExpectFailure(t, s.Unsubscribe(1))
	test.ExpectFailure(t, s.Unsubscribe(10))
	test.ExpectFailure(t, s.Unsubscribe(-1))

	// the first free slot is reused
	test.ExpectSuccess(t, s.Unsubscribe(0))
	test.ExpectEquality(t, s.Subscribe(f), 0)
	test.ExpectEquality(t, s.Subscribe(f), 1)
	test.ExpectEquality(t, s.Subscribe(f), 3)
}

func TestInitFailure(t *testing.T) {
	p := preferences(t, govern.DualThread)
	p.VideoBackend.Set("bogus")
	s, host := newSession(t, p)

	var crit sync.Mutex
	var messages []string
	host.OnMessage = func(msg string, _ time.Duration) {
		crit.Lock()
		defer crit.Unlock()
		messages = append(messages, msg)
	}

	rec := &recorder{}
	s.Subscribe(rec.observe)

	stages := captureStageLog(t)

	// the failure happens in the emulation goroutine so Init() succeeds
	test.DemandSuccess(t, s.Init(session.Boot{Name: "failure"}))
	waitForEnd(t, s)

	test.ExpectEquality(t, s.State(), govern.Uninitialized)
	test.ExpectSuccess(t, rec.seen(govern.Starting))
	test.ExpectFailure(t, rec.seen(govern.Running))
	test.ExpectFailure(t, rec.seen(govern.Paused))
	states := rec.list()
	test.ExpectEquality(t, states[len(states)-1], govern.Uninitialized)

	// stages are shutdown in the reverse order to which they were
	// initialised
	order := stages()
	expected := []string{
		"sound stream: initialised",
		"hardware: initialised",
		"video backend: failed",
		"hardware: shutdown",
		"sound stream: shutdown",
	}
	test.DemandEquality(t, len(order), len(expected))
	for i := range expected {
		test.ExpectEquality(t, order[i], expected[i])
	}

	crit.Lock()
	test.ExpectEquality(t, len(messages), 1)
	crit.Unlock()
}
