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

package termctl

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/logger"
	"github.com/jetsetilly/quiesce/session"
	"github.com/pkg/term"
)

// DefaultDevice is the terminal device used when no device is specified.
const DefaultDevice = "/dev/tty"

// how long a read of the terminal waits before checking whether to quit
const readTimeout = 100 * time.Millisecond

// Controller turns key presses into session requests.
type Controller struct {
	sess *session.Session
}

// NewController is the preferred method of initialisation for the Controller
// type.
func NewController(sess *session.Session) *Controller {
	return &Controller{sess: sess}
}

// HandleKey queues the host job for the key. Returns true if the key is the
// quit key. Unrecognised keys are ignored.
func (ctl *Controller) HandleKey(key byte) bool {
	switch key {
	case 'p', 'P':
		ctl.sess.QueueHostJob(func() {
			if ctl.sess.State() == govern.Paused {
				ctl.sess.SetState(govern.Running)
			} else {
				ctl.sess.SetState(govern.Paused)
			}
		}, false)
	case 'f', 'F':
		ctl.sess.QueueHostJob(ctl.sess.DoFrameStep, false)
	case 't', 'T':
		ctl.sess.QueueHostJob(func() {
			ctl.sess.SetThrottlerTempDisabled(!ctl.sess.IsThrottlerTempDisabled())
		}, false)
	case 'q', 'Q':
		ctl.sess.QueueHostJob(ctl.sess.Stop, true)
		return true
	}
	return false
}

// Serve reads key presses from the reader until the quit key is pressed or
// the context is cancelled. A read that returns io.EOF is treated as a read
// that has timed out.
func (ctl *Controller) Serve(ctx context.Context, r io.Reader) error {
	b := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := r.Read(b)
		if err != nil && !errors.Is(err, io.EOF) {
			return curated.Errorf("termctl: %v", err)
		}
		if n == 0 {
			continue
		}

		if ctl.HandleKey(b[0]) {
			logger.Log(logger.Allow, "termctl", "quit")
			return nil
		}
	}
}

// Terminal is a terminal device in cbreak mode.
type Terminal struct {
	tty *term.Term
}

// Open the terminal device and put it into cbreak mode. Close() must be
// called to restore the terminal.
func Open(device string) (*Terminal, error) {
	if device == "" {
		device = DefaultDevice
	}

	tty, err := term.Open(device, term.CBreakMode)
	if err != nil {
		return nil, curated.Errorf("termctl: %v", err)
	}

	if err := tty.SetReadTimeout(readTimeout); err != nil {
		tty.Restore()
		tty.Close()
		return nil, curated.Errorf("termctl: %v", err)
	}

	return &Terminal{tty: tty}, nil
}

// Read implements the io.Reader interface.
func (t *Terminal) Read(p []byte) (int, error) {
	return t.tty.Read(p)
}

// Close restores the terminal to the mode it was in when it was opened.
func (t *Terminal) Close() error {
	if err := t.tty.Restore(); err != nil {
		t.tty.Close()
		return curated.Errorf("termctl: %v", err)
	}
	if err := t.tty.Close(); err != nil {
		return curated.Errorf("termctl: %v", err)
	}
	return nil
}
