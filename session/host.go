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

package session

import (
	"context"
	"time"

	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/logger"
)

// HostMessage is sent by the session to the host.
type HostMessage int

// List of host messages.
const (
	// host jobs are waiting. the host should call HostDispatchJobs()
	MsgJobDispatch HostMessage = iota

	// the emulation goroutine has ended
	MsgStopped
)

func (m HostMessage) String() string {
	switch m {
	case MsgJobDispatch:
		return "job dispatch"
	case MsgStopped:
		return "stopped"
	}
	return ""
}

// Host is the application that owns the session. Functions in the Host
// interface can be called from any goroutine.
type Host interface {
	// Message must not block
	Message(msg HostMessage)

	// YieldToUI is called by goroutines that are waiting on the CPU so that
	// the host can keep its interface responsive
	YieldToUI()

	UpdateTitle(title string)
	DisplayMessage(msg string, duration time.Duration)

	RendererHasFocus() bool
	RendererHasFullFocus() bool

	// the user interface is using the controllers for its own purposes
	UIBlocksControllerState() bool
}

// ChannelHost is an implementation of the Host interface suitable for
// applications without a graphical interface. Messages are sent over a
// buffered channel and are processed by Serve().
type ChannelHost struct {
	msgs chan HostMessage

	// MsgStopped is signalled separately so that it is never discarded
	stopped chan struct{}

	// the following fields can be set before Serve() is called

	// called by UpdateTitle() and DisplayMessage(). can be nil
	OnTitle   func(title string)
	OnMessage func(msg string, duration time.Duration)

	// called by Serve() when the emulation goroutine has ended. can be nil
	OnStopped func()
}

// NewChannelHost is the preferred method of initialisation for the ChannelHost
// type.
func NewChannelHost() *ChannelHost {
	return &ChannelHost{
		msgs:    make(chan HostMessage, 16),
		stopped: make(chan struct{}, 1),
	}
}

// Message implements the Host interface. A MsgJobDispatch message is
// discarded if the channel is full because a dispatch message is already
// waiting. A MsgStopped message is never discarded but repeated MsgStopped
// messages that have not yet been served are merged.
func (h *ChannelHost) Message(msg HostMessage) {
	if msg == MsgStopped {
		select {
		case h.stopped <- struct{}{}:
		default:
		}
		return
	}

	select {
	case h.msgs <- msg:
	default:
	}
}

// YieldToUI implements the Host interface.
func (h *ChannelHost) YieldToUI() {
}

// UpdateTitle implements the Host interface.
func (h *ChannelHost) UpdateTitle(title string) {
	if h.OnTitle != nil {
		h.OnTitle(title)
	}
}

// DisplayMessage implements the Host interface.
func (h *ChannelHost) DisplayMessage(msg string, duration time.Duration) {
	if h.OnMessage != nil {
		h.OnMessage(msg, duration)
	}
	logger.Log(logger.Allow, "host", msg)
}

// RendererHasFocus implements the Host interface.
func (h *ChannelHost) RendererHasFocus() bool {
	return true
}

// RendererHasFullFocus implements the Host interface.
func (h *ChannelHost) RendererHasFullFocus() bool {
	return true
}

// UIBlocksControllerState implements the Host interface.
func (h *ChannelHost) UIBlocksControllerState() bool {
	return false
}

// Serve declares the calling goroutine as the host goroutine and processes
// messages until the context is cancelled. Serve() does not return when the
// session stops because a new session can be started with the same host.
func (h *ChannelHost) Serve(ctx context.Context, s *Session) {
	tok := s.ids.Declare(identity.Host)
	defer tok.Release()

	for {
		select {
		case <-ctx.Done():
			s.HostDispatchJobs()
			return
		case <-h.msgs:
			s.HostDispatchJobs()
		case <-h.stopped:
			s.HostDispatchJobs()
			if h.OnStopped != nil {
				h.OnStopped()
			}
		}
	}
}
