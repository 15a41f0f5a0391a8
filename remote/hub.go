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

package remote

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jetsetilly/quiesce/logger"
)

// Event is sent to websocket clients.
type Event struct {
	Type  string `json:"type"`
	State string `json:"state,omitempty"`
	ID    string `json:"id,omitempty"`
}

// the number of events that can be waiting for a slow client. events are
// dropped for a client whose queue is full
const clientQueue = 64

const writeTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// hub keeps track of connected websocket clients
type hub struct {
	crit    sync.Mutex
	clients map[*client]bool
	closed  bool
}

func newHub() *hub {
	return &hub{
		clients: make(map[*client]bool),
	}
}

// serve the websocket connection until the client disconnects or the hub is
// closed. the first event is sent before any broadcast event
func (h *hub) serve(w http.ResponseWriter, r *http.Request, first Event) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logf(logger.Allow, "remote", "websocket: %v", err)
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan Event, clientQueue),
	}
	cl.send <- first

	h.crit.Lock()
	if h.closed {
		h.crit.Unlock()
		conn.Close()
		return
	}
	h.clients[cl] = true
	h.crit.Unlock()

	logger.Logf(logger.Allow, "remote", "websocket: connected %s", conn.RemoteAddr())

	done := make(chan bool)
	go func() {
		defer close(done)
		cl.write()
	}()

	// messages from the client are not used but the connection must be read
	// so that the close message is seen
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Logf(logger.Allow, "remote", "websocket: %v", err)
			}
			break
		}
	}

	h.remove(cl)
	<-done
	conn.Close()

	logger.Logf(logger.Allow, "remote", "websocket: disconnected %s", conn.RemoteAddr())
}

// write events to the client until the send channel is closed
func (cl *client) write() {
	for ev := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := cl.conn.WriteJSON(ev); err != nil {
			// closing the connection ends the read loop in serve(), which
			// will close the send channel
			cl.conn.Close()
			for range cl.send {
			}
			return
		}
	}

	cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	// the client has a short time to reply to the close message
	cl.conn.SetReadDeadline(time.Now().Add(writeTimeout))
}

// remove the client from the hub. the client's send channel is closed
func (h *hub) remove(cl *client) {
	h.crit.Lock()
	defer h.crit.Unlock()
	if h.clients[cl] {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// broadcast the event to all clients. the function does not block
func (h *hub) broadcast(ev Event) {
	h.crit.Lock()
	defer h.crit.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
			logger.Logf(logger.Allow, "remote", "websocket: event dropped for %s", cl.conn.RemoteAddr())
		}
	}
}

// close all client connections. no more clients will be accepted
func (h *hub) close() {
	h.crit.Lock()
	defer h.crit.Unlock()
	h.closed = true
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// count returns the number of connected clients
func (h *hub) count() int {
	h.crit.Lock()
	defer h.crit.Unlock()
	return len(h.clients)
}
