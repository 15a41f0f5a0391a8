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
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/hardware/machine"
	"github.com/jetsetilly/quiesce/logger"
	"github.com/jetsetilly/quiesce/session"
)

// Server is the HTTP interface to a session.
type Server struct {
	sess   *session.Session
	router *gin.Engine
	hub    *hub

	// subscription handle for state changes
	handle int

	crit sync.Mutex
	http *http.Server
	addr string
}

// Summary is the response to a GET /session request.
type Summary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	State     string  `json:"state"`
	FrameStep string  `json:"frameStep"`
	Topology  string  `json:"topology,omitempty"`
	Field     uint64  `json:"field"`
	Speed     float64 `json:"speed"`
	Elapsed   float64 `json:"elapsed"`
}

// NewServer is the preferred method of initialisation for the Server type.
// The server subscribes to the state changes of the session. Shutdown()
// should be called when the server is no longer required.
func NewServer(sess *session.Session) *Server {
	gin.SetMode(gin.ReleaseMode)

	srv := &Server{
		sess:   sess,
		router: gin.New(),
		hub:    newHub(),
	}

	srv.router.Use(gin.Recovery())
	srv.router.Use(requestLogging())

	srv.router.GET("/session", srv.summary)
	srv.router.GET("/inspect", srv.inspect)
	srv.router.POST("/pause", srv.request(func() { srv.sess.SetState(govern.Paused) }, false))
	srv.router.POST("/resume", srv.request(func() { srv.sess.SetState(govern.Running) }, false))
	srv.router.POST("/step", srv.request(srv.sess.DoFrameStep, false))
	srv.router.POST("/stop", srv.request(srv.sess.Stop, true))
	srv.router.GET("/events", srv.events)

	srv.handle = sess.Subscribe(func(st govern.State) {
		srv.hub.broadcast(Event{
			Type:  "state",
			State: st.String(),
			ID:    sess.SessionID(),
		})
	})

	return srv
}

// Handler returns the http.Handler for the server. Useful when the server is
// to be served by something other than Start().
func (srv *Server) Handler() http.Handler {
	return srv.router
}

// Start serving on the network address. The function returns once the server
// is listening.
func (srv *Server) Start(addr string) error {
	srv.crit.Lock()
	defer srv.crit.Unlock()

	if srv.http != nil {
		return curated.Errorf("remote: server already started")
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return curated.Errorf("remote: %v", err)
	}

	srv.addr = l.Addr().String()
	srv.http = &http.Server{
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(h *http.Server) {
		err := h.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logf(logger.Allow, "remote", "%v", err)
		}
	}(srv.http)

	logger.Logf(logger.Allow, "remote", "listening on %s", srv.addr)

	return nil
}

// Addr returns the address the server is listening on. Returns the empty
// string if the server has not been started.
func (srv *Server) Addr() string {
	srv.crit.Lock()
	defer srv.crit.Unlock()
	return srv.addr
}

// Shutdown the server. Websocket clients are disconnected and the server
// stops listening for state changes.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.sess.Unsubscribe(srv.handle)
	srv.hub.close()

	srv.crit.Lock()
	h := srv.http
	srv.http = nil
	srv.crit.Unlock()

	if h == nil {
		return nil
	}

	if err := h.Shutdown(ctx); err != nil {
		return curated.Errorf("remote: %v", err)
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (srv *Server) Clients() int {
	return srv.hub.count()
}

func (srv *Server) summary(c *gin.Context) {
	sum := Summary{
		ID:        srv.sess.SessionID(),
		Name:      srv.sess.Name(),
		State:     srv.sess.State().String(),
		FrameStep: srv.sess.FrameStepPhase().String(),
		Speed:     srv.sess.ActualEmulationSpeed(),
		Elapsed:   srv.sess.ElapsedTime().Seconds(),
	}

	if sys := srv.sess.System(); sys != nil {
		sum.Topology = sys.Config.Topology.String()
		sum.Field = sys.Machine.Field()
	}

	c.JSON(http.StatusOK, sum)
}

func (srv *Server) inspect(c *gin.Context) {
	if !srv.sess.IsRunning() {
		c.JSON(http.StatusConflict, gin.H{"error": "emulation is not running"})
		return
	}

	var snapshot *machine.Snapshot
	srv.sess.RunOnCPUThread(func() {
		if sys := srv.sess.System(); sys != nil {
			snapshot = sys.Machine.Snapshot()
		}
	}, true)

	if snapshot == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "emulation is not running"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// events upgrades the connection to a websocket. the current state of the
// session is sent immediately
func (srv *Server) events(c *gin.Context) {
	srv.hub.serve(c.Writer, c.Request, Event{
		Type:  "state",
		State: srv.sess.State().String(),
		ID:    srv.sess.SessionID(),
	})
}

// request returns a handler that posts the function to the host goroutine
func (srv *Server) request(fn func(), runDuringStop bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !srv.sess.IsRunning() {
			c.JSON(http.StatusConflict, gin.H{"error": "emulation is not running"})
			return
		}
		srv.sess.QueueHostJob(fn, runDuringStop)
		c.JSON(http.StatusAccepted, gin.H{"state": srv.sess.State().String()})
	}
}

// requestLogging logs every request to the central logger
func requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Logf(logger.Allow, "remote", "[%s] %s - %d (%v)", c.Request.Method, path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
