package jmol

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// Viewer pages are served from wherever the user opens them, often a
	// local file.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// queueSize is the number of connected viewers a hub holds until they are
// accepted. Pages connecting beyond that are closed.
const queueSize = 8

// Hub is an http.Handler that turns each websocket connection from a viewer
// page into a Remote. Connected viewers are handed out by Accept in the order
// they connected.
type Hub struct {
	log     *zap.Logger
	viewers chan *Remote

	mu     sync.Mutex
	closed bool
}

// NewHub returns a hub with no connected viewers.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log, viewers: make(chan *Remote, queueSize)}
}

// ServeHTTP upgrades a page's connection and queues it for Accept.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "no more viewers are accepted",
			http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.log.Error("could not upgrade viewer connection", zap.Error(err))
		return
	}

	log := h.log.With(zap.String("remote_addr", req.RemoteAddr))
	log.Info("viewer connected")
	remote := NewRemote(conn, log)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		_ = remote.Close()
		return
	}
	select {
	case h.viewers <- remote:
	default:
		log.Warn("too many viewers waiting; closing connection")
		_ = remote.Close()
	}
}

// Close stops the hub from taking new viewers and closes every viewer that
// connected but was never accepted.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for {
		select {
		case r := <-h.viewers:
			_ = r.Close()
		default:
			return
		}
	}
}

// Accept waits for the next viewer to connect.
func (h *Hub) Accept(ctx context.Context) (*Remote, error) {
	select {
	case r := <-h.viewers:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
