package jmol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/TuftsBCB/featureviz/pose"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// ErrClosed is returned by a Remote whose connection has gone away.
var ErrClosed = errors.New("viewer connection closed")

// ScriptError is an error reported by Jmol while running a script.
type ScriptError struct {
	Script string
	Msg    string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("jmol: %s (script: %s)", e.Msg, e.Script)
}

// request is sent to the page for every script. The page answers with a
// response carrying the same ID.
type request struct {
	ID     int    `json:"id"`
	Script string `json:"script"`
}

type response struct {
	ID     int    `json:"id"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Remote is a viewer running in a browser page. Every script is sent as a
// JSON request and the page replies with Jmol's output for it. Requests may
// be issued concurrently.
type Remote struct {
	conn *websocket.Conn
	log  *zap.Logger

	wmu sync.Mutex // guards writes to conn

	mu      sync.Mutex
	next    int
	pending map[int]chan response
	err     error

	done      chan struct{}
	closeOnce sync.Once
}

// NewRemote starts talking to a page over conn. The returned viewer owns the
// connection.
func NewRemote(conn *websocket.Conn, log *zap.Logger) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Remote{
		conn:    conn,
		log:     log,
		pending: make(map[int]chan response),
		done:    make(chan struct{}),
	}
	viewerConnections.Inc()
	go r.readLoop()
	go r.pingLoop()
	return r
}

func (r *Remote) readLoop() {
	_ = r.conn.SetReadDeadline(time.Now().Add(pongWait))
	r.conn.SetPongHandler(func(string) error {
		return r.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.log.Error("viewer connection lost", zap.Error(err))
			}
			r.shutdown(ErrClosed)
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			r.log.Warn("ignoring malformed viewer message",
				zap.Error(err), zap.ByteString("message", data))
			continue
		}
		r.mu.Lock()
		ch, ok := r.pending[resp.ID]
		delete(r.pending, resp.ID)
		r.mu.Unlock()
		if !ok {
			r.log.Debug("ignoring unsolicited viewer reply", zap.Int("id", resp.ID))
			continue
		}
		ch <- resp
	}
}

func (r *Remote) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			err := r.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeWait))
			if err != nil {
				r.shutdown(ErrClosed)
				return
			}
		}
	}
}

// shutdown fails every outstanding request with err and closes the
// connection. Only the first call has any effect.
func (r *Remote) shutdown(err error) {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.err = err
		r.pending = nil
		r.mu.Unlock()

		close(r.done)
		_ = r.conn.Close()
		viewerConnections.Dec()
	})
}

// Run sends a script to the page and returns Jmol's output.
func (r *Remote) Run(ctx context.Context, script string) (string, error) {
	result, err := r.run(ctx, script)
	var serr *ScriptError
	switch {
	case err == nil:
		scriptsTotal.WithLabelValues("ok").Inc()
	case errors.As(err, &serr):
		scriptsTotal.WithLabelValues("script_error").Inc()
	default:
		scriptsTotal.WithLabelValues("failed").Inc()
	}
	return result, err
}

func (r *Remote) run(ctx context.Context, script string) (string, error) {
	ch := make(chan response, 1)

	r.mu.Lock()
	if r.pending == nil {
		err := r.err
		r.mu.Unlock()
		return "", err
	}
	r.next++
	id := r.next
	r.pending[id] = ch
	r.mu.Unlock()

	data, err := json.Marshal(request{ID: id, Script: script})
	if err != nil {
		r.forget(id)
		return "", err
	}
	r.wmu.Lock()
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = r.conn.WriteMessage(websocket.TextMessage, data)
	r.wmu.Unlock()
	if err != nil {
		r.forget(id)
		return "", fmt.Errorf("sending script: %w", err)
	}

	select {
	case resp := <-ch:
		if len(resp.Error) > 0 {
			return "", &ScriptError{Script: script, Msg: resp.Error}
		}
		return resp.Result, nil
	case <-ctx.Done():
		r.forget(id)
		return "", ctx.Err()
	case <-r.done:
		return "", ErrClosed
	}
}

func (r *Remote) forget(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		delete(r.pending, id)
	}
}

// ApplyCommands runs script on the page as a single Jmol script.
func (r *Remote) ApplyCommands(ctx context.Context, script pose.Script) error {
	_, err := r.Run(ctx, script.String())
	return err
}

// CurrentOrientation asks Jmol for its orientation and rotation radius and
// returns them as a script. See RotationAboutFront.
func (r *Remote) CurrentOrientation(ctx context.Context) (string, error) {
	orientation, err := r.Run(ctx, showOrientation)
	if err != nil {
		return "", err
	}
	radius, err := r.Run(ctx, showRotationRadius)
	if err != nil {
		return "", err
	}
	return RotationAboutFront(orientation, radius), nil
}

// ApplyBestRotation runs "rotate best".
func (r *Remote) ApplyBestRotation(ctx context.Context) error {
	return r.ApplyCommands(ctx, pose.Script{BestRotationCommand})
}

// PoseScript returns an instantaneous moveto command for the current view.
func (r *Remote) PoseScript(ctx context.Context) (string, error) {
	moveto, err := r.Run(ctx, showMoveto)
	if err != nil {
		return "", err
	}
	return MovetoScript(moveto), nil
}

// Done is closed once the connection has gone away.
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

// Close sends a close message to the page and drops the connection.
func (r *Remote) Close() error {
	select {
	case <-r.done:
		return nil
	default:
	}
	r.wmu.Lock()
	err := r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	r.wmu.Unlock()
	r.shutdown(ErrClosed)
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
