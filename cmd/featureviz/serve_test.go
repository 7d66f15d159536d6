package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/TuftsBCB/featureviz/cmd/util"
	"github.com/TuftsBCB/featureviz/jmol"
	"github.com/TuftsBCB/featureviz/pose"
)

func testSession(t *testing.T, locked [2]bool) (*session, string) {
	t.Helper()
	in := writeInputs(t)
	inputs, err := util.LoadInputs(zap.NewNop(), &util.Config{},
		in[0], in[1], in[2])
	require.NoError(t, err)

	posesFile := filepath.Join(t.TempDir(), "poses.yaml")
	s, err := newSession(zaptest.NewLogger(t), inputs, locked, posesFile)
	require.NoError(t, err)
	return s, posesFile
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestSessionNotConnected(t *testing.T) {
	s, _ := testSession(t, [2]bool{})
	mux := http.NewServeMux()
	s.routes(mux, jmol.NewHub(nil))

	assert.Equal(t, http.StatusServiceUnavailable,
		do(t, mux, http.MethodPost, "/autopose").Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		do(t, mux, http.MethodPost, "/poses?name=x").Code)

	w := do(t, mux, http.MethodGet, "/poses")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSessionHandlers(t *testing.T) {
	s, posesFile := testSession(t, [2]bool{false, true})
	mux := http.NewServeMux()
	s.routes(mux, jmol.NewHub(nil))

	a := jmol.NewRecorder("rotate x 5.0;")
	b := jmol.NewRecorder("rotate y 7.0;")
	a.Pose, b.Pose = "moveto 0 a;", "moveto 0 b;"
	require.NoError(t, s.connect(context.Background(), [2]pose.Capturer{a, b}))

	// Connecting poses the moving viewer and saves the default pose.
	assert.Len(t, a.Commands(), 8)
	assert.Empty(t, b.Commands())
	saved, err := pose.LoadPoses(posesFile)
	require.NoError(t, err)
	require.Len(t, saved.Poses, 1)
	assert.Equal(t, DefaultPoseName, saved.Poses[0].Name)

	w := do(t, mux, http.MethodPost, "/autopose")
	require.Equal(t, http.StatusOK, w.Code)
	var res autoPoseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Moving)
	assert.Equal(t, 1, res.Fixed)
	assert.Equal(t, 4, res.Pairs)
	assert.Len(t, res.Script, 8)
	assert.Equal(t, "rotate y 7.0;", res.Script[6])

	a.Pose = "moveto 0 a2;"
	w = do(t, mux, http.MethodPost, "/poses?name=Mine")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, mux, http.MethodGet, "/poses")
	var poses []pose.Pose
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &poses))
	require.Len(t, poses, 2)
	assert.Equal(t, []string{"moveto 0 a2;", "moveto 0 b;"}, poses[1].Scripts)

	a.Reset()
	b.Reset()
	w = do(t, mux, http.MethodPost, "/poses/restore?name=Default+Pose")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, pose.Script{"moveto 0 a;"}, a.Commands())
	assert.Equal(t, pose.Script{"moveto 0 b;"}, b.Commands())

	w = do(t, mux, http.MethodPost, "/poses/restore?name=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionBothLocked(t *testing.T) {
	s, _ := testSession(t, [2]bool{true, true})
	mux := http.NewServeMux()
	s.routes(mux, jmol.NewHub(nil))

	a, b := jmol.NewRecorder(""), jmol.NewRecorder("")
	assert.Error(t, s.connect(context.Background(), [2]pose.Capturer{a, b}))

	w := do(t, mux, http.MethodPost, "/autopose")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "locked")
	assert.Empty(t, a.Commands())
	assert.Empty(t, b.Commands())
}

// echoPage is a viewer page that answers every script with an empty result.
type echoPage struct {
	mu      sync.Mutex
	scripts []string
}

func (p *echoPage) serve(conn *websocket.Conn) {
	for {
		var req struct {
			ID     int    `json:"id"`
			Script string `json:"script"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		p.mu.Lock()
		p.scripts = append(p.scripts, req.Script)
		p.mu.Unlock()
		if err := conn.WriteJSON(map[string]interface{}{"id": req.ID}); err != nil {
			return
		}
	}
}

func (p *echoPage) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.scripts...)
}

func TestServe(t *testing.T) {
	s, posesFile := testSession(t, [2]bool{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, zap.NewNop(), ln, s) }()

	url := "ws://" + ln.Addr().String() + "/viewer"
	pages := [2]*echoPage{{}, {}}
	for _, p := range pages {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		go p.serve(conn)
	}

	require.Eventually(t, func() bool {
		saved, err := pose.LoadPoses(posesFile)
		return err == nil && len(saved.Poses) == 1
	}, 5*time.Second, 20*time.Millisecond)

	// Neither viewer is locked, so one of them is given its best rotation
	// and the other one is moved. Which is which depends on the order the
	// hub saw the connections in.
	var bestRotated, moved int
	for _, p := range pages {
		for _, script := range p.received() {
			if script == "rotate best;" {
				bestRotated++
			}
			if strings.HasPrefix(script, "set refreshing false;moveto 0 back;") {
				moved++
			}
		}
	}
	assert.Equal(t, 1, bestRotated)
	assert.Equal(t, 1, moved)

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/autopose", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `featureviz_autoposes_total{status="ok"}`)
	assert.Contains(t, string(body), "featureviz_viewer_active_connections 2")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
