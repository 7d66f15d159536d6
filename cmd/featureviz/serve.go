package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TuftsBCB/featureviz/align"
	"github.com/TuftsBCB/featureviz/cmd/util"
	"github.com/TuftsBCB/featureviz/jmol"
	"github.com/TuftsBCB/featureviz/pose"
	"github.com/TuftsBCB/featureviz/rmsd"
)

// DefaultPoseName is the name the first auto pose is saved under.
const DefaultPoseName = "Default Pose"

var (
	errNotConnected = errors.New("both viewers are not connected yet")
	errViewerGone   = errors.New("viewer disconnected")
)

// session is the state of a served pair of viewers.
type session struct {
	log       *zap.Logger
	in        *util.Inputs
	locked    [2]bool
	posesFile string

	mu      sync.Mutex
	viewers [2]pose.Capturer
	poses   *pose.Poses
}

func newSession(log *zap.Logger, in *util.Inputs, locked [2]bool,
	posesFile string) (*session, error) {

	poses, err := pose.LoadPoses(posesFile)
	if err != nil {
		return nil, err
	}
	return &session{
		log:       log,
		in:        in,
		locked:    locked,
		posesFile: posesFile,
		poses:     poses,
	}, nil
}

// connect gives the session its viewers, poses them and saves the result as
// the default pose.
func (s *session) connect(ctx context.Context, viewers [2]pose.Capturer) error {
	s.mu.Lock()
	s.viewers = viewers
	s.mu.Unlock()

	if _, err := s.autoPose(ctx); err != nil {
		return err
	}
	_, err := s.save(ctx, DefaultPoseName)
	return err
}

func (s *session) connected() ([2]pose.Capturer, error) {
	if s.viewers[0] == nil || s.viewers[1] == nil {
		return s.viewers, errNotConnected
	}
	return s.viewers, nil
}

func (s *session) autoPose(ctx context.Context) (pose.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs, err := s.connected()
	if err != nil {
		return pose.Result{}, err
	}
	res, err := pose.AutoPose(ctx, s.log, [2]pose.Viewer{vs[0], vs[1]},
		s.in.Alignments, s.locked)
	switch {
	case err == nil:
		autoPosesTotal.WithLabelValues("ok").Inc()
		fitRMSD.Observe(res.Fit.RMSD)
	case rejected(err):
		autoPosesTotal.WithLabelValues("rejected").Inc()
	default:
		autoPosesTotal.WithLabelValues("failed").Inc()
	}
	return res, err
}

// rejected reports whether err was caused by the selection of alignments
// rather than by a viewer.
func rejected(err error) bool {
	return errors.Is(err, align.ErrBothLocked) ||
		errors.Is(err, rmsd.ErrInsufficientCorrespondences) ||
		errors.Is(err, rmsd.ErrInvalidInput)
}

func (s *session) save(ctx context.Context, name string) (pose.Pose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs, err := s.connected()
	if err != nil {
		return pose.Pose{}, err
	}
	p, err := s.poses.Save(ctx, name, vs[0], vs[1])
	if err != nil {
		return pose.Pose{}, err
	}
	if err := s.poses.WriteFile(s.posesFile); err != nil {
		return pose.Pose{}, fmt.Errorf("could not save poses to '%s': %w",
			s.posesFile, err)
	}
	posesSavedTotal.Inc()
	s.log.Info("saved pose", zap.String("name", p.Name))
	return p, nil
}

func (s *session) restore(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs, err := s.connected()
	if err != nil {
		return err
	}
	return s.poses.Restore(ctx, name, vs[0], vs[1])
}

func (s *session) list() []pose.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pose.Pose{}, s.poses.Poses...)
}

// routes registers the session's handlers, and the hub viewers connect to.
func (s *session) routes(mux *http.ServeMux, hub *jmol.Hub) {
	mux.Handle("/viewer", hub)
	mux.HandleFunc("POST /autopose", s.autoPoseHandler)
	mux.HandleFunc("GET /poses", s.posesHandler)
	mux.HandleFunc("POST /poses", s.saveHandler)
	mux.HandleFunc("POST /poses/restore", s.restoreHandler)
}

type autoPoseResponse struct {
	Moving     int      `json:"moving"`
	Fixed      int      `json:"fixed"`
	Pairs      int      `json:"pairs"`
	RMSD       float64  `json:"rmsd"`
	Degenerate bool     `json:"degenerate"`
	Script     []string `json:"script"`
}

func (s *session) autoPoseHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.autoPose(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, autoPoseResponse{
		Moving:     res.Correspondence.Moving,
		Fixed:      res.Correspondence.Fixed,
		Pairs:      len(res.Correspondence.P),
		RMSD:       res.Fit.RMSD,
		Degenerate: res.Fit.Degenerate,
		Script:     res.Script,
	})
}

func (s *session) posesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.list())
}

func (s *session) saveHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.save(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *session) restoreHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := s.restore(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *session) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("could not write response", zap.Error(err))
	}
}

// writeError maps an error to a status code. Errors caused by the current
// selection of alignments are the client's to fix.
func (s *session) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNotConnected):
		status = http.StatusServiceUnavailable
	case errors.Is(err, pose.ErrNoPose):
		status = http.StatusNotFound
	case rejected(err):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// acceptViewers waits for two viewers and connects them to the session. The
// first viewer to connect shows the first molecule. The caller closes the hub
// once it returns, so later pages are turned away.
func acceptViewers(ctx context.Context, log *zap.Logger, hub *jmol.Hub,
	s *session) ([2]*jmol.Remote, error) {

	var remotes [2]*jmol.Remote
	for i := range remotes {
		r, err := hub.Accept(ctx)
		if err != nil {
			return remotes, err
		}
		log.Info("viewer ready", zap.Int("viewer", i))
		remotes[i] = r
	}
	// A selection that can't be posed doesn't stop the viewers from being
	// used to save and restore poses.
	if err := s.connect(ctx, [2]pose.Capturer{remotes[0], remotes[1]}); err != nil {
		log.Error("could not pose viewers", zap.Error(err))
	}
	return remotes, nil
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve ptf-file ptf-file alignment-file",
		Short: "Pose two JSmol viewers connected over a websocket",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.inputs(args)
			if err != nil {
				return err
			}
			s, err := newSession(a.log, in, a.conf.Locked(),
				a.conf.Server.PosesFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", a.conf.Server.Addr)
			if err != nil {
				return err
			}
			return serve(ctx, a.log, ln, s)
		},
	}
	util.FlagUse(cmd, "lock", "cutoff", "addr", "poses")
	return cmd
}

// serve runs the HTTP server on ln until ctx is done or a viewer goes away.
func serve(ctx context.Context, log *zap.Logger, ln net.Listener,
	s *session) error {

	hub := jmol.NewHub(log.Named("jmol"))
	mux := http.NewServeMux()
	s.routes(mux, hub)
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("waiting for viewers", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		remotes, err := acceptViewers(gctx, log, hub, s)
		hub.Close()
		defer func() {
			for _, r := range remotes {
				if r != nil {
					_ = r.Close()
				}
			}
		}()
		if err != nil {
			return err
		}
		select {
		case <-remotes[0].Done():
			log.Info("viewer disconnected", zap.Int("viewer", 0))
			return errViewerGone
		case <-remotes[1].Done():
			log.Info("viewer disconnected", zap.Int("viewer", 1))
			return errViewerGone
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, errViewerGone) {
		return nil
	}
	return err
}
