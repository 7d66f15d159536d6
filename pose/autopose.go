package pose

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TuftsBCB/featureviz/align"
	"github.com/TuftsBCB/featureviz/rmsd"
)

// ErrNoViewer is returned when a viewer required by an operation is nil.
var ErrNoViewer = errors.New("no viewer")

// Viewer is a 3D view of one molecule.
type Viewer interface {
	// ApplyCommands runs a script in the viewer.
	ApplyCommands(ctx context.Context, script Script) error

	// CurrentOrientation returns a script fragment that restores the
	// viewer's current rotation and zoom. It is opaque to this package.
	CurrentOrientation(ctx context.Context) (string, error)

	// ApplyBestRotation rotates the view to the viewer's notion of the best
	// default rotation for its molecule.
	ApplyBestRotation(ctx context.Context) error
}

// Result describes a completed auto pose.
type Result struct {
	Correspondence align.Correspondence
	Fit            rmsd.Fit

	// The fixed viewer's orientation and the script run on the moving viewer.
	Orientation string
	Script      Script
}

// AutoPose rotates one viewer so that the highlighted alignments in s line up
// with the same alignments in the other viewer. locked[i] prevents viewers[i]
// from being moved; see align.Select for how the moving viewer is chosen.
//
// If neither viewer is locked, the fixed viewer is first given its best
// rotation and centered on its correspondence points.
//
// Every error that doesn't come from a viewer is reported before any viewer
// is touched. A degenerate fit is not an error: it is applied, logged and
// reported in the result.
func AutoPose(ctx context.Context, log *zap.Logger, viewers [2]Viewer,
	s align.Set, locked [2]bool) (Result, error) {

	if log == nil {
		log = zap.NewNop()
	}
	for i, v := range viewers {
		if v == nil {
			return Result{}, fmt.Errorf("viewer %d: %w", i, ErrNoViewer)
		}
	}

	c, err := align.Select(s, locked)
	if err != nil {
		return Result{}, err
	}
	fit, err := rmsd.Kabsch(c.P, c.Q)
	if err != nil {
		return Result{}, err
	}
	if fit.Degenerate {
		log.Warn("correspondence points are collinear or coincident; "+
			"the rotation about their axis is arbitrary",
			zap.Int("pairs", len(c.P)),
			zap.Float64s("singular", fit.Singular[:]))
	}

	fixed, moving := viewers[c.Fixed], viewers[c.Moving]
	if c.BothFree {
		if err := fixed.ApplyBestRotation(ctx); err != nil {
			return Result{}, fmt.Errorf("viewer %d: best rotation: %w",
				c.Fixed, err)
		}
		center := Script{CenterCommand(fit.QCenter)}
		if err := fixed.ApplyCommands(ctx, center); err != nil {
			return Result{}, fmt.Errorf("viewer %d: center: %w", c.Fixed, err)
		}
	}

	orientation, err := fixed.CurrentOrientation(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("viewer %d: orientation: %w", c.Fixed, err)
	}
	script := Compose(fit, fit.PCenter, fit.QCenter, orientation)
	if err := moving.ApplyCommands(ctx, script); err != nil {
		return Result{}, fmt.Errorf("viewer %d: pose: %w", c.Moving, err)
	}

	log.Info("auto pose",
		zap.Int("moving", c.Moving),
		zap.Int("fixed", c.Fixed),
		zap.Int("pairs", len(c.P)),
		zap.Float64("rmsd", fit.RMSD),
		zap.Bool("reflected", fit.Reflected),
		zap.Bool("degenerate", fit.Degenerate))

	return Result{
		Correspondence: c,
		Fit:            fit,
		Orientation:    orientation,
		Script:         script,
	}, nil
}
