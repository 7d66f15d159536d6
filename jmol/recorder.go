/*
Package jmol provides viewers for package pose that drive Jmol (or JSmol).

Recorder keeps every command in memory and answers queries from fixed
values. It stands in for a viewer when there is nothing to display, such as
when printing the script an auto pose would run.

Remote drives a JSmol instance running in a browser page, connected over a
websocket. Hub accepts those connections.
*/
package jmol

import (
	"context"
	"sync"

	"github.com/TuftsBCB/featureviz/pose"
)

// BestRotationCommand is the command that gives a viewer its default
// rotation.
const BestRotationCommand = "rotate best"

// Recorder is an in-memory viewer. It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	// Orientation and Pose are returned by CurrentOrientation and
	// PoseScript.
	Orientation string
	Pose        string

	commands []string
}

// NewRecorder returns a recorder reporting orientation as its current
// orientation.
func NewRecorder(orientation string) *Recorder {
	return &Recorder{Orientation: orientation}
}

// ApplyCommands records the commands of script.
func (r *Recorder) ApplyCommands(ctx context.Context, script pose.Script) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, script...)
	return nil
}

// CurrentOrientation returns r.Orientation.
func (r *Recorder) CurrentOrientation(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Orientation, nil
}

// ApplyBestRotation records BestRotationCommand.
func (r *Recorder) ApplyBestRotation(ctx context.Context) error {
	return r.ApplyCommands(ctx, pose.Script{BestRotationCommand})
}

// PoseScript returns r.Pose.
func (r *Recorder) PoseScript(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Pose, nil
}

// Commands returns a copy of every command applied so far, in order.
func (r *Recorder) Commands() pose.Script {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(pose.Script(nil), r.commands...)
}

// Reset forgets all recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}
