package pose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoPose is returned when restoring a pose that doesn't exist.
var ErrNoPose = errors.New("no such pose")

// Capturer is a Viewer that can report a script restoring its entire view.
type Capturer interface {
	Viewer

	// PoseScript returns a script that moves the viewer back to its
	// current view.
	PoseScript(ctx context.Context) (string, error)
}

// Pose is a named snapshot of a set of viewers. Scripts[i] restores the i'th
// viewer.
type Pose struct {
	Name    string   `yaml:"name" json:"name"`
	Scripts []string `yaml:"scripts" json:"scripts"`
}

// Restore runs each of the pose's scripts on its viewer.
func (p Pose) Restore(ctx context.Context, viewers ...Viewer) error {
	if len(p.Scripts) > len(viewers) {
		return fmt.Errorf("pose '%s' has %d scripts but only %d viewers: %w",
			p.Name, len(p.Scripts), len(viewers), ErrNoViewer)
	}
	for i, script := range p.Scripts {
		if viewers[i] == nil {
			return fmt.Errorf("viewer %d: %w", i, ErrNoViewer)
		}
		if err := viewers[i].ApplyCommands(ctx, Script{script}); err != nil {
			return fmt.Errorf("restoring pose '%s' on viewer %d: %w",
				p.Name, i, err)
		}
	}
	return nil
}

// Poses is an ordered collection of poses, as saved by a user.
type Poses struct {
	Poses []Pose `yaml:"poses" json:"poses"`
}

// Save captures the view of every viewer as a new pose. If name is empty, the
// pose is called "Pose N", where N is the number of poses after saving.
func (ps *Poses) Save(ctx context.Context, name string,
	viewers ...Capturer) (Pose, error) {

	p := Pose{Name: name, Scripts: make([]string, len(viewers))}
	if len(p.Name) == 0 {
		p.Name = fmt.Sprintf("Pose %d", len(ps.Poses)+1)
	}
	for i, v := range viewers {
		if v == nil {
			return Pose{}, fmt.Errorf("viewer %d: %w", i, ErrNoViewer)
		}
		script, err := v.PoseScript(ctx)
		if err != nil {
			return Pose{}, fmt.Errorf("capturing viewer %d: %w", i, err)
		}
		p.Scripts[i] = script
	}
	ps.Poses = append(ps.Poses, p)
	return p, nil
}

// Find returns the most recently saved pose with the given name.
func (ps *Poses) Find(name string) (Pose, bool) {
	for i := len(ps.Poses) - 1; i >= 0; i-- {
		if ps.Poses[i].Name == name {
			return ps.Poses[i], true
		}
	}
	return Pose{}, false
}

// Restore finds a pose by name and restores it.
func (ps *Poses) Restore(ctx context.Context, name string,
	viewers ...Viewer) error {

	p, ok := ps.Find(name)
	if !ok {
		return fmt.Errorf("'%s': %w", name, ErrNoPose)
	}
	return p.Restore(ctx, viewers...)
}

// ReadPoses decodes a YAML list of poses.
func ReadPoses(r io.Reader) (*Poses, error) {
	ps := &Poses{}
	if err := yaml.NewDecoder(r).Decode(ps); err != nil && err != io.EOF {
		return nil, err
	}
	return ps, nil
}

// Write encodes the poses as YAML.
func (ps *Poses) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ps); err != nil {
		return err
	}
	return enc.Close()
}

// LoadPoses reads poses from a YAML file. A file that doesn't exist yet
// holds no poses.
func LoadPoses(fileName string) (*Poses, error) {
	f, err := os.Open(fileName)
	if errors.Is(err, os.ErrNotExist) {
		return &Poses{}, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := ReadPoses(f)
	if err != nil {
		return nil, fmt.Errorf("could not read poses from '%s': %w",
			fileName, err)
	}
	return ps, nil
}

// WriteFile writes the poses to a YAML file, replacing it.
func (ps *Poses) WriteFile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := ps.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
