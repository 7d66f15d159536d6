/*
Package align reads FEATURE alignment files and keeps track of the state a
user attaches to each alignment: whether it is hidden, cut off by a score
threshold or highlighted. Highlighted alignments are the correspondences used
to superimpose one molecule onto another; see Select.
*/
package align

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/TuftsBCB/featureviz/ptf"
)

var (
	// ErrUnknownPoint is returned when an alignment refers to a point
	// description that is not in its molecule.
	ErrUnknownPoint = errors.New("alignment refers to an unknown point")

	// ErrNotVisible is returned when highlighting an alignment that is
	// hidden or cut off.
	ErrNotVisible = errors.New(
		"alignments can't be highlighted when they are hidden or cutoff")
)

// cutoffSlack is added to the worst score to compute a cutoff that keeps
// every alignment visible.
const cutoffSlack = 0.001

// fieldSep splits the columns of an alignment file. Some writers end the
// point descriptions with a semi-colon.
var fieldSep = regexp.MustCompile(`;?\t`)

// Alignment pairs a point in the first molecule with a point in the second
// molecule, along with the score FEATURE gave the pair. Lower scores are
// better.
type Alignment struct {
	Points [2]*ptf.Point
	Score  float64

	highlighted bool
	hidden      bool
	cutoff      bool
	visible     bool
}

// New returns a visible, highlighted alignment between a and b.
func New(a, b *ptf.Point, score float64) *Alignment {
	return &Alignment{
		Points:      [2]*ptf.Point{a, b},
		Score:       score,
		highlighted: true,
		visible:     true,
	}
}

// Highlighted reports whether the alignment is used to superimpose.
func (a *Alignment) Highlighted() bool { return a.highlighted }

// Hidden reports whether the alignment was hidden by the user.
func (a *Alignment) Hidden() bool { return a.hidden }

// Cutoff reports whether the alignment's score is above the cutoff.
func (a *Alignment) Cutoff() bool { return a.cutoff }

// Visible reports whether the alignment is neither hidden nor cut off.
func (a *Alignment) Visible() bool { return a.visible }

// SetHighlighted highlights or un-highlights an alignment. An alignment that
// isn't visible can't be highlighted.
func (a *Alignment) SetHighlighted(highlighted bool) error {
	if highlighted && !a.visible {
		return ErrNotVisible
	}
	a.highlighted = highlighted
	return nil
}

// SetHidden hides or shows an alignment. Hiding an alignment also
// un-highlights it.
func (a *Alignment) SetHidden(hidden bool) {
	a.hidden = hidden
	a.updateVisibility()
}

// SetCutoff marks an alignment as being outside the score cutoff. Like
// hiding, this un-highlights it.
func (a *Alignment) SetCutoff(cutoff bool) {
	a.cutoff = cutoff
	a.updateVisibility()
}

func (a *Alignment) updateVisibility() {
	a.visible = !a.hidden && !a.cutoff
	if !a.visible {
		a.highlighted = false
	}
}

func (a *Alignment) String() string {
	return fmt.Sprintf("%s <-> %s (%g)",
		a.Points[0].Description, a.Points[1].Description, a.Score)
}

// Set is an ordered list of alignments between the same two molecules.
// The order is significant: it is the order in which correspondences are
// paired up.
type Set []*Alignment

// Highlighted returns the highlighted alignments in order.
func (s Set) Highlighted() Set {
	hs := make(Set, 0, len(s))
	for _, a := range s {
		if a.highlighted {
			hs = append(hs, a)
		}
	}
	return hs
}

// ApplyCutoff cuts off every alignment scoring worse (higher) than
// threshold, and restores any alignment that is now within it. Restored
// alignments are visible again but stay un-highlighted.
func (s Set) ApplyCutoff(threshold float64) {
	for _, a := range s {
		a.SetCutoff(threshold < a.Score)
	}
}

// DefaultCutoff returns a threshold just above the score of the last
// alignment, so that applying it cuts off nothing in a file sorted by
// score. ok is false if the set is empty.
func (s Set) DefaultCutoff() (cutoff float64, ok bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].Score + cutoffSlack, true
}

// NewSet reads an alignment file from disk. See Read.
func NewSet(fileName string, mols [2]*ptf.Molecule) (Set, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f, mols)
	if err != nil {
		return nil, fmt.Errorf("could not read alignment file '%s': %w",
			fileName, err)
	}
	return s, nil
}

// Read parses an alignment file. Each line with exactly three columns
// (a point description from the first molecule, a point description from the
// second molecule and a score) becomes an alignment. Lines with any other
// number of columns are ignored.
//
// An error is returned if a description can't be found in its molecule or a
// score isn't a number.
func Read(r io.Reader, mols [2]*ptf.Molecule) (Set, error) {
	s := make(Set, 0, 32)
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		cols := fieldSep.Split(line, -1)
		if len(cols) != 3 {
			continue
		}

		var points [2]*ptf.Point
		for i, mol := range mols {
			p, ok := mol.Point(cols[i])
			if !ok {
				return nil, fmt.Errorf("line %d: '%s' is not in molecule "+
					"'%s': %w", lineno, cols[i], mol.ID, ErrUnknownPoint)
			}
			points[i] = p
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad score: %w", lineno, err)
		}
		s = append(s, New(points[0], points[1], score))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}
