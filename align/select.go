package align

import (
	"errors"
	"fmt"

	"github.com/TuftsBCB/featureviz/rmsd"
)

var (
	// ErrBothLocked is returned by Select when neither molecule may be moved.
	ErrBothLocked = errors.New("both molecules are locked")

	// ErrInsufficientCorrespondences is returned by Select when fewer than
	// two alignments are highlighted. It wraps the rmsd error of the same
	// name, so either may be used with errors.Is.
	ErrInsufficientCorrespondences = fmt.Errorf(
		"fewer than two highlighted alignments: %w",
		rmsd.ErrInsufficientCorrespondences)
)

// Correspondence is the pair of point sets used to superimpose one molecule
// onto another. P[i] and Q[i] are the two points of the i'th highlighted
// alignment: P from the molecule that moves and Q from the one that stays
// fixed.
type Correspondence struct {
	P, Q []rmsd.Coords

	// Indices (0 or 1) of the moving and fixed molecules.
	Moving, Fixed int

	// BothFree is set when neither molecule was locked. The fixed molecule
	// is then free to be put in a canonical orientation first.
	BothFree bool
}

// Select picks the correspondence points from the highlighted alignments in
// s, where locked[i] says whether molecule i may not be moved.
//
// If exactly one molecule is locked, it is fixed and the other one moves. If
// neither is locked, the second molecule is fixed.
//
// ErrBothLocked is returned if both molecules are locked and
// ErrInsufficientCorrespondences if fewer than two alignments are
// highlighted.
func Select(s Set, locked [2]bool) (Correspondence, error) {
	if locked[0] && locked[1] {
		return Correspondence{}, ErrBothLocked
	}

	hs := s.Highlighted()
	if len(hs) < 2 {
		return Correspondence{}, fmt.Errorf("%d highlighted: %w",
			len(hs), ErrInsufficientCorrespondences)
	}

	c := Correspondence{
		P:        make([]rmsd.Coords, len(hs)),
		Q:        make([]rmsd.Coords, len(hs)),
		Moving:   0,
		Fixed:    1,
		BothFree: !locked[0] && !locked[1],
	}
	if locked[0] {
		c.Moving, c.Fixed = 1, 0
	}
	for i, a := range hs {
		c.P[i] = a.Points[c.Moving].Coords
		c.Q[i] = a.Points[c.Fixed].Coords
	}
	return c, nil
}
