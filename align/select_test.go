package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/featureviz/rmsd"
)

func TestSelect(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)

	tests := []struct {
		name          string
		locked        [2]bool
		moving, fixed int
		bothFree      bool
	}{
		{"neither locked", [2]bool{false, false}, 0, 1, true},
		{"first locked", [2]bool{true, false}, 1, 0, false},
		{"second locked", [2]bool{false, true}, 0, 1, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := Select(s, test.locked)
			require.NoError(t, err)
			assert.Equal(t, test.moving, c.Moving)
			assert.Equal(t, test.fixed, c.Fixed)
			assert.Equal(t, test.bothFree, c.BothFree)

			require.Len(t, c.P, 3)
			require.Len(t, c.Q, 3)
			for i, a := range s {
				assert.Equal(t, a.Points[test.moving].Coords, c.P[i])
				assert.Equal(t, a.Points[test.fixed].Coords, c.Q[i])
			}
		})
	}
}

func TestSelectHighlightedOnly(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)
	require.NoError(t, s[1].SetHighlighted(false))

	c, err := Select(s, [2]bool{})
	require.NoError(t, err)
	assert.Equal(t, []rmsd.Coords{{0, 0, 0}, {0, 1, 0}}, c.P)
	assert.Equal(t, []rmsd.Coords{{10, 0, 0}, {9, 0, 0}}, c.Q)
}

func TestSelectOneHighlighted(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)
	require.NoError(t, s[0].SetHighlighted(false))
	s[2].SetHidden(true)

	_, err = Select(s, [2]bool{})
	assert.ErrorIs(t, err, ErrInsufficientCorrespondences)
	assert.ErrorIs(t, err, rmsd.ErrInsufficientCorrespondences)

	_, err = Select(nil, [2]bool{true, false})
	assert.ErrorIs(t, err, ErrInsufficientCorrespondences)
}

func TestSelectBothLocked(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)

	_, err = Select(s, [2]bool{true, true})
	assert.ErrorIs(t, err, ErrBothLocked)

	// Both locked wins over too few correspondences.
	_, err = Select(nil, [2]bool{true, true})
	assert.ErrorIs(t, err, ErrBothLocked)
}
