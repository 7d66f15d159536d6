package align

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/featureviz/ptf"
	"github.com/TuftsBCB/featureviz/rmsd"
)

// molecule builds a molecule whose i'th point has description
// "<id>_A_1_LIG_<i>" and coordinates coords[i].
func molecule(t *testing.T, id string, coords ...rmsd.Coords) *ptf.Molecule {
	t.Helper()
	var b strings.Builder
	for i, c := range coords {
		fmt.Fprintf(&b, "%s\t%g\t%g\t%g\t#\t%s_A_1_LIG_%d\t#\tALA\n",
			id, c[0], c[1], c[2], id, i)
	}
	mol, err := ptf.Read(id, strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Empty(t, mol.Skipped)
	return mol
}

func testMolecules(t *testing.T) [2]*ptf.Molecule {
	a := molecule(t, "1aaa",
		rmsd.Coords{0, 0, 0}, rmsd.Coords{1, 0, 0}, rmsd.Coords{0, 1, 0})
	b := molecule(t, "2bbb",
		rmsd.Coords{10, 0, 0}, rmsd.Coords{10, 1, 0}, rmsd.Coords{9, 0, 0})
	return [2]*ptf.Molecule{a, b}
}

const alignFile = "1aaa_A_1_LIG_0\t2bbb_A_1_LIG_0\t-3.5\n" +
	"1aaa_A_1_LIG_1;\t2bbb_A_1_LIG_1;\t-2.25\n" +
	"not an alignment\n" +
	"\n" +
	"1aaa_A_1_LIG_2\t2bbb_A_1_LIG_2\t-1\n"

func TestRead(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.Equal(t, -2.25, s[1].Score)
	assert.Equal(t, "1aaa_A_1_LIG_1", s[1].Points[0].Description)
	assert.Equal(t, "2bbb_A_1_LIG_1", s[1].Points[1].Description)
	for _, a := range s {
		assert.True(t, a.Highlighted())
		assert.True(t, a.Visible())
	}

	cutoff, ok := s.DefaultCutoff()
	require.True(t, ok)
	assert.InDelta(t, -0.999, cutoff, 1e-12)
}

func TestReadErrors(t *testing.T) {
	mols := testMolecules(t)

	_, err := Read(strings.NewReader("1aaa_A_1_LIG_0\tnope\t-1\n"), mols)
	assert.ErrorIs(t, err, ErrUnknownPoint)

	_, err = Read(strings.NewReader("1aaa_A_1_LIG_0\t2bbb_A_1_LIG_0\tx\n"), mols)
	assert.Error(t, err)
}

func TestNewSet(t *testing.T) {
	mols := testMolecules(t)
	fileName := filepath.Join(t.TempDir(), "align.txt")
	require.NoError(t, os.WriteFile(fileName, []byte(alignFile), 0o644))

	s, err := NewSet(fileName, mols)
	require.NoError(t, err)
	assert.Len(t, s, 3)

	_, err = NewSet(fileName+".missing", mols)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVisibility(t *testing.T) {
	mols := testMolecules(t)
	a := New(mols[0].Points[0], mols[1].Points[0], -1)

	a.SetHidden(true)
	assert.False(t, a.Visible())
	assert.False(t, a.Highlighted())
	assert.ErrorIs(t, a.SetHighlighted(true), ErrNotVisible)

	a.SetHidden(false)
	assert.True(t, a.Visible())
	assert.False(t, a.Highlighted(), "showing does not re-highlight")
	require.NoError(t, a.SetHighlighted(true))
	assert.True(t, a.Highlighted())

	a.SetCutoff(true)
	assert.False(t, a.Visible())
	assert.False(t, a.Highlighted())

	// Un-highlighting is always allowed.
	assert.NoError(t, a.SetHighlighted(false))
}

func TestApplyCutoff(t *testing.T) {
	mols := testMolecules(t)
	s, err := Read(strings.NewReader(alignFile), mols)
	require.NoError(t, err)

	s.ApplyCutoff(-2)
	assert.False(t, s[0].Cutoff())
	assert.False(t, s[1].Cutoff())
	assert.True(t, s[2].Cutoff())
	assert.Len(t, s.Highlighted(), 2)

	s.ApplyCutoff(0)
	assert.False(t, s[2].Cutoff())
	assert.True(t, s[2].Visible())
	assert.Len(t, s.Highlighted(), 2)

	_, ok := Set{}.DefaultCutoff()
	assert.False(t, ok)
}
