package ptf

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/featureviz/rmsd"
)

const sample = "1qhi\t5.293\t12.842\t30.111\t#\t1qhi_A_1_BTN_3\t#\tASP\n" +
	"1qhi\t-1.5\t2\t3.25\t#\t1qhi_A_1_BTN_7\t#\tGLY\n" +
	"\n" +
	"1qhi\tnope\t2\t3\t#\t1qhi_A_1_BTN_9\t#\tSER\n" +
	"1qhi\t1\t2\t3\n" +
	"1qhi\t9\t9\t9\t#\t1qhi_A_1_BTN_3\t#\tASP\n"

func TestRead(t *testing.T) {
	mol, err := Read("1qhi", strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, mol.Points, 2)
	assert.Equal(t, rmsd.Coords{5.293, 12.842, 30.111}, mol.Points[0].Coords)
	assert.Equal(t, "1qhi_A_1_BTN_7", mol.Points[1].Description)
	assert.Equal(t, "GLY", mol.Points[1].ResidueType)
	assert.Equal(t, "1qhi", mol.Points[1].MolID)

	// The duplicate description on the last line is dropped.
	p, ok := mol.Point("1qhi_A_1_BTN_3")
	require.True(t, ok)
	assert.Equal(t, 5.293, p.Coords[0])

	require.Len(t, mol.Skipped, 2)
	var rowErr *RowError
	require.ErrorAs(t, mol.Skipped[0], &rowErr)
	assert.Equal(t, 4, rowErr.Line)
	require.ErrorAs(t, mol.Skipped[1], &rowErr)
	assert.Equal(t, 5, rowErr.Line)
}

func TestPointNames(t *testing.T) {
	mol, err := Read("1qhi", strings.NewReader(sample))
	require.NoError(t, err)

	p := mol.Points[0]
	assert.Equal(t, "BTN", p.Ligand())
	assert.Equal(t, "m3ASP", p.Name())
	assert.Equal(t, "1qhi/BTN", mol.Title())

	short := &Point{Description: "abc", ResidueType: "ALA"}
	assert.Equal(t, "", short.Ligand())
	assert.Equal(t, "mALA", short.Name())
}

func TestNewGzip(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "1qhi.ptf.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(fileName, buf.Bytes(), 0o644))

	mol, err := New(fileName)
	require.NoError(t, err)
	assert.Equal(t, "1qhi", mol.ID)
	assert.Len(t, mol.Points, 2)
}

func TestNewMissing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.ptf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMoleculeID(t *testing.T) {
	assert.Equal(t, "1qhi", MoleculeID("data/1qhi.ptf.gz"))
	assert.Equal(t, "1qhi", MoleculeID("1qhi"))
	assert.Equal(t, ".hidden", MoleculeID("/tmp/.hidden"))
}
