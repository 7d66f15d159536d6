package util

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/TuftsBCB/featureviz/align"
	"github.com/TuftsBCB/featureviz/ptf"
)

// Inputs are the two molecules and the alignments between them that every
// featureviz command works on.
type Inputs struct {
	Molecules  [2]*ptf.Molecule
	Alignments align.Set
}

// Molecule reads a point file. Rows that could not be parsed are logged.
func Molecule(log *zap.Logger, path string) (*ptf.Molecule, error) {
	mol, err := ptf.New(path)
	if err != nil {
		return nil, fmt.Errorf("could not open point file '%s': %w", path, err)
	}
	for _, skipped := range mol.Skipped {
		log.Warn("skipping point", zap.String("file", path), zap.Error(skipped))
	}
	log.Debug("read molecule",
		zap.String("file", path),
		zap.String("title", mol.Title()),
		zap.Int("points", len(mol.Points)))
	return mol, nil
}

// LoadInputs reads two point files and the alignment file between them, then
// applies the configured score cutoff.
func LoadInputs(log *zap.Logger, conf *Config,
	ptf1, ptf2, alignPath string) (*Inputs, error) {

	var in Inputs
	for i, path := range []string{ptf1, ptf2} {
		mol, err := Molecule(log, path)
		if err != nil {
			return nil, err
		}
		in.Molecules[i] = mol
	}

	s, err := align.NewSet(alignPath, in.Molecules)
	if err != nil {
		return nil, err
	}
	cutoff, ok, err := conf.CutoffValue()
	if err != nil {
		return nil, err
	}
	if !ok {
		cutoff, ok = s.DefaultCutoff()
	}
	if ok {
		s.ApplyCutoff(cutoff)
	}
	in.Alignments = s

	log.Debug("read alignments",
		zap.String("file", alignPath),
		zap.Int("alignments", len(s)),
		zap.Int("highlighted", len(s.Highlighted())),
		zap.Float64("cutoff", cutoff))
	return &in, nil
}
