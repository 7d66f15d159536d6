/*
Package ptf reads FEATURE point files.

A point file has one point per line. Fields are separated by tabs: the
molecule identifier, the x, y and z coordinates and then any number of
comments, each preceded by a '#' field. FeatureViz expects two comments: a
point description (which uniquely identifies the point within its molecule)
and a residue type. For example:

	1qhi	5.293	12.842	30.111	#	1qhi_A_1_BTN_3	#	ASP

Descriptions are themselves underscore separated; the fourth field is the
ligand the point belongs to and the fifth is the point's number.
*/
package ptf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/TuftsBCB/featureviz/rmsd"
)

// Point represents a single row in a point file.
type Point struct {
	MolID       string
	Coords      rmsd.Coords
	Description string
	ResidueType string
}

// Ligand returns the ligand named by the point's description, or an empty
// string if the description has too few fields.
func (p *Point) Ligand() string {
	return descField(p.Description, 3)
}

// Name returns a short name for the point that is safe to use as a viewer
// object identifier, e.g., "m3ASP".
func (p *Point) Name() string {
	return "m" + descField(p.Description, 4) + p.ResidueType
}

func (p *Point) String() string {
	return fmt.Sprintf("%s (%s) {%g %g %g}", p.Description, p.ResidueType,
		p.Coords[0], p.Coords[1], p.Coords[2])
}

func descField(desc string, i int) string {
	fields := strings.Split(desc, "_")
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

// RowError describes a line of a point file that could not be read.
type RowError struct {
	Line int
	Text string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d (%q): %s", e.Line, e.Text, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Molecule is the set of points read from one point file, in file order.
type Molecule struct {
	ID     string
	Points []*Point

	// Skipped contains a *RowError for every malformed line that was
	// ignored while reading.
	Skipped []error

	byDesc map[string]*Point
}

// New reads a Molecule from a point file. The molecule's identifier is the
// base name of the file without its extensions.
//
// If the file name ends with ".gz", gzip decompression will be used.
func New(fileName string) (*Molecule, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if path.Ext(fileName) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("could not decompress '%s': %w",
				fileName, err)
		}
		defer gz.Close()
		reader = gz
	}

	mol, err := Read(MoleculeID(fileName), reader)
	if err != nil {
		return nil, fmt.Errorf("could not read point file '%s': %w",
			fileName, err)
	}
	return mol, nil
}

// MoleculeID returns the base name of a point file without any of its
// extensions. e.g., "data/1qhi.ptf.gz" becomes "1qhi".
func MoleculeID(fileName string) string {
	base := path.Base(fileName)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Read parses a point file from r. Lines that cannot be parsed are skipped
// and recorded in the returned molecule's Skipped field; only errors from
// the reader itself are returned.
//
// When two lines share a description, the first one wins.
func Read(id string, r io.Reader) (*Molecule, error) {
	mol := &Molecule{
		ID:     id,
		Points: make([]*Point, 0, 64),
		byDesc: make(map[string]*Point, 64),
	}

	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			mol.Skipped = append(mol.Skipped,
				&RowError{Line: lineno, Text: line, Err: err})
			continue
		}
		mol.add(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mol, nil
}

// parsePoint reads a single line. The fields at index 4 and 6 are comment
// markers and are not checked.
func parsePoint(line string) (*Point, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("expected at least 8 tab separated fields "+
			"but found %d", len(fields))
	}

	p := &Point{
		MolID:       strings.TrimSpace(fields[0]),
		Description: strings.TrimSpace(fields[5]),
		ResidueType: strings.TrimSpace(fields[7]),
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate: %w", err)
		}
		p.Coords[i] = v
	}
	if len(p.Description) == 0 {
		return nil, fmt.Errorf("point has no description")
	}
	return p, nil
}

func (m *Molecule) add(p *Point) {
	if _, ok := m.byDesc[p.Description]; ok {
		return
	}
	m.byDesc[p.Description] = p
	m.Points = append(m.Points, p)
}

// Point returns the point with the given description.
func (m *Molecule) Point(desc string) (*Point, bool) {
	p, ok := m.byDesc[desc]
	return p, ok
}

// Ligand returns the ligand of the molecule's first point.
func (m *Molecule) Ligand() string {
	if len(m.Points) == 0 {
		return ""
	}
	return m.Points[0].Ligand()
}

// Title is the name FeatureViz shows for a molecule: its identifier and
// ligand, e.g., "1qhi/BTN".
func (m *Molecule) Title() string {
	return m.ID + "/" + m.Ligand()
}
