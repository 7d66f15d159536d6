/*
Package pose turns a rigid fit between two molecules into commands for a 3D
molecular viewer, and coordinates the viewers showing those molecules.

The commands are Jmol script commands. A Script is an ordered list of them;
nothing in this package interprets the output of a viewer, it only passes it
along.
*/
package pose

import (
	"strconv"
	"strings"

	"github.com/TuftsBCB/featureviz/rmsd"
)

// Script is an ordered list of viewer commands.
type Script []string

// String joins the commands of a script into a single Jmol script, each
// command terminated by a semi-colon. Empty commands are dropped.
func (s Script) String() string {
	var b strings.Builder
	for _, cmd := range s {
		cmd = strings.TrimRight(strings.TrimSpace(cmd), "; ")
		if len(cmd) == 0 {
			continue
		}
		b.WriteString(cmd)
		b.WriteByte(';')
	}
	return b.String()
}

// Compose builds the script that moves a viewer so that the points of its
// molecule line up with the corresponding points in the fixed viewer. The
// rotation of fit maps the moving molecule onto the fixed one and pCenter is
// the centroid of the moving molecule's points.
//
// orientation is the fixed viewer's current orientation, as reported by the
// viewer itself. It is applied verbatim after the rotation so that both
// viewers end up looking from the same angle and zoom.
//
// qCenter is accepted for symmetry with the fit; the fixed viewer is centered
// on it separately when neither viewer is locked (see AutoPose).
func Compose(fit rmsd.Fit, pCenter, qCenter rmsd.Coords,
	orientation string) Script {

	center := CenterCommand(pCenter)
	return Script{
		"set refreshing false",
		"moveto 0 back",
		center,

		// Jmol's "rotate [[...]]" rotates the model by the inverse of the
		// matrix given, so the transpose is required here.
		RotateCommand(fit.Rotation.Transpose()),
		center,
		"rotate y 180",
		orientation,
		"set refreshing true",
	}
}

// CenterCommand returns "center {x y z}".
func CenterCommand(c rmsd.Coords) string {
	return "center {" + formatCoords(c) + "}"
}

// RotateCommand returns "rotate [[a b c],[d e f],[g h i]]" for a row-major
// matrix.
func RotateCommand(m rmsd.Matrix3) string {
	return "rotate " + MatrixScript(m)
}

// MatrixScript formats a matrix as a Jmol array of rows.
func MatrixScript(m rmsd.Matrix3) string {
	rows := m.Rows()
	parts := make([]string, 3)
	for i, row := range rows {
		parts[i] = "[" + formatCoords(rmsd.Coords(row)) + "]"
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func formatCoords(c rmsd.Coords) string {
	return formatFloat(c[0]) + " " + formatFloat(c[1]) + " " + formatFloat(c[2])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
