package jmol

import (
	"strings"
)

// Scripts used to query a viewer.
const (
	showOrientation    = "show orientation;"
	showRotationRadius = "show rotationRadius;"
	showMoveto         = "show MOVETO;"
)

// RotationAboutFront extracts the rotation and zoom from the output of
// "show orientation", so that it can be replayed on another viewer. The
// output of "show rotationRadius" is appended if the orientation doesn't
// already set a rotation radius.
//
// Jmol reports an orientation as a series of commands like:
//
//	reset; center {...}; rotate z 45; rotate y 20; zoom 100; ...
//
// Everything from the first rotation onward is kept (with its leading
// semi-colon removed). If there is no rotation, everything from the zoom
// onward is kept.
func RotationAboutFront(orientation, rotationRadius string) string {
	if i := strings.Index(rotationRadius, "rotationRadius = "); i >= 0 {
		rotationRadius = rotationRadius[i:]
	}
	if !strings.Contains(orientation, "set rotationRadius") {
		orientation += rotationRadius + "; "
	}
	orientation = strings.ReplaceAll(orientation, "\n", " ")

	if i := strings.Index(orientation, "; rotate "); i >= 0 {
		return strings.Replace(orientation[i:], ";", "", 1)
	}
	if i := strings.Index(orientation, " zoom "); i >= 0 {
		return orientation[i:]
	}
	return orientation
}

// MovetoScript extracts a "moveto" command from the output of "show MOVETO"
// and makes it instantaneous, so that replaying it doesn't animate.
func MovetoScript(moveto string) string {
	moveto = strings.Replace(moveto, "moveto 1.0", "moveto 0", 1)
	if i := strings.Index(moveto, "moveto 0 "); i >= 0 {
		return moveto[i:]
	}
	return moveto
}
