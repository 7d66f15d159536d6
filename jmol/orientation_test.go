package jmol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotationAboutFront(t *testing.T) {
	tests := []struct {
		name        string
		orientation string
		radius      string
		want        string
	}{
		{
			"rotated",
			"reset;\ncenter {1.0 2.0 3.0}; rotate z 45.0; rotate y 20.0; " +
				"zoom 100.0; set rotationRadius 12.5; ",
			"rotationRadius = 12.5",
			" rotate z 45.0; rotate y 20.0; zoom 100.0; set rotationRadius 12.5; ",
		},
		{
			"radius appended",
			"reset; rotate z 90.0; zoom 50.0; ",
			"Jmol: rotationRadius = 7.25",
			" rotate z 90.0; zoom 50.0; rotationRadius = 7.25; ",
		},
		{
			"not rotated",
			"reset; center {0 0 0}; zoom 100.0; set rotationRadius 9.0; ",
			"",
			" zoom 100.0; set rotationRadius 9.0; ",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want,
				RotationAboutFront(test.orientation, test.radius))
		})
	}
}

func TestMovetoScript(t *testing.T) {
	got := MovetoScript("  moveto 1.0 {0 0 1 0} 100.0 0.0 0.0 {1 2 3} 10.0;")
	assert.Equal(t, "moveto 0 {0 0 1 0} 100.0 0.0 0.0 {1 2 3} 10.0;", got)

	assert.Equal(t, "zoom 100;", MovetoScript("zoom 100;"))
}
