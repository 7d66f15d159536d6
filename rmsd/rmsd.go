package rmsd

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for empty, mismatched or non-finite point
	// sequences.
	ErrInvalidInput = errors.New("invalid point sequence")

	// ErrInsufficientCorrespondences is returned when fewer than two pairs of
	// points are given. A single pair does not define a rotation.
	ErrInsufficientCorrespondences = errors.New(
		"at least two corresponding points are required")
)

// coordPrecision is the precision coordinates are stored with in point
// files. Singular values of the covariance matrix that rounding to this
// precision could account for are treated as zero.
const coordPrecision = 1e-3

// Coords is a point in three dimensional space: x, y and z.
type Coords [3]float64

// Sub returns c - d.
func (c Coords) Sub(d Coords) Coords {
	return Coords{c[0] - d[0], c[1] - d[1], c[2] - d[2]}
}

// Add returns c + d.
func (c Coords) Add(d Coords) Coords {
	return Coords{c[0] + d[0], c[1] + d[1], c[2] + d[2]}
}

// Fit is the result of superimposing one point set (P) onto another (Q).
type Fit struct {
	// Rotation maps a centered point of P onto its centered counterpart in
	// Q. That is, q - QCenter ~ Rotation * (p - PCenter).
	Rotation Matrix3

	// The centroids of P and Q.
	PCenter, QCenter Coords

	// RMSD between the rotated points of P and the points of Q, both
	// centered.
	RMSD float64

	// Singular values of the covariance matrix, in descending order.
	Singular [3]float64

	// Degenerate is set when the points are collinear or coincident, up to
	// the precision of point file coordinates. The rotation is valid, but
	// its component about the common axis is determined by rounding noise.
	Degenerate bool

	// Reflected is set when the unconstrained least-squares solution was an
	// improper rotation (a reflection) and had to be corrected. It is never
	// set for planar points, which any proper rotation can mirror.
	Reflected bool
}

// Center translates a set of points so that their centroid is at the origin.
// The centroid is returned along with the translated points, which are in the
// same order as the input. An empty set of points returns ErrInvalidInput.
func Center(points []Coords) (Coords, []Coords, error) {
	if len(points) == 0 {
		return Coords{}, nil, fmt.Errorf("cannot center an empty set of "+
			"points: %w", ErrInvalidInput)
	}
	c := centroid(points)
	centered := make([]Coords, len(points))
	for i, p := range points {
		centered[i] = p.Sub(c)
	}
	return c, centered, nil
}

// Kabsch computes the rotation that minimizes the RMSD between P and Q, where
// P[i] corresponds to Q[i]. Neither set needs to be centered beforehand.
//
// A brief, high-level overview:
//
// Center P and Q by subtracting their centroids.
//
// Compute the covariance matrix H = (P^T)Q, where the rows of P and Q are
// the centered points.
//
// Compute the SVD (Singular Value Decomposition) of H = US(V^T).
//
// Compute d = sign(det(V(U^T))).
//
// Compute the optimal rotation R = V([1 0 0] [0 1 0] [0 0 d])(U^T).
//
// The correction by d is what keeps the result a proper rotation. Without it,
// planar or noisy inputs may produce a mirror image.
//
// Kabsch returns ErrInvalidInput if the lengths of P and Q differ or any
// coordinate is not finite, and ErrInsufficientCorrespondences if there are
// fewer than two pairs.
func Kabsch(P, Q []Coords) (Fit, error) {
	if len(P) != len(Q) {
		return Fit{}, fmt.Errorf("point sets have different lengths "+
			"(%d and %d): %w", len(P), len(Q), ErrInvalidInput)
	}
	if len(P) < 2 {
		return Fit{}, fmt.Errorf("got %d pair(s): %w",
			len(P), ErrInsufficientCorrespondences)
	}
	if err := finite(P); err != nil {
		return Fit{}, err
	}
	if err := finite(Q); err != nil {
		return Fit{}, err
	}
	return kabsch(P, Q)
}

// RMSD computes the minimal RMSD between two structures after superimposing
// them with Kabsch.
//
// Note that RMSD will panic if the lengths of struct1 and struct2 differ or
// are zero.
func RMSD(struct1, struct2 []Coords) float64 {
	if len(struct1) != len(struct2) || len(struct1) == 0 {
		panic(fmt.Sprintf("Computing the RMSD of two structures require that "+
			"they have equal, non-zero length. But the lengths of the two "+
			"structures provided are %d and %d.", len(struct1), len(struct2)))
	}
	fit, err := kabsch(struct1, struct2)
	if err != nil {
		panic(err)
	}
	return fit.RMSD
}

// kabsch does the work for Kabsch without checking the number of pairs.
func kabsch(P, Q []Coords) (Fit, error) {
	var fit Fit
	var X, Y []Coords
	var err error

	if fit.PCenter, X, err = Center(P); err != nil {
		return Fit{}, err
	}
	if fit.QCenter, Y, err = Center(Q); err != nil {
		return Fit{}, err
	}

	H := covariance(X, Y)
	U, V, s, ok := H.svd()
	if !ok {
		return Fit{}, fmt.Errorf("singular value decomposition of %v did not "+
			"converge: %w", H, ErrInvalidInput)
	}
	fit.Singular = s

	// Rounding every coordinate by up to coordPrecision perturbs each entry
	// of H by roughly N*L*coordPrecision, where L is the RMS distance of the
	// points from their centroids. Below that, a singular value is noise.
	noise := coordPrecision * float64(len(X)) * spread(X, Y)
	fit.Degenerate = s[1] <= noise

	// If the determinant of V(U^T) is negative, then the solution is an
	// "improper rotation" in that the matrix doesn't constitute a "right
	// handed system". To correct for it, we multiply V by
	// ( [1 0 0] [0 1 0] [0 0 -1] ). This makes the rotation "proper".
	UT := U.Transpose()
	if V.Mul(UT).Det() < 0 {
		// For planar points, the sign of the third singular vector is
		// arbitrary and so is the need for a correction.
		fit.Reflected = s[2] > noise
		adjust := Matrix3{
			1, 0, 0,
			0, 1, 0,
			0, 0, -1,
		}
		V = V.Mul(adjust)
	}
	fit.Rotation = V.Mul(UT)

	// Now compute the RMSD between the rotated P and Q.
	var sum float64
	for i := range X {
		d := fit.Rotation.Apply(X[i]).Sub(Y[i])
		sum += d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
	}
	fit.RMSD = math.Sqrt(sum / float64(len(X)))
	return fit, nil
}

// spread is the RMS distance of the points in xs and ys from the origin.
func spread(xs, ys []Coords) float64 {
	var sum float64
	for _, set := range [][]Coords{xs, ys} {
		for _, c := range set {
			sum += c[0]*c[0] + c[1]*c[1] + c[2]*c[2]
		}
	}
	return math.Sqrt(sum / float64(len(xs)+len(ys)))
}

// centroid calculates the average position of a set of points.
func centroid(points []Coords) Coords {
	var xs, ys, zs float64
	for _, p := range points {
		xs += p[0]
		ys += p[1]
		zs += p[2]
	}
	n := float64(len(points))
	return Coords{xs / n, ys / n, zs / n}
}

func finite(points []Coords) error {
	for i, p := range points {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d (%v) is not finite: %w",
					i, p, ErrInvalidInput)
			}
		}
	}
	return nil
}
