package rmsd

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix3 represents a 3x3 matrix, in row-major order
// | 0 1 2 |
// | 3 4 5 |
// | 6 7 8 |
type Matrix3 [9]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// At returns the value at row r and column c.
func (a Matrix3) At(r, c int) float64 {
	return a[r*3+c]
}

// Rows returns the matrix as a slice of rows.
func (a Matrix3) Rows() [3][3]float64 {
	return [3][3]float64{
		{a[0], a[1], a[2]},
		{a[3], a[4], a[5]},
		{a[6], a[7], a[8]},
	}
}

// Mul returns the product a*b.
func (a Matrix3) Mul(b Matrix3) Matrix3 {
	return Matrix3{
		a[0]*b[0] + a[1]*b[3] + a[2]*b[6],
		a[0]*b[1] + a[1]*b[4] + a[2]*b[7],
		a[0]*b[2] + a[1]*b[5] + a[2]*b[8],

		a[3]*b[0] + a[4]*b[3] + a[5]*b[6],
		a[3]*b[1] + a[4]*b[4] + a[5]*b[7],
		a[3]*b[2] + a[4]*b[5] + a[5]*b[8],

		a[6]*b[0] + a[7]*b[3] + a[8]*b[6],
		a[6]*b[1] + a[7]*b[4] + a[8]*b[7],
		a[6]*b[2] + a[7]*b[5] + a[8]*b[8],
	}
}

// Transpose returns the transpose of a. For a rotation matrix, this is also
// its inverse.
func (a Matrix3) Transpose() Matrix3 {
	return Matrix3{
		a[0], a[3], a[6],
		a[1], a[4], a[7],
		a[2], a[5], a[8],
	}
}

// Det returns the determinant of a.
func (a Matrix3) Det() float64 {
	// 048 + 156 + 237 - 246 - 138 - 057
	return a[0]*a[4]*a[8] +
		a[1]*a[5]*a[6] +
		a[2]*a[3]*a[7] -
		a[2]*a[4]*a[6] -
		a[1]*a[3]*a[8] -
		a[0]*a[5]*a[7]
}

// Apply returns the column vector a*c.
func (a Matrix3) Apply(c Coords) Coords {
	return Coords{
		a[0]*c[0] + a[1]*c[1] + a[2]*c[2],
		a[3]*c[0] + a[4]*c[1] + a[5]*c[2],
		a[6]*c[0] + a[7]*c[1] + a[8]*c[2],
	}
}

// covariance computes the 3x3 cross-covariance matrix of two centered point
// sets, i.e., X(Y^T) where X and Y are the 3xN matrices whose columns are the
// points of xs and ys.
func covariance(xs, ys []Coords) Matrix3 {
	var C Matrix3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for i := range xs {
				C[r*3+c] += xs[i][r] * ys[i][c]
			}
		}
	}
	return C
}

// svd computes the full singular value decomposition A = U*S*(V^T).
// The singular values are returned in descending order. ok is false if the
// factorization failed, which only happens with non-finite input.
func (a Matrix3) svd() (U, V Matrix3, s [3]float64, ok bool) {
	var dec mat.SVD
	if !dec.Factorize(mat.NewDense(3, 3, a[:]), mat.SVDFull) {
		return U, V, s, false
	}

	var u, v mat.Dense
	dec.UTo(&u)
	dec.VTo(&v)
	copy(s[:], dec.Values(nil))
	return fromDense(&u), fromDense(&v), s, true
}

func fromDense(m mat.Matrix) Matrix3 {
	var a Matrix3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			a[r*3+c] = m.At(r, c)
		}
	}
	return a
}
