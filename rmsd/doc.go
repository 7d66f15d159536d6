/*
Package rmsd implements a version of the Kabsch algorithm for finding the
rotation that best superimposes one set of paired points onto another in the
least-squares sense. It is described in detail here:
http://cnx.org/content/m11608/latest/

The result of a fit is a Fit value: the rotation matrix, the centroids of both
point sets (which the rotation is relative to) and the RMSD between the
rotated points and their targets. Fits over degenerate inputs (coincident or
collinear points) still return a rotation, but are flagged so that callers
can warn before applying an unstable transform.
*/
package rmsd
