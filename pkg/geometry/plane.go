package geometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooFewPoints is returned when a plane fit gets fewer than three points.
	ErrTooFewPoints = errors.New("need at least 3 points to fit a plane")
	// ErrDegenerate is returned when the points do not span a plane.
	ErrDegenerate = errors.New("points are coincident or collinear")
)

// degenerateRatio bounds the middle eigenvalue relative to the largest.
// Below it the point cloud is treated as a line or a single point.
const degenerateRatio = 1e-12

// Plane is an infinite plane given by a point on it and a unit normal
type Plane struct {
	Origin Vector3
	Normal Vector3
}

// Distance returns the signed distance from p to the plane
func (p Plane) Distance(point Vector3) float64 {
	return point.Sub(p.Origin).Dot(p.Normal)
}

// Contains reports whether point lies within tol of the plane
func (p Plane) Contains(point Vector3, tol float64) bool {
	d := p.Distance(point)
	return d <= tol && d >= -tol
}

// Project returns the orthogonal projection of point onto the plane
func (p Plane) Project(point Vector3) Vector3 {
	return point.Sub(p.Normal.Mul(p.Distance(point)))
}

// Flip returns the same plane with the normal reversed
func (p Plane) Flip() Plane {
	return Plane{Origin: p.Origin, Normal: p.Normal.Mul(-1)}
}

// FitPlane fits the least-squares plane through points.
//
// The plane passes through the centroid; its normal is the eigenvector of the
// covariance matrix with the smallest eigenvalue, which minimizes the sum of
// squared orthogonal distances. The sign of the normal is arbitrary.
func FitPlane(points []Vector3) (Plane, error) {
	if len(points) < 3 {
		return Plane{}, ErrTooFewPoints
	}

	var centroid Vector3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1.0 / float64(len(points)))

	cov := mat.NewSymDense(3, nil)
	for _, p := range points {
		d := p.Sub(centroid)
		c := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+c[i]*c[j])
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return Plane{}, fmt.Errorf("eigen decomposition failed: %w", ErrDegenerate)
	}

	// Values are in ascending order.
	values := eig.Values(nil)
	if values[2] <= 0 || values[1] <= values[2]*degenerateRatio {
		return Plane{}, ErrDegenerate
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	normal := NewVector3(vectors.At(0, 0), vectors.At(1, 0), vectors.At(2, 0)).Normalize()

	return Plane{Origin: centroid, Normal: normal}, nil
}
