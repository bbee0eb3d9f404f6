// Package r3 provides 3D vector and matrix types used for vertex world
// and local coordinates throughout the mesh and refinement packages.
package r3

import "math"

// Vec is a 3D vector or point.
type Vec struct {
	X, Y, Z float64
}

// Add returns the vector sum of p and q.
func (p Vec) Add(q Vec) Vec {
	return Vec{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns the vector difference p-q.
func (p Vec) Sub(q Vec) Vec {
	return Vec{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p scaled by f.
func (p Vec) Scale(f float64) Vec {
	return Vec{f * p.X, f * p.Y, f * p.Z}
}

// Dot returns the dot product of p and q.
func (p Vec) Dot(q Vec) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product p×q.
func (p Vec) Cross(q Vec) Vec {
	return Vec{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

// Norm returns the Euclidean length of p.
func (p Vec) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Distance returns the Euclidean distance between p and q.
func (p Vec) Distance(q Vec) float64 {
	return p.Sub(q).Norm()
}

// Mid returns the arithmetic midpoint of p and q.
func (p Vec) Mid(q Vec) Vec {
	return Vec{(p.X + q.X) / 2, (p.Y + q.Y) / 2, (p.Z + q.Z) / 2}
}

// Mean returns the arithmetic mean of pts. Mean panics if pts is empty.
func Mean(pts ...Vec) Vec {
	if len(pts) == 0 {
		panic("r3: mean of no points")
	}
	var sum Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}
