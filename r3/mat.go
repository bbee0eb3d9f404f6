package r3

// Mat is a row-major 3x3 matrix. The zero value is the zero matrix.
type Mat struct {
	m [9]float64
}

// NewMat returns a Mat populated from val in row-major order.
func NewMat(val [9]float64) Mat {
	return Mat{m: val}
}

// At returns the element at row i, column j.
func (a Mat) At(i, j int) float64 { return a.m[3*i+j] }

// Set sets the element at row i, column j.
func (a *Mat) Set(i, j int, v float64) { a.m[3*i+j] = v }

// MulVec returns the matrix-vector product A*v.
func (a Mat) MulVec(v Vec) Vec {
	return Vec{
		a.m[0]*v.X + a.m[1]*v.Y + a.m[2]*v.Z,
		a.m[3]*v.X + a.m[4]*v.Y + a.m[5]*v.Z,
		a.m[6]*v.X + a.m[7]*v.Y + a.m[8]*v.Z,
	}
}

// Det returns the determinant of a.
func (a Mat) Det() float64 {
	return a.m[0]*(a.m[4]*a.m[8]-a.m[5]*a.m[7]) -
		a.m[1]*(a.m[3]*a.m[8]-a.m[5]*a.m[6]) +
		a.m[2]*(a.m[3]*a.m[7]-a.m[4]*a.m[6])
}

// ErrSingular is returned by Solve when the Jacobian is singular to
// the supplied tolerance.
type ErrSingular struct {
	Det float64
}

func (e *ErrSingular) Error() string {
	return "r3: singular matrix"
}

// Solve solves A*x = b for x via Cramer's rule, used to invert the
// father-tetrahedron Jacobian when recomputing local coordinates of a
// boundary-projected mid-vertex (spec §4.6.1). tol bounds |det(A)|
// below which the system is declared singular.
func (a Mat) Solve(b Vec, tol float64) (Vec, error) {
	det := a.Det()
	if det < 0 {
		if -det < tol {
			return Vec{}, &ErrSingular{Det: det}
		}
	} else if det < tol {
		return Vec{}, &ErrSingular{Det: det}
	}

	ax := a
	ax.m[0], ax.m[3], ax.m[6] = b.X, b.Y, b.Z
	ay := a
	ay.m[1], ay.m[4], ay.m[7] = b.X, b.Y, b.Z
	az := a
	az.m[2], az.m[5], az.m[8] = b.X, b.Y, b.Z

	return Vec{ax.Det() / det, ay.Det() / det, az.Det() / det}, nil
}
