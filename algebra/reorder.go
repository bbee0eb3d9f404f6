package algebra

import (
	"strings"

	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/r3"
)

// DependencyFunc is an algebraic dependency (spec §4.7.1): given the
// overlay and its backing grid, it sets MDOWN/MUP on every
// non-diagonal matrix.
type DependencyFunc func(o *Overlay, g *mesh.Grid)

// Lex returns the built-in "lex" dependency: orients matrices by
// physical coordinate under the axis priority named by order (a
// permutation of "xyz", e.g. "yzx") (spec §4.7.1 "lex dependency").
func Lex(order string) DependencyFunc {
	axes := axisOrder(order)
	return func(o *Overlay, g *mesh.Grid) {
		o.Vectors(func(v *Vector) {
			v.Matrices(func(m *Matrix) {
				if m.Diag {
					return
				}
				c := lexCompare(coordOf(m.From), coordOf(m.To), axes)
				m.Down = c < 0
				m.Up = c > 0
			})
		})
	}
}

func axisOrder(order string) [3]int {
	var axes [3]int
	for i, c := range strings.ToLower(order) {
		switch c {
		case 'x':
			axes[i] = 0
		case 'y':
			axes[i] = 1
		case 'z':
			axes[i] = 2
		}
	}
	return axes
}

func axisVal(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func lexCompare(a, b r3.Vec, axes [3]int) int {
	for _, ax := range axes {
		av, bv := axisVal(a, ax), axisVal(b, ax)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// coordOf returns the world coordinate a vector's owner sits at. Side
// vectors have no independent world position in this collaborator
// model (mesh.ElementSide carries no owning-Element back-link) and
// fall back to the origin -- a documented limitation that only
// affects relative ordering among side vectors, never node/edge/elem
// vectors' ordering against each other.
func coordOf(v *Vector) r3.Vec {
	switch owner := v.Owner.(type) {
	case *mesh.Node:
		if owner.Vertex != nil {
			return owner.Vertex.World
		}
	case *mesh.Edge:
		a, b := owner.N[0], owner.N[1]
		if a != nil && b != nil && a.Vertex != nil && b.Vertex != nil {
			return a.Vertex.World.Mid(b.Vertex.World)
		}
	case *mesh.Element:
		var pts []r3.Vec
		for _, c := range owner.Corners {
			if c != nil && c.Vertex != nil {
				pts = append(pts, c.Vertex.World)
			}
		}
		if len(pts) > 0 {
			return r3.Mean(pts...)
		}
	}
	return r3.Vec{}
}

// Layout selects the streamline reordering's placement of feedback-
// vertex-set cuts (spec §4.7.1).
type Layout int

const (
	// FCFCLL interleaves cuts with the front waves as they're found.
	FCFCLL Layout = iota
	// FFCCLL collects cuts into a separate middle block.
	FFCCLL
)

type degree struct{ up, down int }

// Reorder computes a streamline vector ordering from matrices already
// oriented by a DependencyFunc, following spec §4.7.1's wave
// pseudocode: alternating fronts of sources (up==0, no incoming),
// sinks (down==0, no outgoing), and feedback-vertex-set cuts chosen
// arbitrarily from whatever remains once both waves stall.
func Reorder(o *Overlay, layout Layout) []*Vector {
	var all []*Vector
	o.Vectors(func(v *Vector) { all = append(all, v) })
	n := len(all)

	deg := make(map[*Vector]*degree, n)
	for _, v := range all {
		deg[v] = &degree{}
	}
	for _, v := range all {
		v.Matrices(func(m *Matrix) {
			if m.Diag {
				return
			}
			if m.Down {
				deg[v].down++
			}
			if m.Up {
				deg[v].up++
			}
		})
	}

	visited := make(map[*Vector]bool, n)
	enqueued := make(map[*Vector]bool, n)
	var frontQ, backQ, frontOrder, backOrder, middle []*Vector

	for _, v := range all {
		if deg[v].up == 0 {
			frontQ = append(frontQ, v)
			enqueued[v] = true
		}
	}
	for _, v := range all {
		if deg[v].down == 0 && !enqueued[v] {
			backQ = append(backQ, v)
			enqueued[v] = true
		}
	}

	drainFront := func() {
		for len(frontQ) > 0 {
			v := frontQ[0]
			frontQ = frontQ[1:]
			if visited[v] {
				continue
			}
			visited[v] = true
			frontOrder = append(frontOrder, v)
			v.Matrices(func(m *Matrix) {
				if m.Diag || !m.Down || visited[m.To] {
					return
				}
				deg[m.To].up--
				if deg[m.To].up <= 0 {
					frontQ = append(frontQ, m.To)
				}
			})
		}
	}
	drainBack := func() {
		for len(backQ) > 0 {
			v := backQ[0]
			backQ = backQ[1:]
			if visited[v] {
				continue
			}
			visited[v] = true
			backOrder = append(backOrder, v)
			v.Matrices(func(m *Matrix) {
				if m.Diag || !m.Up || visited[m.To] {
					return
				}
				deg[m.To].down--
				if deg[m.To].down <= 0 {
					backQ = append(backQ, m.To)
				}
			})
		}
	}

	for len(visited) < n {
		drainFront()
		drainBack()
		if len(visited) == n {
			break
		}
		var cut *Vector
		for _, v := range all {
			if !visited[v] {
				cut = v
				break
			}
		}
		visited[cut] = true
		if layout == FCFCLL {
			frontOrder = append(frontOrder, cut)
		} else {
			middle = append(middle, cut)
		}
		cut.Matrices(func(m *Matrix) {
			if m.Diag || !m.Down || visited[m.To] {
				return
			}
			deg[m.To].up--
			if deg[m.To].up <= 0 {
				frontQ = append(frontQ, m.To)
			}
		})
	}

	order := make([]*Vector, 0, n)
	order = append(order, frontOrder...)
	order = append(order, middle...)
	for i := len(backOrder) - 1; i >= 0; i-- {
		order = append(order, backOrder[i])
	}
	return order
}
