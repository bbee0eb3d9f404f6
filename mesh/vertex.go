package mesh

import "github.com/ugcore/tetrefine/r3"

// BoundaryParam is a vertex's local parametrization on one boundary
// segment (spec §3 "Vertex": "may have a boundary parametrization").
type BoundaryParam struct {
	Segment int
	Local   [2]float64
}

// Vertex is a point in world space, owned by exactly one Node (spec
// §3 "Vertex"). Inner vertices additionally carry local coordinates
// within their father tetrahedron.
type Vertex struct {
	ID      int64
	World   r3.Vec
	Local   r3.Vec // local coords in father tetrahedron; zero for level-0 vertices
	Params  []BoundaryParam
	OnBound bool
}

// CommonSegments returns the segment IDs that both v and w belong to,
// in v's parametrization order.
func (v *Vertex) CommonSegments(w *Vertex) []int {
	if v == nil || w == nil {
		return nil
	}
	var out []int
	for _, p := range v.Params {
		for _, q := range w.Params {
			if p.Segment == q.Segment {
				out = append(out, p.Segment)
				break
			}
		}
	}
	return out
}

// ParamOn returns v's parameter on segment seg and whether v has one.
func (v *Vertex) ParamOn(seg int) (BoundaryParam, bool) {
	for _, p := range v.Params {
		if p.Segment == seg {
			return p, true
		}
	}
	return BoundaryParam{}, false
}
