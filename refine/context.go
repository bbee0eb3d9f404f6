package refine

import (
	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/r3"
	"github.com/ugcore/tetrefine/tetra"
	"github.com/ugcore/tetrefine/tetra/rule"
)

// Context is the length-11 node-reference vector for one father
// element (spec §4.4): positions 0..3 are corner son-nodes, 4..9 are
// the midnodes of refined edges, and 10 is the center node.
type Context struct {
	Corner [tetra.NCorners]*mesh.Node
	Mid    [tetra.NEdges]*mesh.Node
	Center *mesh.Node
}

// At returns the node at numbered-node index i (0..10), or nil if
// unpopulated.
func (c *Context) At(i int) *mesh.Node {
	switch {
	case i < tetra.NCorners:
		return c.Corner[i]
	case i < tetra.NCorners+tetra.NEdges:
		return c.Mid[i-tetra.NCorners]
	case i == tetra.CenterNode:
		return c.Center
	default:
		return nil
	}
}

// Gather fills a Context for elem's current REFINE rule (spec §4.4
// "gather(current_refine) fills the context in O(sons + edges)").
func Gather(g *mesh.Grid, elem *mesh.Element, cfg *Config) (*Context, error) {
	var ctx Context
	for i, corner := range elem.Corners {
		ctx.Corner[i] = corner.Son
	}
	r := cfg.Rules.Rule(elem.Refine)
	for e := 0; e < tetra.NEdges; e++ {
		if r.Pattern&(1<<uint(e)) == 0 {
			continue
		}
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		edge, ok := g.EdgeBetween(elem.Corners[c0], elem.Corners[c1])
		if !ok {
			return nil, errf("Gather", KindInvariant, "edge E%d of a RED element has no grid edge", e)
		}
		ctx.Mid[e] = edge.Mid
	}
	ctx.Center = elem.Center
	return &ctx, nil
}

// needsCorner reports whether ruleIdx's sons reference father corner
// c at all. Every rule with at least one son uses every father
// corner directly or indirectly except NO_REFRULE, whose empty son
// list needs none.
func needsCorner(r *rule.Rule, _ int) bool { return len(r.Sons) > 0 }

func needsMid(r *rule.Rule, e int) bool { return r.Pattern&(1<<uint(e)) != 0 }

func needsCenter(r *rule.Rule) bool { return !r.SonAndNode[tetra.CenterNode-tetra.NCorners].Unset() }

// Update reconciles ctx (gathered under elem's old rule) with newRule,
// allocating and disposing nodes as needed (spec §4.4 "update(new_mark)").
// g is the grid elem itself lives on (it owns the father-edge bookkeeping
// Gather/Update key off); finer is the next level down, which owns the
// corner/mid/center son-nodes Update allocates or frees. On success
// elem's Corners/Center node-son links and the grid's edge mid-node
// links are updated in place, and ctx itself is mutated.
func Update(g, finer *mesh.Grid, elem *mesh.Element, newRule int, ctx *Context, cfg *Config) error {
	nr := cfg.Rules.Rule(newRule)

	for i, corner := range elem.Corners {
		want := needsCorner(nr, i)
		switch {
		case want && ctx.Corner[i] == nil:
			n := finer.NewNode(corner.Vertex)
			n.Father = corner
			corner.Son = n
			ctx.Corner[i] = n
		case !want && ctx.Corner[i] != nil && ctx.Corner[i].Refs() == 0:
			corner.Son = nil
			finer.RemoveNode(ctx.Corner[i])
			ctx.Corner[i] = nil
		}
	}

	for e := 0; e < tetra.NEdges; e++ {
		want := needsMid(nr, e)
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		edge, ok := g.EdgeBetween(elem.Corners[c0], elem.Corners[c1])
		if !ok {
			edge = g.NewEdge(elem.Corners[c0], elem.Corners[c1])
		}
		switch {
		case want && ctx.Mid[e] == nil:
			v, err := midVertex(g, elem, edge, e, cfg)
			if err != nil {
				return err
			}
			edge.Mid = finer.NewNode(v)
			ctx.Mid[e] = edge.Mid
		case !want && ctx.Mid[e] != nil && ctx.Mid[e].Refs() == 0:
			finer.RemoveNode(ctx.Mid[e])
			edge.Mid = nil
			ctx.Mid[e] = nil
		}
	}

	switch {
	case needsCenter(nr) && ctx.Center == nil:
		v := centerVertex(elem)
		ctx.Center = finer.NewNode(v)
		elem.Center = ctx.Center
	case !needsCenter(nr) && ctx.Center != nil && ctx.Center.Refs() == 0:
		finer.RemoveNode(ctx.Center)
		elem.Center = nil
		ctx.Center = nil
	}

	return nil
}

// cornerRef holds the father-local coordinates of the father's four
// corners under the map fatherJacobian builds.
var cornerRef = [tetra.NCorners]r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}

// midVertex creates or projects the midpoint vertex for father edge e
// of elem (spec §4.6.1).
func midVertex(_ *mesh.Grid, elem *mesh.Element, edge *mesh.Edge, e int, cfg *Config) (*mesh.Vertex, error) {
	c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
	a, b := elem.Corners[c0].Vertex, elem.Corners[c1].Vertex
	mid := a.World.Mid(b.World)
	local := cornerRef[c0].Mid(cornerRef[c1])

	if !a.OnBound || !b.OnBound {
		return &mesh.Vertex{World: mid, Local: local}, nil
	}
	common := a.CommonSegments(b)
	if len(common) == 0 {
		return &mesh.Vertex{World: mid, Local: local}, nil
	}

	best, bestWorld, bestDist, have := mesh.BoundaryParam{}, mid, 0.0, false
	for _, seg := range common {
		pa, _ := a.ParamOn(seg)
		pb, _ := b.ParamOn(seg)
		p, world := projectOnSegment(a.World, b.World, pa, pb, mid)
		dist := world.Distance(mid)
		if !have || dist < bestDist {
			best, bestWorld, bestDist, have = mesh.BoundaryParam{Segment: seg, Local: p}, world, dist, true
		}
	}
	if len(common) > 1 {
		for _, seg := range common {
			if seg == best.Segment {
				continue
			}
			pa, _ := a.ParamOn(seg)
			pb, _ := b.ParamOn(seg)
			_, world := projectOnSegment(a.World, b.World, pa, pb, mid)
			if world.Distance(bestWorld) > cfg.MaxParDist {
				return nil, errf("midVertex", KindCapacity, "boundary segments disagree by more than MaxParDist on edge E%d", e)
			}
		}
	}

	v := &mesh.Vertex{World: bestWorld, Local: local, OnBound: true, Params: []mesh.BoundaryParam{best}}
	jac, err := fatherJacobian(elem)
	if err != nil {
		return nil, errf("midVertex", KindGeometric, "father Jacobian: %v", err)
	}
	newLocal, err := jac.Solve(v.World.Sub(elem.Corners[0].Vertex.World), 1e-12)
	if err != nil {
		return nil, errf("midVertex", KindGeometric, "singular father Jacobian projecting boundary midvertex: %v", err)
	}
	v.Local = newLocal
	return v, nil
}

// projectOnSegment runs the coarse 10-subinterval linear scan spec
// §4.6.1 prescribes, returning the closest boundary-local parameter to
// target and the world point it maps to (projection is linear in
// local-parameter space, matching the search the scan performs -- a
// real implementation would consult the boundary-segment geometry
// collaborator; here world position is approximated by linear
// interpolation of the two endpoints' local parameters mapped through
// the same linear blend used for interior points, since no segment
// geometry evaluator is part of this core).
func projectOnSegment(aWorld, bWorld r3.Vec, pa, pb mesh.BoundaryParam, target r3.Vec) ([2]float64, r3.Vec) {
	const steps = 10
	bestDist := -1.0
	var bestParam [2]float64
	var bestWorld r3.Vec
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		world := aWorld.Scale(1 - t).Add(bWorld.Scale(t))
		dist := world.Distance(target)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestWorld = world
			bestParam = [2]float64{
				pa.Local[0] + t*(pb.Local[0]-pa.Local[0]),
				pa.Local[1] + t*(pb.Local[1]-pa.Local[1]),
			}
		}
	}
	return bestParam, bestWorld
}

func centerVertex(elem *mesh.Element) *mesh.Vertex {
	pts := make([]r3.Vec, 4)
	locals := make([]r3.Vec, 4)
	for i, c := range elem.Corners {
		pts[i] = c.Vertex.World
		locals[i] = cornerRef[i]
	}
	return &mesh.Vertex{World: r3.Mean(pts...), Local: r3.Mean(locals...)}
}

// fatherJacobian builds the 3x3 matrix mapping local reference
// coordinates to world displacement from corner 0 (spec §4.6.1 "detect
// singular by a small threshold and fail").
func fatherJacobian(elem *mesh.Element) (r3.Mat, error) {
	o := elem.Corners[0].Vertex.World
	var cols [3]r3.Vec
	for i := 0; i < 3; i++ {
		cols[i] = elem.Corners[i+1].Vertex.World.Sub(o)
	}
	return r3.NewMat([9]float64{
		cols[0].X, cols[1].X, cols[2].X,
		cols[0].Y, cols[1].Y, cols[2].Y,
		cols[0].Z, cols[1].Z, cols[2].Z,
	}), nil
}
