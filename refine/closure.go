package refine

import (
	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/r3"
	"github.com/ugcore/tetrefine/tetra"
	"github.com/ugcore/tetrefine/tetra/rule"
)

// Closure runs the closure engine over every level of mg, coarsest to
// finest, propagating user marks into a globally consistent MARK/
// MARKCLASS assignment (spec §4.5). Levels are first given a chance to
// restrict COARSEN marks up to their father level (spec §4.5
// "Restriction to coarser level"), finest to coarsest, then each level
// is closed to a local fixed point, coarsest to finest -- the ordering
// spec §4.5 "Termination" calls sufficient ("a single top-down
// restriction over levels + bottom-up closure per level").
func Closure(mg *mesh.Multigrid, cfg *Config) error {
	for i := len(mg.Levels) - 1; i > 0; i-- {
		if err := restrictLevel(mg.Levels[i], mg.Levels[i-1], cfg); err != nil {
			return err
		}
	}
	for _, g := range mg.Levels {
		if err := closeLevel(g, cfg); err != nil {
			return err
		}
	}
	return nil
}

// closeLevel runs Pass A/B/C repeatedly over one level until no
// element's MARK/MARKCLASS changes, per spec §4.5
// "Termination": the fixed point is independent of iteration order,
// so a simple repeat-until-stable loop (rather than a priority
// worklist) is sufficient and matches the BFS-worklist idiom
// elsewhere in this engine (see DESIGN.md).
func closeLevel(g *mesh.Grid, cfg *Config) error {
	for {
		passA(g, cfg)
		changed, err := passB(g, cfg)
		if err != nil {
			return err
		}
		passC(g)
		if !changed {
			return nil
		}
	}
}

// passA resets USED on every element and Pattern/AddPattern on every
// edge, then sets Pattern bits for the edges every RED element's rule
// bisects (spec §4.5 "Pass A").
func passA(g *mesh.Grid, cfg *Config) {
	g.Edges(func(e *mesh.Edge) {
		e.Pattern = false
		e.AddPattern = false
	})
	g.Elements(func(elem *mesh.Element) {
		elem.SetUsed(false)
		elem.SidePattern = 0
		if elem.MarkClass != mesh.Red {
			return
		}
		r := cfg.Rules.Rule(elem.Mark)
		setEdgePatternBits(g, elem, r.Pattern)
	})
}

// setEdgePatternBits sets Edge.Pattern for each father edge of elem
// that pattern bisects, creating the grid Edge on demand.
func setEdgePatternBits(g *mesh.Grid, elem *mesh.Element, pattern uint8) {
	for e := 0; e < tetra.NEdges; e++ {
		if pattern&(1<<uint(e)) == 0 {
			continue
		}
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		edge, ok := g.EdgeBetween(elem.Corners[c0], elem.Corners[c1])
		if !ok {
			edge = g.NewEdge(elem.Corners[c0], elem.Corners[c1])
		}
		edge.Pattern = true
	}
}

// edgePattern reads back the 6-bit condensed edge pattern for elem
// from its six edges' Pattern bits (spec §4.5 Pass B: "recompute its
// condensed edge pattern from the edges' bits").
func edgePattern(g *mesh.Grid, elem *mesh.Element) uint8 {
	var p uint8
	for e := 0; e < tetra.NEdges; e++ {
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		edge, ok := g.EdgeBetween(elem.Corners[c0], elem.Corners[c1])
		if ok && edge.Pattern {
			p |= 1 << uint(e)
		}
	}
	return p
}

// passB recomputes every element's rule from its edges' accumulated
// pattern bits, resolving side-pattern disagreements with neighbors
// and upgrading MARK/MARKCLASS where the resulting rule calls for it
// (spec §4.5 "Pass B"). It reports whether any element's MARK or
// MARKCLASS changed, so closeLevel knows whether another round is
// needed; SidePattern is rebuilt from zero every round (passA clears
// it), so it is not compared against the previous round.
func passB(g *mesh.Grid, cfg *Config) (changed bool, err error) {
	g.Elements(func(elem *mesh.Element) {
		if err != nil {
			return
		}
		ep := edgePattern(g, elem)
		elem.SidePattern = resolveSidePattern(elem, ep, cfg)

		ruleIdx := cfg.Rules.Lookup(ep, elem.SidePattern)
		if ruleIdx < 0 {
			err = errf("passB", KindDecoderMiss, "pattern->rule lookup failed for element %d (edge pattern %06b, side pattern %04b)", elem.ID, ep, elem.SidePattern)
			return
		}
		if ruleIdx == cfg.Rules.FullRefRule {
			ruleIdx = pickFullRefVariant(elem, cfg)
		}

		switch {
		case elem.MarkClass == mesh.Red && ruleIdx == rule.NoRefRule:
			if elem.Mark != rule.CopyRefRule || elem.MarkClass != mesh.Yellow {
				elem.Mark = rule.CopyRefRule
				elem.MarkClass = mesh.Yellow
				changed = true
			}
		case elem.MarkClass == mesh.Red:
			// Still RED: carry the resolved rule forward. This is a
			// no-op whenever ruleIdx already equals the user's own
			// rule, but it is the only place a FULL_REFRULE marker
			// mark gets rewritten to the variant pickFullRefVariant
			// just chose.
			if elem.Mark != ruleIdx {
				elem.Mark = ruleIdx
				changed = true
			}
		case ruleIdx != rule.NoRefRule:
			if elem.Mark != ruleIdx || elem.MarkClass != mesh.Green {
				elem.Mark = ruleIdx
				elem.MarkClass = mesh.Green
				changed = true
			}
		}
	})
	return changed, err
}

// resolveSidePattern toggles elem's side-pattern bit for each face
// whose shared neighbor disagrees about which of a trisected face's
// two midpoints the inner diagonal should meet (spec §4.5 Pass B).
//
// The original's CorrectElementSide resolves this by walking the
// neighbor's own rule's interior-edge list to find the diagonal it
// actually cut and comparing corner-by-corner; here the equivalent
// decision is made directly from the neighbor's rule's SidePattern
// bit for the mirrored face, which the generator already resolved
// once per rule (documented simplification, see DESIGN.md). Both
// diagonal choices are real, separately-registered rules in the
// table (tetra/rule/generate.go's ascending/descending bisection
// pair, and the corner-family center-node prototypes), so this
// actually picks between two distinct candidate rules rather than
// toggling a bit nothing downstream could disagree about.
func resolveSidePattern(elem *mesh.Element, ep uint8, cfg *Config) uint8 {
	sp := elem.SidePattern
	for s := 0; s < tetra.NSides; s++ {
		mask := tetra.CondensedEdgeOfSide[s] & ep
		if popcount8(mask) != 2 {
			continue // face isn't trisected, nothing to disambiguate
		}
		nb := elem.Neighbor[s]
		if nb == nil || nb.MarkClass != mesh.Red || nb.Mark < 0 {
			continue
		}
		nbRule := cfg.Rules.Rule(nb.Mark)
		mirrorSide := mirrorFace(elem, nb)
		if mirrorSide < 0 {
			continue
		}
		if nbRule.SidePattern&(1<<uint(mirrorSide)) != 0 {
			sp |= 1 << uint(s)
		} else {
			sp &^= 1 << uint(s)
		}
	}
	return sp
}

// mirrorFace finds the side index on nb that corresponds to the face
// shared with elem across elem's side s, by matching nb's neighbor
// array back to elem.
func mirrorFace(elem, nb *mesh.Element) int {
	for s2 := 0; s2 < tetra.NSides; s2++ {
		if nb.Neighbor[s2] == elem {
			return s2
		}
	}
	return -1
}

// pickFullRefVariant resolves the FULL_REFRULE marker to one of its
// three rotational variants via the configured best-rule policy
// (spec §4.5.1), evaluated over elem's world corner coordinates.
func pickFullRefVariant(elem *mesh.Element, cfg *Config) int {
	var corners [4]r3.Vec
	for i, c := range elem.Corners {
		corners[i] = c.Vertex.World
	}
	switch cfg.Policy(corners) {
	case 0:
		return cfg.Rules.FullRefRule0_5
	case 1:
		return cfg.Rules.FullRefRule1_3
	default:
		return cfg.Rules.FullRefRule2_4
	}
}

// passC gives every RED element's unmarked neighbors a GREEN copy mark
// and tags RED elements' edges as AddPattern so later generations of
// propagation can tell newly-added bits from already-settled ones
// (spec §4.5 "Pass C").
func passC(g *mesh.Grid) {
	g.Elements(func(elem *mesh.Element) {
		if elem.MarkClass != mesh.Red {
			return
		}
		for _, nb := range elem.Neighbor {
			if nb == nil || nb.Coarsen {
				continue // no neighbor, or already queued to coarsen
			}
			if nb.MarkClass != mesh.Red && nb.Mark == mesh.NoMark {
				nb.Mark = rule.CopyRefRule
				nb.MarkClass = mesh.Green
			}
		}
		for e := 0; e < tetra.NEdges; e++ {
			c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
			if edge, ok := g.EdgeBetween(elem.Corners[c0], elem.Corners[c1]); ok {
				edge.AddPattern = true
			}
		}
	})
}

func popcount8(b uint8) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// restrictLevel implements spec §4.5 "Restriction to coarser level":
// for each father element on coarser, if every son on finer carries
// COARSEN and the father's REFINECLASS is RED, clear the father's MARK
// in preparation to coarsen the whole subtree; green/yellow fathers
// cannot coarsen, so their sons' marks are copied up unchanged
// instead. Where the sons' enforced edge pattern no longer matches
// the father's own REFINE rule but the father was never user-marked,
// the father's MARK is promoted via its rule's FollowRule table.
func restrictLevel(finer, coarser *mesh.Grid, cfg *Config) error {
	var err error
	coarser.Elements(func(father *mesh.Element) {
		if err != nil || father.Son == nil {
			return
		}
		r := cfg.Rules.Rule(father.Refine)
		sons := mesh.Sons(father, r)

		if father.RefineClass == mesh.Red {
			allCoarsen := true
			for _, son := range sons {
				if !son.Coarsen {
					allCoarsen = false
					break
				}
			}
			if allCoarsen {
				father.Mark = mesh.NoMark
				father.MarkClass = mesh.Yellow
				father.Coarsen = false
				for _, son := range sons {
					son.Mark = mesh.NoMark
					son.Coarsen = false
				}
				return
			}
		}

		if father.RefineClass != mesh.Red {
			// Green/yellow fathers copy a son's mark straight up; they
			// cannot coarsen (spec: "green fathers cannot coarsen").
			for _, son := range sons {
				if son.MarkClass == mesh.Red {
					father.Mark = son.Mark
					father.MarkClass = mesh.Green
					break
				}
			}
			return
		}

		if father.Mark != mesh.NoMark && father.MarkClass == mesh.Red {
			return // user-marked father: closure's own Pass B governs it
		}
		observed := observedSonPattern(finer, father)
		if observed == r.Pattern {
			return
		}
		if follow := r.FollowRule[observed]; follow >= 0 {
			father.Mark = int(follow)
			father.MarkClass = mesh.Red
		}
		_ = sons
	})
	return err
}

// observedSonPattern reports, as a 6-bit mask over father's own
// edges, which of father's edges are still materialized as bisected
// on the finer level -- read directly off the finer grid's edges
// between father's corner son-nodes, which is the ground truth of
// what the sons currently enforce (spec §4.5 "Restriction to coarser
// level": "the sons' enforced pattern no longer matches the father's
// REFINE rule").
func observedSonPattern(finer *mesh.Grid, father *mesh.Element) uint8 {
	var p uint8
	for e := 0; e < tetra.NEdges; e++ {
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		n0, n1 := father.Corners[c0].Son, father.Corners[c1].Son
		if n0 == nil || n1 == nil {
			continue
		}
		if edge, ok := finer.EdgeBetween(n0, n1); ok && edge.Mid != nil {
			p |= 1 << uint(e)
		}
	}
	return p
}
