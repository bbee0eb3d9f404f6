package rule

import (
	"sort"

	"github.com/ugcore/tetrefine/tetra"
)

// GenerateOptions controls the offline generator (spec §4.2, §6 CLI
// "MIN_REF_EDGES MAX_REF_EDGES").
type GenerateOptions struct {
	MinRefEdges int // 0..6
	MaxRefEdges int // 0..6, >= MinRefEdges
}

// sonCand is a working son during generation: just its four node
// indices over 0..10. Neighbor/path/canonicalization are filled in by
// postProcess once the full son set for a rule is known.
type sonCand struct {
	corners [4]int
}

// bisectEdge doubles every candidate son that still has both endpoints
// of (c0,c1) among its corners, reassigning one corner to mid in each
// half (spec §4.2 "expanded by bisect_edge": "each call doubles an
// existing son and reassigns one corner to the mid-node of the
// bisected edge").
func bisectEdge(sons []sonCand, c0, c1, mid int) []sonCand {
	out := make([]sonCand, 0, len(sons)*2)
	for _, s := range sons {
		ia, ib := indexOf(s.corners, c0), indexOf(s.corners, c1)
		if ia < 0 || ib < 0 {
			out = append(out, s)
			continue
		}
		s1, s2 := s, s
		s1.corners[ia] = mid
		s2.corners[ib] = mid
		out = append(out, s1, s2)
	}
	return out
}

func indexOf(corners [4]int, v int) int {
	for i, c := range corners {
		if c == v {
			return i
		}
	}
	return -1
}

// ascendingEdgeOrder and descendingEdgeOrder are the two edge-
// processing orders buildSonsByBisectionOrdered is driven with, so
// that a trisected face's diagonal gets settled both ways (spec §4.2
// step 5: "two prototype rules... encoding which face's trisection
// diagonal hits which midpoint"). Which one a given face resolves to
// depends only on whether its two bisected edges are processed
// low-then-high or high-then-low, so the two orders are enough to
// surface both candidates without enumerating every permutation.
var ascendingEdgeOrder = [tetraEdges]int{0, 1, 2, 3, 4, 5}
var descendingEdgeOrder = [tetraEdges]int{5, 4, 3, 2, 1, 0}

// buildSonsByBisectionOrdered runs bisectEdge over every set bit of
// pattern, in the given edge order, starting from the father
// tetrahedron as a single son (spec §4.2 "expanded by bisect_edge").
func buildSonsByBisectionOrdered(pattern uint8, order [tetraEdges]int) []sonCand {
	sons := []sonCand{{corners: [4]int{0, 1, 2, 3}}}
	for _, e := range order {
		if pattern&(1<<uint(e)) == 0 {
			continue
		}
		c0, c1 := tetra.CornerOfEdge[e][0], tetra.CornerOfEdge[e][1]
		sons = bisectEdge(sons, c0, c1, tetra.MidNode(e))
	}
	return sons
}

// cornerSharedByAllEdges reports whether pattern bisects exactly three
// edges that all meet at one father corner -- the "three edges meeting
// at a corner" k=3 family spec §4.2 says requires the center node.
func cornerSharedByAllEdges(pattern uint8) (int, bool) {
	var edges []int
	for e := 0; e < tetraEdges; e++ {
		if pattern&(1<<uint(e)) != 0 {
			edges = append(edges, e)
		}
	}
	if len(edges) != 3 {
		return 0, false
	}
	for c := 0; c < tetra.NCorners; c++ {
		all := true
		for _, e := range edges {
			if tetra.CornerOfEdge[e][0] != c && tetra.CornerOfEdge[e][1] != c {
				all = false
				break
			}
		}
		if all {
			return c, true
		}
	}
	return 0, false
}

// buildCornerFamilySons builds one of the two center-node prototype
// rules spec §4.2 requires for a k=3 pattern whose three bisected
// edges all meet at father corner c. The near-corner tetrahedron
// {c, mid0, mid1, mid2} is cut off as a son with no center node; the
// remaining antiprism-shaped complement is coned entirely from the
// center node over its own boundary (the near triangle, the untouched
// far face opposite c, and the three trapezoids left over on c's other
// three faces once their near corner is removed). Coning every
// boundary face of a star-shaped region from an interior point is a
// volume-exact, non-overlapping tetrahedralization regardless of how
// each trapezoid's diagonal is chosen, which is exactly the freedom
// twist uses to produce the second prototype.
func buildCornerFamilySons(c int, twist bool) []sonCand {
	var far, mid [3]int
	i := 0
	for f := 0; f < tetra.NCorners; f++ {
		if f == c {
			continue
		}
		far[i] = f
		mid[i] = tetra.MidNode(tetra.EdgeWithCorners(c, f))
		i++
	}

	sons := []sonCand{
		{corners: [4]int{c, mid[0], mid[1], mid[2]}},
		{corners: [4]int{tetra.CenterNode, mid[0], mid[1], mid[2]}},
		{corners: [4]int{tetra.CenterNode, far[0], far[1], far[2]}},
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if twist {
			sons = append(sons,
				sonCand{corners: [4]int{tetra.CenterNode, mid[i], far[i], mid[j]}},
				sonCand{corners: [4]int{tetra.CenterNode, far[i], far[j], mid[j]}},
			)
		} else {
			sons = append(sons,
				sonCand{corners: [4]int{tetra.CenterNode, mid[i], far[i], far[j]}},
				sonCand{corners: [4]int{tetra.CenterNode, mid[i], far[j], mid[j]}},
			)
		}
	}
	return sons
}

// candidateSonSets returns every son-set prototype Generate should
// register for pattern: the ascending- and descending-order bisection
// fallbacks always, plus -- for the k=3-at-a-corner family -- the two
// center-node prototypes spec §4.2 calls for. Dedup by interior-edge
// set (dedupOrAppend) collapses whichever of these coincide for a
// given pattern, so registering more candidates than a pattern
// actually needs is harmless.
func candidateSonSets(pattern uint8) [][]sonCand {
	sets := [][]sonCand{
		buildSonsByBisectionOrdered(pattern, ascendingEdgeOrder),
		buildSonsByBisectionOrdered(pattern, descendingEdgeOrder),
	}
	if c, ok := cornerSharedByAllEdges(pattern); ok {
		sets = append(sets,
			buildCornerFamilySons(c, false),
			buildCornerFamilySons(c, true),
		)
	}
	return sets
}

// buildFullRefinementVariant builds the 8-son full-refinement rule
// that slices the interior octahedron along the diagonal connecting
// the midpoints of edges diagIdx and tetra.OppositeEdgeOfEdge[diagIdx]
// (spec §4.2 k=6: "three variants that differ only by which ... pair
// of mutually opposite interior edges is used").
func buildFullRefinementVariant(diagIdx int) []sonCand {
	const full = 0x3F
	a, b := diagIdx, tetra.OppositeEdgeOfEdge[diagIdx]
	ma, mb := tetra.MidNode(a), tetra.MidNode(b)

	// The four corner sons are always present, one per father corner,
	// each with its three adjacent edge midpoints.
	var sons []sonCand
	for c := 0; c < tetra.NCorners; c++ {
		var corners [4]int
		corners[0] = c
		i := 1
		for e := 0; e < tetraEdges; e++ {
			if tetra.CornerOfEdge[e][0] == c || tetra.CornerOfEdge[e][1] == c {
				corners[i] = tetra.MidNode(e)
				i++
			}
		}
		sons = append(sons, sonCand{corners: corners})
	}
	// The octahedron (whose 6 vertices are the 6 edge midpoints) is
	// split into 4 tetrahedra around the chosen diagonal ma-mb. The
	// octahedron's remaining 4 vertices are the midpoints of the four
	// edges not touching a or b; each pairs with ma,mb and one further
	// shared midpoint to bound a son.
	var ring []int
	for e := 0; e < tetraEdges; e++ {
		if e == a || e == b {
			continue
		}
		ring = append(ring, tetra.MidNode(e))
	}
	// ring has the 4 remaining midpoints; consecutive pairs around the
	// octahedron's equator share a face with both ma and mb. Order the
	// ring so consecutive entries are adjacent on the equator: two
	// midpoints m(e1), m(e2) are equator-adjacent iff e1 and e2 share a
	// father corner (i.e. they are not opposite edges).
	ring = orderEquator(ring, a, b)
	for i := 0; i < len(ring); i++ {
		j := (i + 1) % len(ring)
		sons = append(sons, sonCand{corners: [4]int{ma, mb, ring[i], ring[j]}})
	}
	_ = full
	return sons
}

// orderEquator sorts the four octahedron-equator midpoints (edges
// other than a, b) into cyclic adjacency order.
func orderEquator(ring []int, a, b int) []int {
	edgeOf := func(mid int) int { return mid - 4 }
	adjacent := func(e1, e2 int) bool {
		c1 := tetra.CornerOfEdge[e1]
		c2 := tetra.CornerOfEdge[e2]
		for _, x := range c1 {
			for _, y := range c2 {
				if y == x {
					return true
				}
			}
		}
		return false
	}
	ordered := []int{ring[0]}
	remaining := append([]int(nil), ring[1:]...)
	for len(remaining) > 0 {
		last := edgeOf(ordered[len(ordered)-1])
		placed := false
		for i, m := range remaining {
			if adjacent(last, edgeOf(m)) {
				ordered = append(ordered, m)
				remaining = append(remaining[:i], remaining[i+1:]...)
				placed = true
				break
			}
		}
		if !placed {
			// fall back to remaining order; not reached for the four
			// equator midpoints, which always form a cycle.
			ordered = append(ordered, remaining[0])
			remaining = remaining[1:]
		}
	}
	return ordered
}

// buildCopySons returns the single-son "copy" rule body: one son
// equal to the father.
func buildCopySons() []sonCand {
	return []sonCand{{corners: [4]int{0, 1, 2, 3}}}
}

// Generate runs the offline rule generator over every 6-bit pattern
// with popcount in [opts.MinRefEdges, opts.MaxRefEdges], plus the
// always-present NO_REFRULE/COPY_REFRULE pair, and returns the
// resulting table (spec §4.2, §4.3).
func Generate(opts GenerateOptions) (*Table, error) {
	if opts.MinRefEdges < 0 || opts.MaxRefEdges > tetraEdges || opts.MinRefEdges > opts.MaxRefEdges {
		return nil, &ConfigError{Msg: "generate: MIN_REF_EDGES/MAX_REF_EDGES out of [0,6] or out of order"}
	}

	t := &Table{}
	for i := range t.PatternMap {
		t.PatternMap[i] = -1
	}

	// NO_REFRULE and COPY_REFRULE always exist, independent of the
	// requested k-range, since closure and executor reference them
	// unconditionally (spec §4.3).
	noRefine := buildRuleFromSons(0, 0, nil)
	t.Rules = append(t.Rules, noRefine)
	t.PatternMap[noRefine.Key()] = NoRefRule

	copyRule := buildRuleFromSons(0, 0, buildCopySons())
	copyIdx := len(t.Rules)
	t.Rules = append(t.Rules, copyRule)
	// COPY_REFRULE shares pattern 0 with NO_REFRULE; it is reached not
	// through PatternMap (which must stay a function of pattern alone)
	// but by direct index from the closure/executor, matching spec
	// §4.3's treatment of COPY_REFRULE as a second distinguished
	// constant rather than a lookup result.
	_ = copyIdx

	for k := opts.MinRefEdges; k <= opts.MaxRefEdges; k++ {
		if k == 0 {
			continue // handled above
		}
		for pattern := 0; pattern < 64; pattern++ {
			if popcount(uint8(pattern)) != k {
				continue
			}
			if k == tetraEdges {
				addFullRefinementVariants(t)
				continue
			}
			for _, sons := range candidateSonSets(uint8(pattern)) {
				sp := computeSidePattern(sons, uint8(pattern))
				rl := buildRuleFromSons(uint8(pattern), sp, sons)
				if err := rl.Validate(); err != nil {
					return nil, &InvariantError{Msg: err.Error()}
				}
				idx := dedupOrAppend(t, rl)
				key := rl.Key()
				if t.PatternMap[key] < 0 {
					t.PatternMap[key] = int16(idx)
				}
			}
		}
	}

	computeFollowRules(t)
	return t, nil
}

// addFullRefinementVariants builds the three k=6 variants and wires
// the FULL_REFRULE marker plus its rotational aliases (spec §4.3).
func addFullRefinementVariants(t *Table) {
	marker := buildRuleFromSons(0x3F, 0, nil)
	markerIdx := len(t.Rules)
	t.Rules = append(t.Rules, marker)
	t.PatternMap[marker.Key()] = int16(markerIdx)
	t.FullRefRule = markerIdx

	variant := func(diagEdge int) int {
		sons := buildFullRefinementVariant(diagEdge)
		rl := buildRuleFromSons(0x3F, 0, sons)
		idx := len(t.Rules)
		t.Rules = append(t.Rules, rl)
		return idx
	}
	t.FullRefRule0_5 = variant(0)
	t.FullRefRule1_3 = variant(1)
	t.FullRefRule2_4 = variant(2)
}

func popcount(b uint8) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// dedupOrAppend returns the index of an existing rule with the same
// interior-edge set (spec §4.2 dedup key), appending rl as a new rule
// if none matches.
func dedupOrAppend(t *Table, rl Rule) int {
	for i, existing := range t.Rules {
		if existing.Pattern != rl.Pattern || existing.SidePattern != rl.SidePattern {
			continue
		}
		if sameEdgeSet(existing.Edges, rl.Edges) {
			return i
		}
	}
	t.Rules = append(t.Rules, rl)
	return len(t.Rules) - 1
}

func sameEdgeSet(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]Edge(nil), a...), append([]Edge(nil), b...)
	less := func(s []Edge) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Kind != s[j].Kind {
				return s[i].Kind < s[j].Kind
			}
			if s[i].From != s[j].From {
				return s[i].From < s[j].From
			}
			return s[i].To < s[j].To
		}
	}
	sort.Slice(sa, less(sa))
	sort.Slice(sb, less(sb))
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// computeSidePattern implements spec §4.2 step 5: for each side whose
// two bisected-edge indicator bits are set (a trisected face),
// determine which of the two candidate diagonals the generated sons
// actually used, and set the corresponding bit.
func computeSidePattern(sons []sonCand, pattern uint8) uint8 {
	var sp uint8
	for s := 0; s < tetra.NSides; s++ {
		mask := tetra.CondensedEdgeOfSide[s] & pattern
		if popcount(mask) != 2 {
			continue
		}
		var bisected []int
		for e := 0; e < tetraEdges; e++ {
			if mask&(1<<uint(e)) != 0 {
				bisected = append(bisected, e)
			}
		}
		e1, e2 := bisected[0], bisected[1]
		shared := sharedCorner(e1, e2)
		far1 := otherCorner(e1, shared)
		far2 := otherCorner(e2, shared)
		// The unbisected third edge of the face connects far1-far2.
		// Diagonal candidate A: mid(e1)-far2 ; candidate B: far1-mid(e2).
		if pairAppears(sons, tetra.MidNode(e1), far2) {
			continue // bit stays 0
		}
		if pairAppears(sons, far1, tetra.MidNode(e2)) {
			sp |= 1 << uint(s)
		}
	}
	return sp
}

func sharedCorner(e1, e2 int) int {
	a := tetra.CornerOfEdge[e1]
	b := tetra.CornerOfEdge[e2]
	for _, x := range a {
		if x == b[0] || x == b[1] {
			return x
		}
	}
	panic("rule: edges on the same face must share a corner")
}

func otherCorner(e, shared int) int {
	a := tetra.CornerOfEdge[e]
	if a[0] == shared {
		return a[1]
	}
	return a[0]
}

func pairAppears(sons []sonCand, a, b int) bool {
	for _, s := range sons {
		if indexOf(s.corners, a) >= 0 && indexOf(s.corners, b) >= 0 {
			return true
		}
	}
	return false
}
