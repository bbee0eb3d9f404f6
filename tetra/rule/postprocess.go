package rule

import (
	"sort"

	"github.com/ugcore/tetrefine/tetra"
)

// buildRuleFromSons runs spec §4.2's post-processing steps 1-3 and 6
// (canonical sort, neighbor fill, sonandnode fill, path BFS) over a
// raw candidate son list and returns the finished Rule. Side pattern
// (step 5) must already have been computed by the caller; step 4
// (consistency checks) is left to the caller's Validate call.
func buildRuleFromSons(pattern, sidePattern uint8, sons []sonCand) Rule {
	canon := make([]sonCand, len(sons))
	for i, s := range sons {
		c := s.corners
		sort.Ints(c[:])
		canon[i] = sonCand{corners: c}
	}

	rl := Rule{
		NSons:       len(canon),
		Pattern:     pattern,
		SidePattern: sidePattern,
		Edges:       extractInteriorEdges(canon),
	}
	rl.Sons = fillNeighbors(canon)
	rl.SonAndNode = fillSonAndNode(canon)
	fillPaths(rl.Sons)
	for i := range rl.FollowRule {
		rl.FollowRule[i] = -1
	}
	return rl
}

func liesOnSide(node, s int) bool {
	if node < 4 {
		return node != tetra.OppositeCornerOfSide[s]
	}
	if node < 10 {
		e := node - 4
		for _, ss := range tetra.SideOfEdge[e] {
			if ss == s {
				return true
			}
		}
		return false
	}
	return false
}

func fatherSideOf(triple [3]int) (int, bool) {
	for s := 0; s < tetra.NSides; s++ {
		if liesOnSide(triple[0], s) && liesOnSide(triple[1], s) && liesOnSide(triple[2], s) {
			return s, true
		}
	}
	return 0, false
}

// faceOf returns son corners i excludes position j, in the same
// "omit position j" convention tetra.CornerOfSide uses for the father.
func faceOf(corners [4]int, j int) [3]int {
	var out [3]int
	k := 0
	for i, c := range corners {
		if i == j {
			continue
		}
		out[k] = c
		k++
	}
	return out
}

func sameTriple(a, b [3]int) bool {
	for _, x := range a {
		if x != b[0] && x != b[1] && x != b[2] {
			return false
		}
	}
	return true
}

func fillNeighbors(sons []sonCand) []Son {
	out := make([]Son, len(sons))
	for i, s := range sons {
		out[i].Corners = s.corners
		for f := 0; f < 4; f++ {
			out[i].Neighbors[f] = -1
		}
	}
	for i := range sons {
		for f := 0; f < 4; f++ {
			if out[i].Neighbors[f] != -1 {
				continue
			}
			tri := faceOf(sons[i].corners, f)
			if side, ok := fatherSideOf(tri); ok {
				out[i].Neighbors[f] = NeighborOuterBase + side
				continue
			}
			found := false
			for k := range sons {
				if k == i {
					continue
				}
				for f2 := 0; f2 < 4; f2++ {
					if sameTriple(faceOf(sons[k].corners, f2), tri) {
						out[i].Neighbors[f] = k
						out[k].Neighbors[f2] = i
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if !found {
				panic("rule: son face matches neither a father side nor a sibling -- invalid generator output")
			}
		}
	}
	return out
}

func fillSonAndNode(sons []sonCand) [MaxNewNodes]SonNode {
	var out [MaxNewNodes]SonNode
	for i := range out {
		out[i] = unsetSonNode
	}
	for si, s := range sons {
		for ci, c := range s.corners {
			if c < 4 {
				continue
			}
			idx := c - 4
			if out[idx].Unset() {
				out[idx] = SonNode{Son: si, LocalCorner: ci}
			}
		}
	}
	return out
}

// fillPaths runs a breadth-first search over inner-neighbor faces from
// son 0 and packs each son's path (spec §4.2 step 6).
func fillPaths(sons []Son) {
	if len(sons) == 0 {
		return
	}
	visited := make([]bool, len(sons))
	visited[0] = true
	steps := make([][]int, len(sons))
	queue := []int{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for f, nb := range sons[cur].Neighbors {
			if nb < 0 || nb >= NeighborOuterBase {
				continue
			}
			if visited[nb] {
				continue
			}
			visited[nb] = true
			steps[nb] = append(append([]int(nil), steps[cur]...), f)
			queue = append(queue, nb)
		}
	}
	for i, s := range steps {
		sons[i].Path = NewPath(s)
	}
}

// extractInteriorEdges finds every node pair that co-occurs in some
// son and is neither a father edge nor a type-3 half-edge (spec §3
// "Edge records"; the type-3 half edges are implied directly by the
// pattern bit and are not stored).
func extractInteriorEdges(sons []sonCand) []Edge {
	seen := map[[2]int]bool{}
	var edges []Edge
	for _, s := range sons {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				a, b := s.corners[i], s.corners[j]
				if a > b {
					a, b = b, a
				}
				if isFatherEdgeOrHalfEdge(a, b) {
					continue
				}
				if seen[[2]int{a, b}] {
					continue
				}
				seen[[2]int{a, b}] = true
				edges = append(edges, classifyEdge(a, b))
			}
		}
	}
	return edges
}

func isFatherEdgeOrHalfEdge(a, b int) bool {
	if a < 4 && b < 4 {
		return true // father edge
	}
	if a < 4 && b < 10 {
		e := b - 4
		return tetra.CornerOfEdge[e][0] == a || tetra.CornerOfEdge[e][1] == a
	}
	return false
}

func classifyEdge(a, b int) Edge {
	if a == tetra.CenterNode || b == tetra.CenterNode {
		return Edge{Kind: EdgeCenterCorner, From: a, To: b, Side: -1}
	}
	if side, ok := fatherSideOf([3]int{a, b, a}); ok {
		return Edge{Kind: EdgeSideInterior, From: a, To: b, Side: side}
	}
	return Edge{Kind: EdgeSideInterior, From: a, To: b, Side: -1}
}
