// Package tetra holds the compile-time combinatorial tables of the
// reference tetrahedron: corners, edges, sides, their incidences and
// opposite relations, and the symmetry group used by the rule
// generator. See spec.md §3 and §4.1 (component C1).
package tetra

// NCorners, NEdges and NSides are the combinatorial constants of a
// tetrahedron.
const (
	NCorners = 4
	NEdges   = 6
	NSides   = 4
)

// CornerOfEdge gives, for edge Ek, the pair of corners it connects.
// E0..E5 ↔ node indices 4..9 for their midpoints (spec §3).
//
// Edges are numbered so that the three mutually-opposite pairs are
// (E0,E5), (E1,E3), (E2,E4) (spec §8 scenario 3: "the shortest of
// {mid(E0)-mid(E5), mid(E1)-mid(E3), mid(E2)-mid(E4)}").
var CornerOfEdge = [NEdges][2]int{
	{0, 1}, // E0
	{0, 2}, // E1
	{0, 3}, // E2
	{1, 3}, // E3
	{1, 2}, // E4
	{2, 3}, // E5
}

// CornerOfSide gives, for side Sk, its three corners in ascending
// order; side Sk is the side opposite corner Ck.
var CornerOfSide = [NSides][3]int{
	{1, 2, 3}, // S0, opposite corner 0
	{0, 2, 3}, // S1, opposite corner 1
	{0, 1, 3}, // S2, opposite corner 2
	{0, 1, 2}, // S3, opposite corner 3
}

// OppositeCornerOfSide gives the corner not on side Sk.
var OppositeCornerOfSide = [NSides]int{0, 1, 2, 3}

// OppositeSideOfCorner gives the side opposite corner Ck.
var OppositeSideOfCorner = [NCorners]int{0, 1, 2, 3}

// OppositeEdgeOfEdge gives, for edge Ek, the unique edge sharing no
// corner with it.
var OppositeEdgeOfEdge = [NEdges]int{5, 3, 4, 1, 2, 0}

// SideOfEdge gives, for edge Ek, the two sides containing it.
var SideOfEdge = [NEdges][2]int{
	{2, 3}, // E0 = (0,1)
	{1, 3}, // E1 = (0,2)
	{1, 2}, // E2 = (0,3)
	{0, 2}, // E3 = (1,3)
	{0, 3}, // E4 = (1,2)
	{0, 1}, // E5 = (2,3)
}

// CondensedEdgeOfSide is a 6-bit mask per side: bit k set iff edge Ek
// lies on that side. Precomputed once, read on every closure pass
// (spec §4.5 Pass B), mirroring the original's initgm-time table
// (original_source gm/shapes3d.c).
var CondensedEdgeOfSide [NSides]uint8

func init() {
	for s := 0; s < NSides; s++ {
		var mask uint8
		for e := 0; e < NEdges; e++ {
			if edgeOnSide(e, s) {
				mask |= 1 << uint(e)
			}
		}
		CondensedEdgeOfSide[s] = mask
	}
}

func edgeOnSide(e, s int) bool {
	for _, side := range SideOfEdge[e] {
		if side == s {
			return true
		}
	}
	return false
}

// EdgeWithCorners returns the edge index connecting corners c0 and c1,
// or -1 if c0 == c1.
func EdgeWithCorners(c0, c1 int) int {
	if c0 == c1 {
		return -1
	}
	for e, pair := range CornerOfEdge {
		if (pair[0] == c0 && pair[1] == c1) || (pair[0] == c1 && pair[1] == c0) {
			return e
		}
	}
	panic("tetra: no edge for given corners")
}

// SideWithCorners returns the side index whose three corners are
// exactly {c0, c1, c2}, or -1 if no such side exists (e.g. an interior
// face of a refined element).
func SideWithCorners(c0, c1, c2 int) int {
	want := [3]int{c0, c1, c2}
	for s, tri := range CornerOfSide {
		if sameSet(want, tri) {
			return s
		}
	}
	return -1
}

func sameSet(a, b [3]int) bool {
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MidNode returns the numbered-node index (spec §3: 4+k) for the
// midpoint of edge Ek.
func MidNode(e int) int { return 4 + e }

// CenterNode is the numbered-node index of the optional interior
// node.
const CenterNode = 10

// Rotation is one of the 8 corner-index permutations (identity, two
// 3-fold rotations about each of corners 0 and 3, and the three
// 2-fold rotations about opposite-edge axes) that generate the symmetry group used
// by the rule generator (spec §3).
type Rotation [NCorners]int

// Rotations holds the 8 generators. Rotations[0] is the identity.
var Rotations = [8]Rotation{
	{0, 1, 2, 3}, // identity
	{0, 2, 3, 1}, // rotate about corner 0, + sense
	{0, 3, 1, 2}, // rotate about corner 0, - sense
	{1, 0, 3, 2}, // rotate about edge (0,1)/(2,3)
	{2, 3, 0, 1}, // rotate about edge (0,2)/(1,3)
	{3, 2, 1, 0}, // rotate about edge (0,3)/(1,2)
	{1, 2, 0, 3}, // rotate about corner 3, + sense
	{2, 0, 1, 3}, // rotate about corner 3, - sense
}

// Apply returns the corner that rotation r sends c to.
func (r Rotation) Apply(c int) int { return r[c] }

// Compose returns the rotation equivalent to applying r first, then s:
// Compose(r, s).Apply(c) == s.Apply(r.Apply(c)).
func Compose(r, s Rotation) Rotation {
	var out Rotation
	for c := 0; c < NCorners; c++ {
		out[c] = s.Apply(r.Apply(c))
	}
	return out
}

// PermuteEdgePattern returns the 6-bit edge pattern obtained by
// relabelling corners under rotation r: bit e of the result is set iff
// bit EdgeWithCorners(r[c0],r[c1]) of pattern is set, for (c0,c1) =
// CornerOfEdge[e].
func PermuteEdgePattern(pattern uint8, r Rotation) uint8 {
	var out uint8
	for e := 0; e < NEdges; e++ {
		c0, c1 := CornerOfEdge[e][0], CornerOfEdge[e][1]
		srcEdge := EdgeWithCorners(r.Apply(c0), r.Apply(c1))
		if pattern&(1<<uint(srcEdge)) != 0 {
			out |= 1 << uint(e)
		}
	}
	return out
}
