// Package rule implements the offline rule generator (spec §4.2,
// component C2) and the runtime rule table and pattern decoder
// (spec §4.3, component C3).
package rule

import "fmt"

// EdgeKind classifies an interior edge introduced by a rule (spec §3
// "Edge records").
type EdgeKind int

//go:generate stringer -type=EdgeKind
const (
	EdgeNone         EdgeKind = iota // unused slot
	EdgeCenterCorner                 // center-to-corner
	EdgeSideInterior                 // not center-to-corner or half of a father edge: inside one father side, or (Side -1) inside the father
	EdgeMidEndpoint                  // midpoint-to-endpoint, half of a father edge
)

// String implements fmt.Stringer in the shape golang.org/x/tools/cmd/stringer
// would generate for this type (toolchain not run in this exercise;
// see DESIGN.md).
func (k EdgeKind) String() string {
	switch k {
	case EdgeNone:
		return "EdgeNone"
	case EdgeCenterCorner:
		return "EdgeCenterCorner"
	case EdgeSideInterior:
		return "EdgeSideInterior"
	case EdgeMidEndpoint:
		return "EdgeMidEndpoint"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// MaxSons is the largest number of sons any rule produces (spec §3).
const MaxSons = 12

// MaxInteriorEdges bounds the interior-edge list a rule can carry.
const MaxInteriorEdges = 16

// MaxNewNodes is the number of node slots (4..10) a rule can populate
// via SonAndNode.
const MaxNewNodes = 7

// Edge is one interior edge a rule introduces, numbered over 0..10
// (spec §3 "Edge records").
type Edge struct {
	Kind EdgeKind
	From int
	To   int
	Side int // owning side (0..3) for EdgeSideInterior edges lying on a father side, else -1
}

// NeighborOuterBase is added to a father side index to encode an outer
// neighbor in Son.Neighbors (spec §3: "value >= 20 => outer neighbor").
const NeighborOuterBase = 20

// Son is one son tetrahedron of a rule: its four node indices (0..10)
// and, per face, a neighbor descriptor.
type Son struct {
	Corners   [4]int
	Neighbors [4]int // <20: sibling son index; >=20: father side = value-20
	Path      Path   // walk from son 0 to this son (unused for son 0)
}

// IsOuterNeighbor reports whether the neighbor across face f is a
// father side (outer) rather than a sibling (inner), and returns the
// father side number if so.
func (s Son) IsOuterNeighbor(f int) (side int, outer bool) {
	v := s.Neighbors[f]
	if v >= NeighborOuterBase {
		return v - NeighborOuterBase, true
	}
	return 0, false
}

// SonNode records where a newly introduced node (4..10) can be reached:
// the owning son and the local corner index within that son.
type SonNode struct {
	Son         int
	LocalCorner int
}

// Unset reports whether this SonAndNode slot was never populated
// (the corresponding node does not exist under this rule).
func (n SonNode) Unset() bool { return n.Son < 0 }

var unsetSonNode = SonNode{Son: -1, LocalCorner: -1}

// Rule is a complete recipe for subdividing a reference tetrahedron
// (spec §3 "Rule").
type Rule struct {
	NSons       int
	Pattern     uint8 // 6-bit condensed edge pattern
	SidePattern uint8 // 4-bit side pattern (disambiguates trisected faces)
	Edges       []Edge
	Sons        []Son
	SonAndNode  [MaxNewNodes]SonNode // index i <-> node 4+i

	// FollowRule maps an observed 6-bit edge pattern (after some
	// neighborhood forces additional bisections) to the index of the
	// smallest rule that both refines this rule's pattern and
	// satisfies the new one, or -1 if none exists (spec §4.5
	// "Restriction to coarser level"; original_source GenerateRules.c
	// FollowRule). Populated by the generator's post-processing pass,
	// not by Lookup.
	FollowRule [1 << tetraEdges]int16
}

const tetraEdges = 6

// Key returns the pattern|(sidePattern<<6) lookup key for this rule
// (spec §3 "Pattern->Rule map").
func (r Rule) Key() int {
	return int(r.Pattern) | int(r.SidePattern)<<6
}

// Validate checks the structural invariants spec §3 and §4.2 step 4
// place on a generated rule: every new-node index appearing in sons
// has a pattern bit set, and vice versa. It is run once by the
// generator; runtime code trusts its output (spec §7 "Invariant
// violation").
func (r Rule) Validate() error {
	seen := [MaxNewNodes]bool{}
	for si, s := range r.Sons {
		for _, c := range s.Corners {
			if c < 4 {
				continue
			}
			idx := c - 4
			if idx >= MaxNewNodes {
				return fmt.Errorf("rule: son %d references out-of-range node %d", si, c)
			}
			seen[idx] = true
			if idx < tetraEdges && r.Pattern&(1<<uint(idx)) == 0 {
				return fmt.Errorf("rule: son %d uses midpoint of edge %d but pattern bit is clear", si, idx)
			}
		}
	}
	for e := 0; e < tetraEdges; e++ {
		if r.Pattern&(1<<uint(e)) != 0 && !seen[e] {
			return fmt.Errorf("rule: pattern bit %d set but no son references its midpoint", e)
		}
	}
	for i, sn := range r.SonAndNode {
		if sn.Unset() {
			if seen[i] {
				return fmt.Errorf("rule: node %d used by a son but missing from SonAndNode", 4+i)
			}
			continue
		}
		if !seen[i] {
			return fmt.Errorf("rule: SonAndNode entry %d set but no son uses node %d", i, 4+i)
		}
	}
	return nil
}

// Distinguished rule indices (spec §4.3).
const (
	NoRefRule   = 0
	CopyRefRule = 1
)

// Table is the runtime-loaded rule set: the rule slice plus the dense
// pattern->rule-index lookup (spec §4.3).
type Table struct {
	Rules      []Rule
	PatternMap [1 << (tetraEdges + 4)]int16 // -1 for unused combinations

	// FullRefRule and its three rotational variants, indexed by which
	// pair of opposite edge-midpoints supplies the octahedron's
	// interior diagonal (spec §4.3, §4.5.1).
	FullRefRule       int
	FullRefRule0_5    int
	FullRefRule1_3    int
	FullRefRule2_4    int
}

// Lookup resolves a rule index for the given edge pattern and side
// pattern (spec §4.3). It returns -1 for inadmissible combinations;
// callers (the closure engine) must treat -1 as a fatal decoder miss
// (spec §7 "Decoder miss").
func (t *Table) Lookup(edgePattern, sidePattern uint8) int {
	key := int(edgePattern) | int(sidePattern)<<tetraEdges
	if key < 0 || key >= len(t.PatternMap) {
		return -1
	}
	idx := t.PatternMap[key]
	if idx < 0 {
		return -1
	}
	return int(idx)
}

// Rule returns the rule at index i, or panics if i is out of range --
// an out-of-range rule index after Lookup succeeded indicates a
// corrupt table (spec §7 "Decoder miss"/"Invariant violation").
func (t *Table) Rule(i int) *Rule {
	if i < 0 || i >= len(t.Rules) {
		panic("rule: rule index out of range, corrupt table")
	}
	return &t.Rules[i]
}
