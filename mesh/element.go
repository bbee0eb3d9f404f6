package mesh

import "github.com/ugcore/tetrefine/tetra/rule"

// ElementSide carries a boundary-segment parametrization that is
// copied to sons when a face coincides with a father's boundary side
// (spec §3 "Element side"). Nil on interior faces.
type ElementSide struct {
	Segment int
	Corners [3]BoundaryParam // per-corner boundary parameters, in face corner order

	// Vec is the algebraic overlay's back-pointer slot for a SIDE
	// vector attached to this boundary side (see Node.Vec).
	Vec interface{}
}

// Element is a TETRAHEDRON: four corner Nodes, four neighbor Element
// pointers (nil on an un-refined boundary face, i.e. no neighbor at
// all, as opposed to Sides[f] != nil meaning *this* face is a boundary
// face), and the refinement state spec §3 "Element" describes.
type Element struct {
	ID int64

	Corners  [4]*Node
	Neighbor [4]*Element
	Sides    [4]*ElementSide

	Refine      int
	Mark        int
	RefineClass ElementClass
	MarkClass   ElementClass
	Coarsen     bool

	Father *Element
	Son    *Element // son 0; other sons reached via rule.Path
	NSons  int
	Center *Node // node 10, only set when the current rule uses it

	used bool // Closure Pass A/B scratch flag

	// SidePattern is the closure engine's per-element 4-bit scratch
	// register disambiguating which trisection midpoint a shared
	// face's interior diagonal hits (spec §4.5 Pass B).
	SidePattern uint8

	// BuildCon is EBUILDCON: set whenever this element's connections
	// must be rebuilt by the algebraic overlay (spec §4.6 steps 3, 6).
	BuildCon bool

	// Vec is the algebraic overlay's back-pointer slot for an ELEM
	// vector attached to this element (see Node.Vec).
	Vec interface{}

	prev, next *Element // doubly-linked order within one Grid level
}

// Used reports the Closure Engine's per-pass USED scratch flag (spec
// §4.5 Pass A: "Reset USED flags on elements").
func (e *Element) Used() bool     { return e.used }
func (e *Element) SetUsed(v bool) { e.used = v }

// Next and Prev expose the per-level doubly-linked order spec §5
// requires ("elements are iterated in doubly-linked-list order").
func (e *Element) Next() *Element { return e.next }
func (e *Element) Prev() *Element { return e.prev }

// IsLeaf reports the estimate_here predicate (spec §6): REFINE ==
// NOREFRULE.
func (e *Element) IsLeaf() bool { return e.Refine == rule.NoRefRule && e.Son == nil }

// NoMark is the sentinel Mark value a freshly allocated Element
// carries before MarkForRefinement or a closure pass gives it a real
// decision. It is distinct from rule.NoRefRule (0), which is the
// legitimate decided "stay a leaf" mark -- NoMark lets the closure
// engine and restriction pass (spec §4.5) tell "never touched" apart
// from "explicitly marked not to refine".
const NoMark = -1
