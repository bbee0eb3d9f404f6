package mesh

// Node owns a Vertex and links to its father node on the coarser
// level and its son node on the finer level (spec §3 "Node"; spec's
// "Invariants": "a node that exists on level L has at most one son
// node on level L+1").
type Node struct {
	ID     int64
	Vertex *Vertex
	Father *Node
	Son    *Node

	refs int // number of son elements using this node as a corner

	// Vec is the algebraic overlay's back-pointer slot for a NODE
	// vector attached to this node (spec §3 "Vector": "object back-
	// pointer"). Left untyped so mesh has no dependency on algebra;
	// algebra type-asserts it to *algebra.Vector.
	Vec interface{}
}

// Ref increments the reference count used by refine.Update to
// decide whether a corner or mid node can be disposed (spec §4.4
// "deletes ... only if their only links are to father-edge endpoints").
func (n *Node) Ref() { n.refs++ }

// Unref decrements the reference count, returning the count after
// decrementing.
func (n *Node) Unref() int {
	n.refs--
	return n.refs
}

// Refs reports the current reference count.
func (n *Node) Refs() int { return n.refs }
