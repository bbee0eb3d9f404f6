package mesh

// Edge is the unordered pair of Nodes spanning a father-tetrahedron
// edge on one grid level (spec §3 "Edge"). Pattern/AddPattern are the
// per-level scratch bits the Closure Engine sets and reads in its
// three passes (spec §4.5).
type Edge struct {
	ID         int64
	N          [2]*Node
	Mid        *Node // nil unless this edge is bisected
	Pattern    bool  // set during Closure Pass A/B
	AddPattern bool  // set during Closure Pass C ("already added")
	Tag        int

	nElem int // NO_OF_ELEM: elements containing both endpoints

	// Vec is the algebraic overlay's back-pointer slot for an EDGE
	// vector attached to this edge (see Node.Vec).
	Vec interface{}
}

// Other returns the endpoint of e that is not n.
func (e *Edge) Other(n *Node) *Node {
	if e.N[0] == n {
		return e.N[1]
	}
	return e.N[0]
}

// Has reports whether n is an endpoint of e.
func (e *Edge) Has(n *Node) bool { return e.N[0] == n || e.N[1] == n }

// NoOfElem is NO_OF_ELEM: the number of elements containing both of
// e's endpoints (spec §3 "Invariants": "edges are disposed exactly
// when this count drops to zero").
func (e *Edge) NoOfElem() int { return e.nElem }

// IncElem increments NO_OF_ELEM.
func (e *Edge) IncElem() { e.nElem++ }

// DecElem decrements NO_OF_ELEM, returning the count after
// decrementing.
func (e *Edge) DecElem() int {
	e.nElem--
	return e.nElem
}

// edgeKey canonicalizes a pair of node IDs for map lookup,
// independent of endpoint order.
func edgeKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}
