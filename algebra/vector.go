package algebra

// Vector is the algebraic overlay's per-entity payload slot (spec §3
// "Vector"): attached to a node, edge, side, or element, carrying a
// type, a class/next-class pair, a "new" flag, skip bits, a back-
// pointer to the owning mesh entity, and the head of its connections
// list.
type Vector struct {
	ID        int64
	Type      VecType
	Owner     interface{} // *mesh.Node / *mesh.Edge / *mesh.ElementSide / *mesh.Element
	Payload   []byte
	Class     int // 0..3
	NextClass int
	New       bool
	Skip      uint8
	BuildCon  bool // VBUILDCON

	head *Matrix // first connection in this vector's list (diagonal, if any, always first)

	listNext, listPrev *Vector // threading into Overlay's doubly-linked vector list
}

// Matrices calls f for every Matrix in v's connection list, head
// (diagonal, if present) first.
func (v *Vector) Matrices(f func(*Matrix)) {
	for m := v.head; m != nil; m = m.next {
		f(m)
	}
}

// Diagonal returns v's MDIAG self-connection matrix, or nil if v has
// none yet.
func (v *Vector) Diagonal() *Matrix {
	if v.head != nil && v.head.Diag {
		return v.head
	}
	return nil
}

// HasConnections reports whether v carries any connection at all
// (spec §4.7 "dispose_vector ... Vectors must have no connections when
// disposed").
func (v *Vector) HasConnections() bool { return v.head != nil }

// insertMatrix threads m into v's list. Diagonal matrices always sit
// at the head; non-diagonal connections go in second position (spec
// §4.7 "create_connection": "inserts diagonal at list-head ...
// non-diagonal pair at second position").
func (v *Vector) insertMatrix(m *Matrix) {
	if m.Diag {
		m.next = v.head
		v.head = m
		return
	}
	if v.head == nil || v.head.Diag {
		m.next = nil
		if v.head != nil {
			m.next = v.head.next
			v.head.next = m
		} else {
			v.head = m
		}
		return
	}
	m.next = v.head.next
	v.head.next = m
}

// removeMatrix unthreads m from v's list.
func (v *Vector) removeMatrix(m *Matrix) {
	if v.head == m {
		v.head = m.next
		m.next = nil
		return
	}
	for cur := v.head; cur != nil; cur = cur.next {
		if cur.next == m {
			cur.next = m.next
			m.next = nil
			return
		}
	}
}
