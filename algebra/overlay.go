package algebra

// Overlay owns one multigrid's vector/connection free lists and the
// doubly-linked vector list every Vector threads into (spec §4.7, §5
// "Shared-resource policy": "Heaps are not shared; free-lists per
// vector/connection type are per-multigrid").
type Overlay struct {
	Format *Format

	nextVecID  int64
	nextMatID  int64
	nextConnID int64

	freeVec  [NVecTypes][]*Vector
	freeMat  []*Matrix
	freeConn []*Connection

	head, tail *Vector
	nVec       int
}

// NewOverlay returns an empty Overlay built against f.
func NewOverlay(f *Format) *Overlay { return &Overlay{Format: f} }

// NVectors reports how many live vectors the overlay currently holds.
func (o *Overlay) NVectors() int { return o.nVec }

// Vectors calls fn for every live vector, in list order.
func (o *Overlay) Vectors(fn func(*Vector)) {
	for v := o.head; v != nil; v = v.listNext {
		fn(v)
	}
}

// CreateVector allocates a Vector of the given kind attached to owner,
// reusing a free-listed instance when available (spec §4.7
// "create_vector": "allocates from a per-type free list (or heap),
// zeros payload, threads into the grid's doubly-linked vector list,
// initializes class=3, next-class=0, build-connection flag=1, new=1").
func (o *Overlay) CreateVector(kind VecType, owner interface{}) *Vector {
	var v *Vector
	if n := len(o.freeVec[kind]); n > 0 {
		v = o.freeVec[kind][n-1]
		o.freeVec[kind] = o.freeVec[kind][:n-1]
		*v = Vector{ID: v.ID}
	} else {
		o.nextVecID++
		v = &Vector{ID: o.nextVecID}
	}
	v.Type = kind
	v.Owner = owner
	v.Payload = make([]byte, o.Format.VecSize[kind])
	v.Class = 3
	v.NextClass = 0
	v.BuildCon = true
	v.New = true

	o.appendVector(v)
	return v
}

func (o *Overlay) appendVector(v *Vector) {
	v.listPrev, v.listNext = o.tail, nil
	if o.tail != nil {
		o.tail.listNext = v
	} else {
		o.head = v
	}
	o.tail = v
	o.nVec++
}

func (o *Overlay) unlinkVector(v *Vector) {
	if v.listPrev != nil {
		v.listPrev.listNext = v.listNext
	} else {
		o.head = v.listNext
	}
	if v.listNext != nil {
		v.listNext.listPrev = v.listPrev
	} else {
		o.tail = v.listPrev
	}
	v.listPrev, v.listNext = nil, nil
	o.nVec--
}

// DisposeVector returns v to its type's free list (spec §4.7
// "dispose_vector ...: symmetric cleanup from both endpoints' lists;
// return objects to the type-indexed free list. Vectors must have no
// connections when disposed"). It panics if v still carries any
// connection -- a caller that reaches this with a live connection has
// a dispose-ordering bug, not a recoverable error (spec §3
// "Lifecycles": "connections ... disposed before son elements are
// freed").
func (o *Overlay) DisposeVector(v *Vector) {
	if v.HasConnections() {
		panic("algebra: dispose_vector called with a non-empty connection list")
	}
	o.unlinkVector(v)
	o.freeVec[v.Type] = append(o.freeVec[v.Type], v)
}

func (o *Overlay) newMatrix() *Matrix {
	if n := len(o.freeMat); n > 0 {
		m := o.freeMat[n-1]
		o.freeMat = o.freeMat[:n-1]
		id := m.ID
		*m = Matrix{ID: id}
		return m
	}
	o.nextMatID++
	return &Matrix{ID: o.nextMatID}
}

func (o *Overlay) newConnection() *Connection {
	if n := len(o.freeConn); n > 0 {
		c := o.freeConn[n-1]
		o.freeConn = o.freeConn[:n-1]
		*c = Connection{}
		return c
	}
	return &Connection{}
}

// findMatrix returns the Matrix on from's list pointing at to, if any.
func findMatrix(from, to *Vector) *Matrix {
	for m := from.head; m != nil; m = m.next {
		if m.To == to {
			return m
		}
	}
	return nil
}

// CreateConnection is create_connection(grid, from, to): idempotent,
// symmetric; a diagonal connection (from==to) allocates a single
// matrix, a non-diagonal pair allocates two with mutual adjacency
// (spec §4.7 "create_connection").
func (o *Overlay) CreateConnection(from, to *Vector) *Connection {
	return o.createConnection(from, to, false)
}

// CreateExtraConnection is create_extra_connection: identical but the
// resulting Connection is marked CEXTRA (spec §4.7).
func (o *Overlay) CreateExtraConnection(from, to *Vector) *Connection {
	return o.createConnection(from, to, true)
}

func (o *Overlay) createConnection(from, to *Vector, extra bool) *Connection {
	if existing := findMatrix(from, to); existing != nil {
		return existing.conn
	}

	if from == to {
		m := o.newMatrix()
		m.From, m.To, m.Diag = from, to, true
		o.nextConnID++
		c := o.newConnection()
		c.A, c.B, c.AtoB, c.Extra = from, from, m, extra
		m.conn = c
		from.insertMatrix(m)
		return c
	}

	ab := o.newMatrix()
	ab.From, ab.To = from, to
	ba := o.newMatrix()
	ba.From, ba.To = to, from

	o.nextConnID++
	c := o.newConnection()
	c.A, c.B, c.AtoB, c.BtoA, c.Extra = from, to, ab, ba, extra
	ab.conn, ba.conn = c, c

	from.insertMatrix(ab)
	to.insertMatrix(ba)
	return c
}

// DisposeConnection removes c's matrices from both endpoints' lists
// and returns them to the free lists (spec §4.7 "dispose_connection").
func (o *Overlay) DisposeConnection(c *Connection) {
	c.A.removeMatrix(c.AtoB)
	o.freeMat = append(o.freeMat, c.AtoB)
	if !c.Diagonal() {
		c.B.removeMatrix(c.BtoA)
		o.freeMat = append(o.freeMat, c.BtoA)
	}
	o.freeConn = append(o.freeConn, c)
}

// DisposeDoubledSideVector merges two side vectors that turn out to
// describe the same shared face, reassigning one element's side
// pointer to the other's vector and disposing the redundant one (spec
// §4.7 "dispose_doubled_side_vector": "invariant: one of the two
// vectors has an empty connection list at merge time"). reassign is
// called with (keep, drop) once the merge target is decided, so the
// caller can repoint its mesh.ElementSide.Vec.
func (o *Overlay) DisposeDoubledSideVector(a, b *Vector, reassign func(keep, drop *Vector)) {
	keep, drop := a, b
	if keep.HasConnections() && drop.HasConnections() {
		panic("algebra: dispose_doubled_side_vector: neither side vector has an empty connection list")
	}
	if drop.HasConnections() {
		keep, drop = drop, keep
	}
	reassign(keep, drop)
	o.DisposeVector(drop)
}
