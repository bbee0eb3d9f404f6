package algebra

// Matrix is an oriented half-edge of the vector graph (spec §3
// "Matrix"): the diagonal case (From == To) is MDIAG; non-diagonal
// matrices come in pairs sharing a Connection. Down/Up are the MDOWN/
// MUP orientation bits a dependency function sets for streamline
// reordering (spec §4.7.1).
type Matrix struct {
	ID      int64
	From    *Vector
	To      *Vector
	Diag    bool
	Extra   bool // CEXTRA: fill-in connection not required by the stencil
	Payload []byte
	Down    bool // MDOWN
	Up      bool // MUP

	conn *Connection
	next *Matrix // next in From's vector list
}

// Partner returns the other half of a non-diagonal pair, or nil for a
// diagonal matrix.
func (m *Matrix) Partner() *Matrix {
	if m.conn == nil {
		return nil
	}
	if m.conn.AtoB == m {
		return m.conn.BtoA
	}
	return m.conn.AtoB
}

// Connection returns the Connection m belongs to.
func (m *Matrix) Connection() *Connection { return m.conn }
