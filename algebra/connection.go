package algebra

// Connection owns one Matrix (the diagonal case, From==To) or two
// (A's half pointing to B, B's half pointing to A) sharing a single
// logical link; Extra marks it as fill-in (e.g. ILU) rather than
// stencil-required (spec §3 "Connection").
type Connection struct {
	A, B *Vector
	AtoB *Matrix
	BtoA *Matrix // nil for a diagonal connection
	Extra bool
}

// Diagonal reports whether this is a self-connection (A == B).
func (c *Connection) Diagonal() bool { return c.BtoA == nil }
