package mesh

import "github.com/ugcore/tetrefine/tetra"

// Grid is one level of the multigrid: a doubly-linked list of
// Elements plus the Node/Edge maps that back them, grounded on
// gonum's graph/simple.UndirectedGraph storage shape (int64-keyed
// maps, explicit NewX constructors, ID-collision panics) generalized
// with the element ordering spec §5 requires.
type Grid struct {
	Level int

	head, tail *Element
	nElem      int

	nodes map[int64]*Node
	edges map[[2]int64]*Edge

	nextNodeID int64
	nextEdgeID int64
	nextElemID int64

	Coarser *Grid
	Finer   *Grid
}

// NewGrid returns an empty Grid at the given level.
func NewGrid(level int) *Grid {
	return &Grid{
		Level: level,
		nodes: make(map[int64]*Node),
		edges: make(map[[2]int64]*Edge),
	}
}

// NElem returns the number of elements on this level.
func (g *Grid) NElem() int { return g.nElem }

// First returns the first element in doubly-linked order, or nil if
// the grid is empty.
func (g *Grid) First() *Element { return g.head }

// AddNode inserts n (which must have a pre-assigned Vertex) into the
// grid's node set, assigning it the next ID.
func (g *Grid) AddNode(n *Node) {
	g.nextNodeID++
	n.ID = g.nextNodeID
	g.nodes[n.ID] = n
}

// RemoveNode removes n from the grid's node set.
func (g *Grid) RemoveNode(n *Node) { delete(g.nodes, n.ID) }

// NewNode allocates and inserts a fresh Node wrapping v.
func (g *Grid) NewNode(v *Vertex) *Node {
	n := &Node{Vertex: v}
	g.AddNode(n)
	return n
}

// EdgeBetween returns the Edge between a and b if one exists.
func (g *Grid) EdgeBetween(a, b *Node) (*Edge, bool) {
	e, ok := g.edges[edgeKey(a.ID, b.ID)]
	return e, ok
}

// NewEdge allocates and inserts a fresh Edge between a and b. NewEdge
// panics if the pair already has an edge -- callers must check
// EdgeBetween first (mirrors graph/simple's "adding self edge"/
// "node ID collision" panics for caller misuse of the low-level API).
func (g *Grid) NewEdge(a, b *Node) *Edge {
	key := edgeKey(a.ID, b.ID)
	if _, exists := g.edges[key]; exists {
		panic("mesh: edge already exists between these nodes")
	}
	g.nextEdgeID++
	e := &Edge{ID: g.nextEdgeID, N: [2]*Node{a, b}}
	g.edges[key] = e
	return e
}

// RemoveEdge removes e from the grid's edge set.
func (g *Grid) RemoveEdge(e *Edge) { delete(g.edges, edgeKey(e.N[0].ID, e.N[1].ID)) }

// Edges calls f for every edge in the grid, in unspecified order.
func (g *Grid) Edges(f func(*Edge)) {
	for _, e := range g.edges {
		f(e)
	}
}

// NewElement allocates a fresh Element with the given corners,
// appends it to the tail of the doubly-linked order, and increments
// NO_OF_ELEM on each of its six edges (creating edges on demand).
func (g *Grid) NewElement(corners [4]*Node) *Element {
	g.nextElemID++
	e := &Element{ID: g.nextElemID, Corners: corners, Mark: NoMark}
	g.appendElement(e)
	for i := 0; i < tetra.NEdges; i++ {
		c0, c1 := tetra.CornerOfEdge[i][0], tetra.CornerOfEdge[i][1]
		edge, ok := g.EdgeBetween(corners[c0], corners[c1])
		if !ok {
			edge = g.NewEdge(corners[c0], corners[c1])
		}
		edge.IncElem()
	}
	return e
}

func (g *Grid) appendElement(e *Element) {
	if g.tail == nil {
		g.head, g.tail = e, e
	} else {
		g.tail.next = e
		e.prev = g.tail
		g.tail = e
	}
	g.nElem++
}

// RemoveElement unlinks e from the doubly-linked order. It does not
// touch e's edges/nodes -- callers (the Executor) dispose those
// explicitly per the ordering spec §3 "Lifecycles" requires.
func (g *Grid) RemoveElement(e *Element) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		g.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		g.tail = e.prev
	}
	e.prev, e.next = nil, nil
	g.nElem--
}

// Elements calls f for every element in doubly-linked order (spec §5:
// "elements are iterated in doubly-linked-list order").
func (g *Grid) Elements(f func(*Element)) {
	for e := g.head; e != nil; e = e.next {
		f(e)
	}
}

// Multigrid is the ordered list of Grid levels (spec §3 "Node": links
// form the edge graph across a coarser-to-finer chain of Grids).
type Multigrid struct {
	Levels   []*Grid
	Reporter Reporter
}

// NewMultigrid returns a Multigrid with a single, empty level 0.
func NewMultigrid(reporter Reporter) *Multigrid {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Multigrid{Levels: []*Grid{NewGrid(0)}, Reporter: reporter}
}

// Finest returns the current finest grid level.
func (mg *Multigrid) Finest() *Grid { return mg.Levels[len(mg.Levels)-1] }

// AppendLevel allocates and links a new finest level.
func (mg *Multigrid) AppendLevel() *Grid {
	finer := NewGrid(len(mg.Levels))
	cur := mg.Finest()
	cur.Finer = finer
	finer.Coarser = cur
	mg.Levels = append(mg.Levels, finer)
	return finer
}

// DropFinest removes the current finest level, used when a refine
// cycle creates an empty new level (spec §4.6 step 8).
func (mg *Multigrid) DropFinest() {
	if len(mg.Levels) <= 1 {
		return
	}
	mg.Levels = mg.Levels[:len(mg.Levels)-1]
	mg.Finest().Finer = nil
}
