package mesh

import (
	"testing"

	"github.com/ugcore/tetrefine/r3"
)

func TestGridNewElementOrder(t *testing.T) {
	g := NewGrid(0)
	v := func(x, y, z float64) *Node { return g.NewNode(&Vertex{World: r3.Vec{X: x, Y: y, Z: z}}) }
	n0, n1, n2, n3 := v(0, 0, 0), v(1, 0, 0), v(0, 1, 0), v(0, 0, 1)

	e1 := g.NewElement([4]*Node{n0, n1, n2, n3})
	e2 := g.NewElement([4]*Node{n1, n2, n3, n0})

	if g.NElem() != 2 {
		t.Fatalf("NElem() = %d, want 2", g.NElem())
	}
	var got []*Element
	g.Elements(func(e *Element) { got = append(got, e) })
	if len(got) != 2 || got[0] != e1 || got[1] != e2 {
		t.Fatalf("Elements() order = %v, want [e1 e2]", got)
	}

	g.RemoveElement(e1)
	if g.NElem() != 1 || g.First() != e2 {
		t.Fatalf("after RemoveElement(e1): NElem=%d First=%v", g.NElem(), g.First())
	}
}

func TestGridEdgeDedup(t *testing.T) {
	g := NewGrid(0)
	a := g.NewNode(&Vertex{})
	b := g.NewNode(&Vertex{})

	e := g.NewEdge(a, b)
	if got, ok := g.EdgeBetween(b, a); !ok || got != e {
		t.Fatalf("EdgeBetween(b, a) = %v, %v, want %v, true", got, ok, e)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("NewEdge on an existing pair did not panic")
		}
	}()
	g.NewEdge(a, b)
}

func TestMultigridAppendAndDrop(t *testing.T) {
	mg := NewMultigrid(nil)
	if len(mg.Levels) != 1 {
		t.Fatalf("len(Levels) = %d, want 1", len(mg.Levels))
	}
	l1 := mg.AppendLevel()
	if mg.Finest() != l1 || l1.Coarser != mg.Levels[0] || mg.Levels[0].Finer != l1 {
		t.Fatal("AppendLevel did not link levels correctly")
	}
	mg.DropFinest()
	if len(mg.Levels) != 1 || mg.Finest().Finer != nil {
		t.Fatal("DropFinest did not unlink the finest level")
	}
}
