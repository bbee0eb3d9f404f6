package algebra

import "github.com/ugcore/tetrefine/mesh"

// PropagateClasses implements spec §4.6 step 7 / §4.7 "Class
// propagation": reset every vector's next-class, seed class 3 on
// every vector touching an element whose MARK calls for a refinement
// (RED or GREEN), then relax 3->2 over one matrix hop and 2->1 over a
// second. copyAll mirrors the executor's CopyAll policy flag: under
// it, every vector seeds class 3 as soon as any element anywhere
// seeds (spec: "Under COPY_ALL, every element seeds if any seeds at
// all").
func PropagateClasses(o *Overlay, g *mesh.Grid, copyAll bool) {
	o.Vectors(func(v *Vector) { v.NextClass = 0 })

	anySeed := false
	g.Elements(func(elem *mesh.Element) {
		if elem.MarkClass == mesh.Yellow {
			return
		}
		anySeed = true
		for _, v := range VectorsOfElement(g, elem) {
			v.NextClass = 3
		}
	})
	if copyAll && anySeed {
		o.Vectors(func(v *Vector) { v.NextClass = 3 })
	}

	relax(o, 3, 2)
	relax(o, 2, 1)

	o.Vectors(func(v *Vector) { v.Class = v.NextClass })
}

// relax gives every vector one matrix-hop from a from-class vector a
// to-class next-class, unless it already carries a higher one.
func relax(o *Overlay, from, to int) {
	var seeds []*Vector
	o.Vectors(func(v *Vector) {
		if v.NextClass == from {
			seeds = append(seeds, v)
		}
	})
	for _, v := range seeds {
		v.Matrices(func(m *Matrix) {
			if m.Diag {
				return
			}
			if m.To.NextClass < to {
				m.To.NextClass = to
			}
		})
	}
}
