package mesh

import "github.com/ugcore/tetrefine/tetra/rule"

// Sons returns get_sons(elem): son 0 directly, and every other son
// reached by walking r.Sons[i].Path across father.Son's actual inner
// neighbor faces (spec §6 "get_sons"; spec §9 "Paths to sons").
// Sons panics if the grid's neighbor wiring disagrees with the rule's
// path -- that indicates a corrupt rule table or a wiring bug in the
// executor, not a user error.
func Sons(father *Element, r *rule.Rule) []*Element {
	if r.NSons == 0 {
		return nil
	}
	sons := make([]*Element, r.NSons)
	sons[0] = father.Son
	for i := 1; i < r.NSons; i++ {
		p := r.Sons[i].Path
		cur := father.Son
		for s := 0; s < p.Depth(); s++ {
			face := p.Step(s)
			if cur == nil {
				panic("mesh: path walk ran off the son chain")
			}
			cur = cur.Neighbor[face]
		}
		if cur == nil {
			panic("mesh: path walk landed on a nil neighbor")
		}
		sons[i] = cur
	}
	return sons
}
