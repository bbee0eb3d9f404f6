package rule

// computeFollowRules fills each rule's FollowRule table: for every
// 6-bit pattern p that is a superset of the rule's own pattern, the
// index of the smallest-NSons rule whose pattern is exactly p and
// whose interior-edge set is a superset of this rule's (spec §4.5
// "Restriction to coarser level", supplemented per SPEC_FULL.md §4
// from original_source GenerateRules.c's FollowRule).
func computeFollowRules(t *Table) {
	for ri := range t.Rules {
		r := &t.Rules[ri]
		if r.NSons == 0 {
			continue // marker/no-refine rows never have a follow-up
		}
		for p := 0; p < 64; p++ {
			if uint8(p)&r.Pattern != r.Pattern {
				continue // not a superset of this rule's pattern
			}
			if uint8(p) == r.Pattern {
				r.FollowRule[p] = int16(ri)
				continue
			}
			best := -1
			for ci, cand := range t.Rules {
				if cand.NSons == 0 || cand.Pattern != uint8(p) {
					continue
				}
				if !edgeSetRefines(r.Edges, cand.Edges) {
					continue
				}
				if best < 0 || cand.NSons < t.Rules[best].NSons {
					best = ci
				}
			}
			if best >= 0 {
				r.FollowRule[p] = int16(best)
			}
		}
	}
}

// edgeSetRefines reports whether every edge in base also appears in
// candidate, i.e. candidate's subdivision refines base's.
func edgeSetRefines(base, candidate []Edge) bool {
	for _, e := range base {
		found := false
		for _, c := range candidate {
			if e == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
