package tetra

import "testing"

func TestEdgeWithCorners(t *testing.T) {
	for e, pair := range CornerOfEdge {
		got := EdgeWithCorners(pair[0], pair[1])
		if got != e {
			t.Errorf("EdgeWithCorners(%d,%d) = %d, want %d", pair[0], pair[1], got, e)
		}
		if got := EdgeWithCorners(pair[1], pair[0]); got != e {
			t.Errorf("EdgeWithCorners(%d,%d) = %d, want %d", pair[1], pair[0], got, e)
		}
	}
}

func TestOppositeEdgeIsDisjoint(t *testing.T) {
	for e := 0; e < NEdges; e++ {
		o := OppositeEdgeOfEdge[e]
		a, b := CornerOfEdge[e], CornerOfEdge[o]
		for _, c := range a {
			if c == b[0] || c == b[1] {
				t.Fatalf("edge %d and its opposite %d share corner %d", e, o, c)
			}
		}
		if OppositeEdgeOfEdge[o] != e {
			t.Fatalf("OppositeEdgeOfEdge not involutive at %d", e)
		}
	}
}

func TestCondensedEdgeOfSide(t *testing.T) {
	for s := 0; s < NSides; s++ {
		mask := CondensedEdgeOfSide[s]
		count := 0
		for e := 0; e < NEdges; e++ {
			if mask&(1<<uint(e)) != 0 {
				count++
				c0, c1 := CornerOfEdge[e][0], CornerOfEdge[e][1]
				if c0 == OppositeCornerOfSide[s] || c1 == OppositeCornerOfSide[s] {
					t.Fatalf("edge %d on side %d should not contain the opposite corner", e, s)
				}
			}
		}
		if count != 3 {
			t.Fatalf("side %d has %d edges, want 3", s, count)
		}
	}
}

func TestRotationsArePermutations(t *testing.T) {
	for i, r := range Rotations {
		seen := map[int]bool{}
		for c := 0; c < NCorners; c++ {
			v := r.Apply(c)
			if v < 0 || v >= NCorners || seen[v] {
				t.Fatalf("rotation %d is not a permutation: %v", i, r)
			}
			seen[v] = true
		}
	}
}

func TestComposeIdentity(t *testing.T) {
	id := Rotations[0]
	for _, r := range Rotations {
		got := Compose(id, r)
		if got != r {
			t.Errorf("Compose(id, r) = %v, want %v", got, r)
		}
		got = Compose(r, id)
		if got != r {
			t.Errorf("Compose(r, id) = %v, want %v", got, r)
		}
	}
}

func TestPermuteEdgePatternIdentity(t *testing.T) {
	for p := 0; p < 64; p++ {
		got := PermuteEdgePattern(uint8(p), Rotations[0])
		if got != uint8(p) {
			t.Fatalf("PermuteEdgePattern(%06b, id) = %06b", p, got)
		}
	}
}
