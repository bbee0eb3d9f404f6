package rule

import (
	"math"

	"github.com/ugcore/tetrefine/r3"
)

// diagPairs gives, for each of the three full-refinement variants, the
// two opposite edges whose midpoints form that variant's interior
// octahedron diagonal -- (E0,E5), (E1,E3), (E2,E4) (spec §4.2 k=6,
// §8 scenario 3).
var diagPairs = [3][2]int{{0, 5}, {1, 3}, {2, 4}}

// BestRulePolicy chooses among the three FULL_REFRULE variants given
// the father element's corner world coordinates, returning the index
// into diagPairs (and so into Table.FullRefRule0_5/1_3/2_4) of the
// winning variant (spec §4.5.1).
type BestRulePolicy func(corners [4]r3.Vec) int

// Policies is the registry of the eight built-in named policies (spec
// §4.5.1), keyed by name for startup selection via config.
var Policies = map[string]BestRulePolicy{
	"shortestie": shortestIE,
	"minangle":   minAngle,
	"bestm":      bestM,
	"maxper":     maxPerpendicular,
	"mra":        maxMinRightAngle,
	"maxarea":    maxArea,
	"minentry":   minEntry,
	"y-align":    yAlign,
}

// DefaultPolicyName is the engine's default best-rule policy (spec
// §4.5.1: "default is shortestie").
const DefaultPolicyName = "shortestie"

func midOf(corners [4]r3.Vec, e int) r3.Vec {
	c0, c1 := cornerOfEdge(e)
	return corners[c0].Mid(corners[c1])
}

// cornerOfEdge returns the two corners of edge e; the pairing matches
// tetra.CornerOfEdge.
func cornerOfEdge(e int) (int, int) {
	pairs := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 3}, {1, 2}, {2, 3}}
	return pairs[e][0], pairs[e][1]
}

// shortestIE minimizes the length of the chosen interior diagonal.
func shortestIE(corners [4]r3.Vec) int {
	best, bestLen := 0, math.Inf(1)
	for i, pr := range diagPairs {
		d := midOf(corners, pr[0]).Distance(midOf(corners, pr[1]))
		if d < bestLen {
			bestLen, best = d, i
		}
	}
	return best
}

// sonsFor returns the 8 world-space tetrahedra (four corners each)
// that variant i's diagonal produces, for the angle/area policies
// that need to examine every son.
func sonsFor(corners [4]r3.Vec, variant int) [8][4]r3.Vec {
	mid := func(e int) r3.Vec { return midOf(corners, e) }
	m := [6]r3.Vec{mid(0), mid(1), mid(2), mid(3), mid(4), mid(5)}
	var out [8][4]r3.Vec
	out[0] = [4]r3.Vec{corners[0], m[0], m[1], m[2]}
	out[1] = [4]r3.Vec{corners[1], m[0], m[3], m[4]}
	out[2] = [4]r3.Vec{corners[2], m[1], m[3], m[5]}
	out[3] = [4]r3.Vec{corners[3], m[2], m[4], m[5]}
	a, b := diagPairs[variant][0], diagPairs[variant][1]
	var ring []int
	for e := 0; e < 6; e++ {
		if e != a && e != b {
			ring = append(ring, e)
		}
	}
	ring = orderRing(ring, a, b)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		out[4+i] = [4]r3.Vec{m[a], m[b], m[ring[i]], m[ring[j]]}
	}
	return out
}

func orderRing(ring []int, a, b int) []int {
	shares := func(e1, e2 int) bool {
		c1a, c1b := cornerOfEdge(e1)
		c2a, c2b := cornerOfEdge(e2)
		for _, x := range [2]int{c1a, c1b} {
			for _, y := range [2]int{c2a, c2b} {
				if x == y {
					return true
				}
			}
		}
		return false
	}
	out := []int{ring[0]}
	rest := append([]int(nil), ring[1:]...)
	for len(rest) > 0 {
		placed := false
		for i, r := range rest {
			if shares(out[len(out)-1], r) {
				out = append(out, r)
				rest = append(rest[:i], rest[i+1:]...)
				placed = true
				break
			}
		}
		if !placed {
			out = append(out, rest[0])
			rest = rest[1:]
		}
	}
	return out
}

func triangleAngles(a, b, c r3.Vec) [3]float64 {
	ab, ac, bc := b.Sub(a), c.Sub(a), c.Sub(b)
	angleAt := func(u, v r3.Vec) float64 {
		cosT := u.Dot(v) / (u.Norm() * v.Norm())
		if cosT > 1 {
			cosT = 1
		} else if cosT < -1 {
			cosT = -1
		}
		return math.Acos(cosT)
	}
	return [3]float64{
		angleAt(ab, ac),
		angleAt(ab.Scale(-1), bc),
		angleAt(ac.Scale(-1), bc.Scale(-1)),
	}
}

func faceAngles(corners [4]r3.Vec) []float64 {
	faces := [4][3]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	var out []float64
	for _, f := range faces {
		angs := triangleAngles(corners[f[0]], corners[f[1]], corners[f[2]])
		out = append(out, angs[:]...)
	}
	return out
}

// minAngle minimizes the maximum side angle across all eight sons.
func minAngle(corners [4]r3.Vec) int {
	best, bestMax := 0, math.Inf(1)
	for v := 0; v < 3; v++ {
		sons := sonsFor(corners, v)
		maxA := 0.0
		for _, s := range sons {
			for _, a := range faceAngles(s) {
				if a > maxA {
					maxA = a
				}
			}
		}
		if maxA < bestMax {
			bestMax, best = maxA, v
		}
	}
	return best
}

// bestM minimizes the sum of edge-length*cot(angle) over obtuse
// angles (M-matrix friendliness for the Laplacian).
func bestM(corners [4]r3.Vec) int {
	best, bestSum := 0, math.Inf(1)
	for v := 0; v < 3; v++ {
		sons := sonsFor(corners, v)
		sum := 0.0
		for _, s := range sons {
			sum += obtuseCotSum(s)
		}
		if sum < bestSum {
			bestSum, best = sum, v
		}
	}
	return best
}

func obtuseCotSum(t [4]r3.Vec) float64 {
	faces := [4][3]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	sum := 0.0
	for _, f := range faces {
		a, b, c := t[f[0]], t[f[1]], t[f[2]]
		angs := triangleAngles(a, b, c)
		edges := [3]float64{b.Distance(c), a.Distance(c), a.Distance(b)}
		for i, ang := range angs {
			if ang > math.Pi/2 {
				sum += edges[i] / math.Tan(ang)
			}
		}
	}
	return sum
}

// maxPerpendicular maximizes perpendicularity of the interior edge to
// its opposite edge, i.e. minimizes |cos(angle between them)|.
func maxPerpendicular(corners [4]r3.Vec) int {
	best, bestScore := 0, math.Inf(1)
	for v, pr := range diagPairs {
		c0a, c0b := cornerOfEdge(pr[0])
		c1a, c1b := cornerOfEdge(pr[1])
		d0 := corners[c0b].Sub(corners[c0a])
		d1 := corners[c1b].Sub(corners[c1a])
		score := math.Abs(d0.Dot(d1) / (d0.Norm() * d1.Norm()))
		if score < bestScore {
			bestScore, best = score, v
		}
	}
	return best
}

// maxMinRightAngle maximizes the minimum right angle among sons, i.e.
// maximizes the minimum over all sons' faces of |angle - pi/2|'s
// complement (how close to a right angle the closest angle gets).
func maxMinRightAngle(corners [4]r3.Vec) int {
	best, bestScore := 0, math.Inf(-1)
	for v := 0; v < 3; v++ {
		sons := sonsFor(corners, v)
		minClose := math.Inf(1)
		for _, s := range sons {
			for _, a := range faceAngles(s) {
				close := math.Abs(a - math.Pi/2)
				if close < minClose {
					minClose = close
				}
			}
		}
		score := -minClose // larger score == closer to a right angle
		if score > bestScore {
			bestScore, best = score, v
		}
	}
	return best
}

// maxArea maximizes |opposite_edge1 x opposite_edge2|.
func maxArea(corners [4]r3.Vec) int {
	best, bestArea := 0, math.Inf(-1)
	for v, pr := range diagPairs {
		c0a, c0b := cornerOfEdge(pr[0])
		c1a, c1b := cornerOfEdge(pr[1])
		d0 := corners[c0b].Sub(corners[c0a])
		d1 := corners[c1b].Sub(corners[c1a])
		area := d0.Cross(d1).Norm()
		if area > bestArea {
			bestArea, best = area, v
		}
	}
	return best
}

// minEntry minimizes the max |length*cot(angle)| (off-diagonal bound).
func minEntry(corners [4]r3.Vec) int {
	best, bestMax := 0, math.Inf(1)
	for v := 0; v < 3; v++ {
		sons := sonsFor(corners, v)
		maxEntry := 0.0
		for _, s := range sons {
			faces := [4][3]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
			for _, f := range faces {
				a, b, c := s[f[0]], s[f[1]], s[f[2]]
				angs := triangleAngles(a, b, c)
				edges := [3]float64{b.Distance(c), a.Distance(c), a.Distance(b)}
				for i, ang := range angs {
					if ang == 0 {
						continue
					}
					ratio := math.Abs(edges[i] / math.Tan(ang))
					if ratio > maxEntry {
						maxEntry = ratio
					}
				}
			}
		}
		if maxEntry < bestMax {
			bestMax, best = maxEntry, v
		}
	}
	return best
}

// yAlign chooses the interior diagonal most aligned with a global
// Y-axis preference.
//
// The switch below deliberately falls through without break on
// several arms. spec.md §9 flags this as a behavior the original
// source carries -- "intentional or not is unclear" -- and says to
// carry it forward rather than silently fix it. It means ties beyond
// the second-best candidate fold into whichever arm they fall through
// into, rather than being independently scored.
func yAlign(corners [4]r3.Vec) int {
	y := r3.Vec{X: 0, Y: 1, Z: 0}
	scores := make([]float64, 3)
	for v, pr := range diagPairs {
		c0a, c0b := cornerOfEdge(pr[0])
		c1a, c1b := cornerOfEdge(pr[1])
		d0 := corners[c0b].Sub(corners[c0a])
		d1 := corners[c1b].Sub(corners[c1a])
		diag := d0.Add(d1)
		scores[v] = math.Abs(diag.Dot(y) / diag.Norm())
	}
	longest := 0
	for i := 1; i < 3; i++ {
		if scores[i] > scores[longest] {
			longest = i
		}
	}
	switch longest {
	case 0:
		fallthrough
	case 1:
		if scores[0] >= scores[2] {
			return 0
		}
		fallthrough
	case 2:
		return 2
	}
	return longest
}
