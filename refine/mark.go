package refine

import (
	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/tetra/rule"
)

// MarkForRefinement is mark_for_refinement(elem, rule, side) (spec §6).
// side is accepted for interface symmetry with the 2D sibling system
// and is otherwise unused (spec: "side: used in 2D only (ignored here)").
func MarkForRefinement(elem *mesh.Element, decision mesh.MarkDecision, _ int) error {
	if !IsAllowedToRefine(elem) {
		return errf("MarkForRefinement", KindArgument, "element %d already has REFINECLASS=RED", elem.ID)
	}
	switch decision.Kind {
	case mesh.MarkNoRefine:
		elem.Mark = rule.NoRefRule
		elem.MarkClass = mesh.Yellow
		elem.Coarsen = false
	case mesh.MarkCopy:
		elem.Mark = rule.CopyRefRule
		elem.MarkClass = mesh.Yellow
		elem.Coarsen = false
	case mesh.MarkRed:
		elem.Mark = decision.RuleID
		elem.MarkClass = mesh.Red
		elem.Coarsen = false
	case mesh.MarkUnrefine:
		elem.Coarsen = true
	}
	return nil
}

// IsAllowedToRefine is is_allowed_to_refine(elem): false iff
// REFINECLASS=RED (spec §6).
func IsAllowedToRefine(elem *mesh.Element) bool { return elem.RefineClass != mesh.Red }

// EstimateHere is estimate_here(elem): the leaf predicate REFINE ==
// NOREFRULE (spec §6).
func EstimateHere(elem *mesh.Element) bool { return elem.IsLeaf() }

// GetRefinementMark is get_refinement_mark(elem): decodes the current
// MARK into (rule index, side) -- side is always 0 in 3D (spec §6). An
// element whose MARK was never decided (mesh.NoMark) reads the same as
// NOREFRULE: both mean "no refinement pending."
func GetRefinementMark(elem *mesh.Element) (ruleIdx, side int) {
	if elem.Mark == mesh.NoMark {
		return rule.NoRefRule, 0
	}
	return elem.Mark, 0
}

// ArenaBudget caps the vertex/node/edge/element allocation
// check_memory_requirements sums a pending refinement against (spec
// §6, §7 "Capacity exceeded"). A zero field means that dimension is
// unbounded.
type ArenaBudget struct {
	Vertices int
	Nodes    int
	Edges    int
	Elements int
}

// ElementCost is the per-element allocation a single rule application
// would cost the arena: one new element per son (allocateSons creates
// every son, son 0 included, as a new element on the finer level), one new
// node per populated SonAndNode entry, and one new edge per interior
// edge the rule introduces. Vertices are a node's geometric
// counterpart and, for this engine's straight-edge/parametrized-
// boundary midvertex scheme (spec §4.6.1), cost exactly one per new
// node as well.
type ElementCost struct {
	Vertices int
	Nodes    int
	Edges    int
	Elements int
}

// Add accumulates b into c.
func (c *ElementCost) Add(b ElementCost) {
	c.Vertices += b.Vertices
	c.Nodes += b.Nodes
	c.Edges += b.Edges
	c.Elements += b.Elements
}

// Exceeds reports whether c exceeds any dimension budget bounds
// (zero fields are unbounded).
func (c ElementCost) Exceeds(budget ArenaBudget) bool {
	return (budget.Vertices > 0 && c.Vertices > budget.Vertices) ||
		(budget.Nodes > 0 && c.Nodes > budget.Nodes) ||
		(budget.Edges > 0 && c.Edges > budget.Edges) ||
		(budget.Elements > 0 && c.Elements > budget.Elements)
}

// ruleCost computes the ElementCost a single application of r would
// allocate.
func ruleCost(r *rule.Rule) ElementCost {
	nodes := 0
	for _, sn := range r.SonAndNode {
		if !sn.Unset() {
			nodes++
		}
	}
	return ElementCost{Vertices: nodes, Nodes: nodes, Edges: len(r.Edges), Elements: r.NSons}
}

// CheckMemoryRequirements is check_memory_requirements(mg) (spec §6):
// a pre-flight that walks every element whose MARKCLASS differs from
// its current REFINECLASS -- the elements a refinement pass is about
// to actually touch -- sums the vertex/node/edge/element allocation
// each one's marked rule would cost, and compares the grid-wide total
// against budget. It mutates nothing; RefineMultigrid calls it before
// committing any of the allocation it sums (spec §7 "Capacity
// exceeded" is reported before partial work is done, not after).
func CheckMemoryRequirements(mg *mesh.Multigrid, cfg *Config, budget ArenaBudget) error {
	var total ElementCost
	for _, g := range mg.Levels {
		var walkErr error
		g.Elements(func(elem *mesh.Element) {
			if walkErr != nil || elem.MarkClass == elem.RefineClass {
				return
			}
			ruleIdx, _ := GetRefinementMark(elem)
			if ruleIdx == rule.NoRefRule {
				return
			}
			if ruleIdx < 0 || ruleIdx >= len(cfg.Rules.Rules) {
				walkErr = errf("CheckMemoryRequirements", KindDecoderMiss, "element %d carries out-of-range rule index %d", elem.ID, ruleIdx)
				return
			}
			total.Add(ruleCost(cfg.Rules.Rule(ruleIdx)))
		})
		if walkErr != nil {
			return walkErr
		}
	}
	if total.Exceeds(budget) {
		return errf("CheckMemoryRequirements", KindCapacity,
			"pending refinement needs vertices=%d nodes=%d edges=%d elements=%d, budget allows vertices=%d nodes=%d edges=%d elements=%d",
			total.Vertices, total.Nodes, total.Edges, total.Elements,
			budget.Vertices, budget.Nodes, budget.Edges, budget.Elements)
	}
	return nil
}
