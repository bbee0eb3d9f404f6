package refine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugcore/tetrefine/algebra"
	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/r3"
	"github.com/ugcore/tetrefine/refine"
	"github.com/ugcore/tetrefine/tetra/rule"
)

// newReferenceTet builds spec §8's T0: the unit-corner reference
// tetrahedron (0,0,0),(1,0,0),(0,1,0),(0,0,1), as the sole element of
// a fresh single-level Multigrid.
func newReferenceTet(t *testing.T) (*mesh.Multigrid, *mesh.Element) {
	t.Helper()
	mg := mesh.NewMultigrid(nil)
	g := mg.Levels[0]
	mkNode := func(x, y, z float64) *mesh.Node {
		return g.NewNode(&mesh.Vertex{World: r3.Vec{X: x, Y: y, Z: z}})
	}
	n0, n1, n2, n3 := mkNode(0, 0, 0), mkNode(1, 0, 0), mkNode(0, 1, 0), mkNode(0, 0, 1)
	elem := g.NewElement([4]*mesh.Node{n0, n1, n2, n3})
	return mg, elem
}

func testConfig(t *testing.T) *refine.Config {
	t.Helper()
	rules, err := rule.Generate(rule.GenerateOptions{MinRefEdges: 0, MaxRefEdges: 6})
	require.NoError(t, err)
	cfg, err := refine.NewConfig(rules, rule.DefaultPolicyName)
	require.NoError(t, err)
	return cfg
}

func testOverlay() *algebra.Overlay {
	return algebra.NewOverlay(&algebra.Format{MaxParDist: 1e-3})
}

// Scenario 1 (spec §8): mark T0 COPY, refine. Level 1 gets exactly one
// element, corners equal to T0's, REFINE=COPY_REFRULE.
func TestScenarioCopy(t *testing.T) {
	mg, elem := newReferenceTet(t)
	cfg := testConfig(t)
	o := testOverlay()

	require.NoError(t, refine.MarkForRefinement(elem, mesh.MarkDecision{Kind: mesh.MarkCopy}, 0))
	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))

	require.Len(t, mg.Levels, 2)
	finer := mg.Levels[1]
	assert.Equal(t, 1, finer.NElem())
	assert.Equal(t, rule.CopyRefRule, elem.Refine)
	assert.Equal(t, mesh.Yellow, elem.RefineClass)

	son := finer.First()
	require.NotNil(t, son)
	for i, c := range elem.Corners {
		assert.Equal(t, c.Vertex.World, son.Corners[i].Vertex.World)
	}
}

// Scenario 2 (spec §8): mark T0 RED with the rule bisecting edge E0
// alone. Level 1 has two tetrahedra, the mid-node of E0 exists, and
// REFINE is the rule looked up for pattern 0b000001.
func TestScenarioBisectOneEdge(t *testing.T) {
	mg, elem := newReferenceTet(t)
	cfg := testConfig(t)
	o := testOverlay()

	ruleIdx := cfg.Rules.Lookup(0b000001, 0)
	require.GreaterOrEqual(t, ruleIdx, 0)

	require.NoError(t, refine.MarkForRefinement(elem, mesh.MarkDecision{Kind: mesh.MarkRed, RuleID: ruleIdx}, 0))
	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))

	require.Len(t, mg.Levels, 2)
	finer := mg.Levels[1]
	assert.Equal(t, 2, finer.NElem())
	assert.Equal(t, ruleIdx, elem.Refine)
	assert.Equal(t, mesh.Red, elem.RefineClass)
	assert.Equal(t, 2, elem.NSons)

	edge, ok := mg.Levels[0].EdgeBetween(elem.Corners[0], elem.Corners[1])
	require.True(t, ok)
	require.NotNil(t, edge.Mid)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0, Z: 0}, edge.Mid.Vertex.World)
}

// Scenario 3 (spec §8): mark T0 RED for full refinement (pattern
// 0b111111). Level 1 has 8 sons, and REFINE resolves to one of the
// three concrete variants (never the zero-son FULL_REFRULE marker).
func TestScenarioFullRefinement(t *testing.T) {
	mg, elem := newReferenceTet(t)
	cfg := testConfig(t)
	o := testOverlay()

	require.NoError(t, refine.MarkForRefinement(elem, mesh.MarkDecision{Kind: mesh.MarkRed, RuleID: cfg.Rules.FullRefRule}, 0))
	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))

	require.Len(t, mg.Levels, 2)
	finer := mg.Levels[1]
	assert.Equal(t, 8, finer.NElem())
	assert.Equal(t, 8, elem.NSons)
	assert.NotEqual(t, cfg.Rules.FullRefRule, elem.Refine, "REFINE must resolve to a concrete variant, not the zero-son marker")
	assert.Contains(t, []int{cfg.Rules.FullRefRule0_5, cfg.Rules.FullRefRule1_3, cfg.Rules.FullRefRule2_4}, elem.Refine)

	// For the unit reference tet, the three candidate diagonals all
	// have equal length (spec §8 scenario 3); shortestie's tie-break
	// (first tested wins) picks the E0-E5 variant.
	assert.Equal(t, cfg.Rules.FullRefRule0_5, elem.Refine)
}

// Scenario 5 (spec §8): after full refinement, marking every son
// UNREFINE and refining again restores T0 with REFINE=NOREFRULE and
// disposes the intermediate level.
func TestScenarioCoarsen(t *testing.T) {
	mg, elem := newReferenceTet(t)
	cfg := testConfig(t)
	o := testOverlay()

	require.NoError(t, refine.MarkForRefinement(elem, mesh.MarkDecision{Kind: mesh.MarkRed, RuleID: cfg.Rules.FullRefRule}, 0))
	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))
	require.Len(t, mg.Levels, 2)

	mg.Levels[1].Elements(func(son *mesh.Element) {
		require.NoError(t, refine.MarkForRefinement(son, mesh.MarkDecision{Kind: mesh.MarkUnrefine}, 0))
	})
	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))

	require.Len(t, mg.Levels, 1)
	assert.Equal(t, rule.NoRefRule, elem.Refine)
	assert.Nil(t, elem.Son)
	assert.Equal(t, 0, elem.NSons)
}

// Applying RefineMultigrid with no marks set is a no-op: no new level
// is created (spec §8 "Round-trip and idempotence").
func TestNoMarksIsNoOp(t *testing.T) {
	mg, _ := newReferenceTet(t)
	cfg := testConfig(t)
	o := testOverlay()

	require.NoError(t, refine.RefineMultigrid(mg, refine.TrulyLocal, o, cfg))
	assert.Len(t, mg.Levels, 1)
}

// is_allowed_to_refine is false exactly when REFINECLASS=RED (spec §6).
func TestIsAllowedToRefine(t *testing.T) {
	_, elem := newReferenceTet(t)
	assert.True(t, refine.IsAllowedToRefine(elem))
	elem.RefineClass = mesh.Red
	assert.False(t, refine.IsAllowedToRefine(elem))
}

// mark_for_refinement on a RED element returns an error and leaves
// state unchanged (spec §7 "Argument error").
func TestMarkForRefinementRejectsRedElement(t *testing.T) {
	_, elem := newReferenceTet(t)
	elem.RefineClass = mesh.Red
	err := refine.MarkForRefinement(elem, mesh.MarkDecision{Kind: mesh.MarkCopy}, 0)
	assert.Error(t, err)
}
