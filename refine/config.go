package refine

import (
	"github.com/ugcore/tetrefine/mesh"
	"github.com/ugcore/tetrefine/tetra/rule"
)

// PolicyFlag selects how RefineMultigrid seeds vector classes after
// refinement (spec §4.6 step 7). Under either value, unmarked siblings
// of a newly-refined element stay leaves; no copies are created for
// them.
type PolicyFlag int

const (
	// TrulyLocal seeds class 3 only on vectors of elements whose
	// MARKCLASS is RED or GREEN.
	TrulyLocal PolicyFlag = iota
	// CopyAll passes copyAll to algebra.PropagateClasses, seeding class 3
	// on every vector once any element seeds; it creates no elements.
	CopyAll
)

// Config bundles the runtime-selected, otherwise-global state the
// core needs: the loaded rule table, the named best-rule policy, and
// resource limits (spec §9 "Rule table as value": "the selected
// best-full-refrule policy ... behind a dedicated config struct
// passed into refine()").
type Config struct {
	Rules    *rule.Table
	Policy   rule.BestRulePolicy
	Reporter mesh.Reporter

	// MaxParDist bounds disagreement between two boundary segments'
	// midpoint projections (spec §4.6.1). NewConfig sets it to 1e-3;
	// algebra.Format.MaxParDist is not read by refine.
	MaxParDist float64

	// MaxConnectionDepth bounds the element-graph neighborhood walked
	// when disposing/rebuilding connections (spec §4.6 steps 3 and 6).
	MaxConnectionDepth int

	// Budget, if non-nil, makes RefineMultigrid run
	// CheckMemoryRequirements against it before committing any
	// mutation (spec §6 check_memory_requirements, §7 capacity
	// errors). Nil skips the preflight entirely.
	Budget *ArenaBudget

	// PreflightOnly makes RefineMultigrid stop right after a
	// successful Budget check, returning nil without touching the
	// grid (spec §6 "a dry-run mode that checks capacity without
	// committing"). Has no effect unless Budget is also set.
	PreflightOnly bool
}

// NewConfig builds a Config from a loaded rule table and a named
// policy, defaulting Reporter to mesh.NopReporter and MaxParDist/
// MaxConnectionDepth to the values spec.md's worked examples assume.
func NewConfig(rules *rule.Table, policyName string) (*Config, error) {
	policy, ok := rule.Policies[policyName]
	if !ok {
		return nil, errf("NewConfig", KindConfig, "unrecognized best-rule policy %q", policyName)
	}
	return &Config{
		Rules:              rules,
		Policy:             policy,
		Reporter:           mesh.NopReporter{},
		MaxParDist:         1e-3,
		MaxConnectionDepth: 2,
	}, nil
}
