package mesh

import "strconv"

//go:generate stringer -type=ElementClass

// ElementClass classifies why an element refines (spec §3 "Element":
// "REFINECLASS, MARKCLASS ∈ {YELLOW, GREEN, RED}"; spec §9 "Sum types
// for rule classes and element classes").
type ElementClass int

const (
	// Yellow elements reproduce their father identically (copy) to
	// maintain algebraic class gradients.
	Yellow ElementClass = iota
	// Green elements refine conformingly because a neighbor was
	// marked, without the user having marked them.
	Green
	// Red elements refine because the user marked them or a closure
	// upgrade decided they must.
	Red
)

// String implements fmt.Stringer in the shape golang.org/x/tools/cmd/stringer
// would generate for this type (toolchain not run in this exercise;
// see DESIGN.md).
func (c ElementClass) String() string {
	switch c {
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Red:
		return "Red"
	default:
		return "ElementClass(" + strconv.Itoa(int(c)) + ")"
	}
}

// MarkDecision is the user's (or closure-upgraded) refinement
// decision for an element, built from MARK + COARSEN (spec §9
// "MarkDecision ∈ {NoRefine, Copy, Red(rule_id), Unrefine}").
type MarkDecision struct {
	Kind   MarkKind
	RuleID int // valid only when Kind == MarkRed
}

// MarkKind enumerates the closed set of decisions a mark can encode.
type MarkKind int

const (
	MarkNoRefine MarkKind = iota
	MarkCopy
	MarkRed
	MarkUnrefine
)
