// Package refine implements the Element Context (C4), Closure Engine
// (C5) and Refinement Executor (C6): spec.md §4.4-4.6.
package refine

import "fmt"

// Kind classifies a refine error per spec §7's taxonomy.
type Kind int

const (
	// KindConfig: missing/invalid rule file, unrecognized policy name.
	KindConfig Kind = iota
	// KindArgument: mark_for_refinement on a RED element.
	KindArgument
	// KindCapacity: vertex/node/edge/element/side allocation failure.
	KindCapacity
	// KindInvariant: generator-trusted invariant violated at runtime.
	KindInvariant
	// KindGeometric: singular father Jacobian projecting a boundary midvertex.
	KindGeometric
	// KindDecoderMiss: pattern->rule lookup returned -1 during closure.
	KindDecoderMiss
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindArgument:
		return "argument"
	case KindCapacity:
		return "capacity"
	case KindInvariant:
		return "invariant"
	case KindGeometric:
		return "geometric"
	case KindDecoderMiss:
		return "decoder_miss"
	default:
		return "unknown"
	}
}

// Error is the single error type every refine operation returns,
// carrying enough structure for callers to distinguish a FATAL
// (capacity, invariant, geometric, decoder miss) from a recoverable
// argument error (spec §7 "Propagation policy").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("refine: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("refine: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether e represents an unrecoverable error after
// which the multigrid must be discarded (spec §7 "A FATAL leaves the
// multigrid in an undefined state").
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindCapacity, KindInvariant, KindGeometric, KindDecoderMiss:
		return true
	default:
		return false
	}
}

func errf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
