package mesh

// Reporter is the UserWrite-style collaborator spec §7 requires: "the
// core never prints to user IO directly; it reports through a
// UserWrite-style collaborator."
type Reporter interface {
	Warnf(format string, args ...any)
	Errf(format string, args ...any)
}

// NopReporter discards every message. Useful in tests.
type NopReporter struct{}

func (NopReporter) Warnf(string, ...any) {}
func (NopReporter) Errf(string, ...any)  {}
