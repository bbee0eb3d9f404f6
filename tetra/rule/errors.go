package rule

// ConfigError reports a bad generator invocation or a rule-file that
// fails validation at load time (spec §7 "Configuration error").
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "rule: " + e.Msg }

// InvariantError reports a generator invariant violation (spec §7
// "Invariant violation"): after generation the table is considered
// trusted, so runtime code never needs to re-check this.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "rule: " + e.Msg }
