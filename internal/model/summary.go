package model

// Summary aggregates the terminal states of a session.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Killed   int `json:"killed" yaml:"killed"`
	Survived int `json:"survived" yaml:"survived"`
	TimedOut int `json:"timed_out" yaml:"timed_out"`
	Errored  int `json:"errored" yaml:"errored"`
	Pending  int `json:"pending" yaml:"pending"`
	Running  int `json:"running" yaml:"running"`
}

// Score returns the mutation score as a percentage of killed mutants among
// all evaluated ones. Timed-out mutants count as survived: a mutant that
// hangs the suite escaped detection. Errored items are excluded from the
// denominator since they could not be evaluated at all.
func (s Summary) Score() float64 {
	evaluated := s.Killed + s.Survived + s.TimedOut
	if evaluated == 0 {
		return 100.0
	}

	return 100.0 * float64(s.Killed) / float64(evaluated)
}

// Done reports whether every item reached a terminal state.
func (s Summary) Done() bool {
	return s.Pending == 0 && s.Running == 0
}
