package logging

import "time"

// #region transition-entry
// TransitionEntry is a single row in the cem_transitions table. A row is
// written whenever the (decision, status) pair changes.
type TransitionEntry struct {
	SessionID        string
	Cycle            uint64
	ExperimentalMode bool
	Status           int
	Rule             string // rule that fired, "" when held or inactive
	Path             string // "evaluate" | "override" | "standstill"
	InputsJSON       string // frame that produced the transition
	CreatedAt        time.Time
}

// #endregion transition-entry
