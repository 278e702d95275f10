// internal/game/state.go
//
// Mutable session state. Only the Game touches it, and after a game starts
// only commands (and the terminal guess/abandon transitions) change it.

package game

import (
	"github.com/robalobadob/turing/internal/code"
	"github.com/robalobadob/turing/internal/problem"
)

// MaxValidatorsPerRound bounds validator uses for one candidate.
const MaxValidatorsPerRound = 3

// Outcome is how the last session ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWon       Outcome = "won"
	OutcomeLost      Outcome = "lost"
	OutcomeAbandoned Outcome = "abandoned"
)

// Slot is the tri-state result of one validator in one round.
type Slot int8

const (
	SlotUnset Slot = iota
	SlotPass
	SlotFail
)

func slotOf(ok bool) Slot {
	if ok {
		return SlotPass
	}
	return SlotFail
}

func (s Slot) String() string {
	switch s {
	case SlotPass:
		return "pass"
	case SlotFail:
		return "fail"
	}
	return "unset"
}

// MarshalJSON renders unset as null and the rest as booleans.
func (s Slot) MarshalJSON() ([]byte, error) {
	switch s {
	case SlotPass:
		return []byte("true"), nil
	case SlotFail:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

// State is the full session state.
type State struct {
	Problem        *problem.Problem
	ProblemIndex   int
	Candidate      code.Code // zero value: none entered
	ValidatorsUsed int
	Round          int
	Score          int
	Active         bool
	Outcome        Outcome
	// Results holds one slot per assigned validator (problem order), keyed
	// by round. A round has an entry only once a validator was used in it.
	Results map[int][]Slot
}

func idleState() State {
	return State{ProblemIndex: -1, Results: map[int][]Slot{}}
}

// clone deep-copies the results grid; the problem is shared (immutable).
func (s State) clone() State {
	out := s
	out.Results = make(map[int][]Slot, len(s.Results))
	for round, row := range s.Results {
		out.Results[round] = append([]Slot(nil), row...)
	}
	return out
}

// HasCandidate reports whether a code was entered this round.
func (s State) HasCandidate() bool { return !s.Candidate.IsZero() }
