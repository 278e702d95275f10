// internal/game/command.go
//
// Commands wrap every undoable mutation. Each command records, on execute,
// only the state fields it is about to change, so undo restores them exactly
// and redo lands on the same state execute produced:
//
//	undo(execute(S)) == S
//	redo(undo(execute(S))) == execute(S)
//
// Commands never fail. The Game checks every precondition before building
// one, which keeps a failed operation from touching state.

package game

import "github.com/robalobadob/turing/internal/code"

// CommandKind names a command variant.
type CommandKind string

const (
	CommandSubmitCandidate CommandKind = "submit_candidate"
	CommandUseValidator    CommandKind = "use_validator"
	CommandAdvanceRound    CommandKind = "advance_round"
)

// Command is one reversible mutation of State.
type Command interface {
	Kind() CommandKind
	execute(s *State)
	undo(s *State)
	redo(s *State)
}

// --- submit candidate ------------------------------------------------------

type submitCandidate struct {
	code code.Code

	prevCandidate code.Code
	prevUsed      int
}

func (c *submitCandidate) Kind() CommandKind { return CommandSubmitCandidate }

func (c *submitCandidate) execute(s *State) {
	c.prevCandidate = s.Candidate
	c.prevUsed = s.ValidatorsUsed
	c.redo(s)
}

func (c *submitCandidate) undo(s *State) {
	s.Candidate = c.prevCandidate
	s.ValidatorsUsed = c.prevUsed
}

func (c *submitCandidate) redo(s *State) {
	s.Candidate = c.code
	s.ValidatorsUsed = 0
}

// --- use validator ---------------------------------------------------------

type useValidator struct {
	id     int
	slot   int  // index into the problem's validator list
	result bool // evaluated by the Game before the command is built

	round     int
	prevUsed  int
	prevScore int
	prevSlot  Slot
	hadRow    bool
	rowLen    int
}

func (c *useValidator) Kind() CommandKind { return CommandUseValidator }

func (c *useValidator) execute(s *State) {
	c.round = s.Round
	c.prevUsed = s.ValidatorsUsed
	c.prevScore = s.Score
	c.rowLen = len(s.Problem.ValidatorIDs())

	row, ok := s.Results[c.round]
	c.hadRow = ok
	if ok {
		c.prevSlot = row[c.slot]
	}
	c.redo(s)
}

func (c *useValidator) undo(s *State) {
	s.ValidatorsUsed = c.prevUsed
	s.Score = c.prevScore
	if !c.hadRow {
		delete(s.Results, c.round)
		return
	}
	s.Results[c.round][c.slot] = c.prevSlot
}

func (c *useValidator) redo(s *State) {
	s.ValidatorsUsed = c.prevUsed + 1
	s.Score = c.prevScore + 1
	row, ok := s.Results[c.round]
	if !ok {
		row = make([]Slot, c.rowLen)
		s.Results[c.round] = row
	}
	row[c.slot] = slotOf(c.result)
}

// --- advance round ---------------------------------------------------------

type advanceRound struct {
	prevCandidate code.Code
	prevUsed      int
	prevRound     int
}

func (c *advanceRound) Kind() CommandKind { return CommandAdvanceRound }

func (c *advanceRound) execute(s *State) {
	c.prevCandidate = s.Candidate
	c.prevUsed = s.ValidatorsUsed
	c.prevRound = s.Round
	c.redo(s)
}

func (c *advanceRound) undo(s *State) {
	s.Candidate = c.prevCandidate
	s.ValidatorsUsed = c.prevUsed
	s.Round = c.prevRound
}

func (c *advanceRound) redo(s *State) {
	s.Candidate = code.Code{}
	s.ValidatorsUsed = 0
	s.Round = c.prevRound + 1
}
