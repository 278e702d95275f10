// internal/game/game.go
//
// Game is the session controller: it owns the problem list, the session
// state, the command history and the listener list, and exposes the public
// operations of one player's session.
//
// State machine:
//   idle ──StartNewGame/StartRandomGame──▶ active
//   active ──GuessSecret (won/lost) / Abandon──▶ idle
//
// Inside an active session, SubmitCandidate, UseValidator and AdvanceRound go
// through the command history and can be undone/redone. GuessSecret and
// Abandon are terminal and clear the history.
//
// Every failed operation leaves state untouched. A Game is not safe for
// concurrent use; callers serialize access per session.

package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/robalobadob/turing/internal/code"
	"github.com/robalobadob/turing/internal/problem"
)

// Game is a single-player session controller.
type Game struct {
	problems  []problem.Problem
	state     State
	history   History
	listeners []Listener
	pick      func(n int) int
}

// Option configures a Game.
type Option func(*Game)

// WithPicker replaces the random index source used by StartRandomGame.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(g *Game) { g.pick = pick }
}

// WithListener subscribes l before any operation runs.
func WithListener(l Listener) Option {
	return func(g *Game) { g.Subscribe(l) }
}

// New builds an idle Game over problems.
func New(problems []problem.Problem, opts ...Option) *Game {
	g := &Game{
		problems: problems,
		state:    idleState(),
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Subscribe adds a listener. Listeners live as long as the Game.
func (g *Game) Subscribe(l Listener) {
	if l != nil {
		g.listeners = append(g.listeners, l)
	}
}

func (g *Game) emit(e Event) {
	for _, l := range g.listeners {
		l(e)
	}
}

// Problems returns the playable problems in index order.
func (g *Game) Problems() []problem.Problem {
	out := make([]problem.Problem, len(g.problems))
	copy(out, g.problems)
	return out
}

// ------------------------------ lifecycle ----------------------------------

// StartNewGame begins a session on problems[index], replacing any current one.
func (g *Game) StartNewGame(index int) error {
	if index < 0 || index >= len(g.problems) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidProblemIndex, index, len(g.problems))
	}
	g.setup(index)
	g.emit(Event{Kind: EventNewGameStarted, ProblemIndex: index, Round: g.state.Round})
	return nil
}

// StartRandomGame begins a session on a random problem and returns its index.
func (g *Game) StartRandomGame() (int, error) {
	if len(g.problems) == 0 {
		return -1, ErrNoProblems
	}
	idx := g.pick(len(g.problems))
	if err := g.StartNewGame(idx); err != nil {
		return -1, err
	}
	return idx, nil
}

func (g *Game) setup(index int) {
	p := g.problems[index]
	g.state = State{
		Problem:      &p,
		ProblemIndex: index,
		Round:        1,
		Active:       true,
		Results:      map[int][]Slot{},
	}
	g.history.Clear()
}

// GuessSecret ends the session: won if guess equals the secret, lost
// otherwise. It is not undoable.
func (g *Game) GuessSecret(guess string) (bool, error) {
	if !g.state.Active {
		return false, ErrSessionNotActive
	}
	c, err := code.Parse(guess)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidCodeFormat, err)
	}
	won := g.state.Problem.IsCorrectGuess(c)
	g.state.Active = false
	g.history.Clear()

	ev := Event{Score: g.state.Score, Rounds: g.state.Round, Candidate: c.String()}
	if won {
		g.state.Outcome = OutcomeWon
		ev.Kind = EventGameWon
	} else {
		g.state.Outcome = OutcomeLost
		ev.Kind = EventGameLost
	}
	g.emit(ev)
	return won, nil
}

// Abandon forces the idle state and discards the problem and candidate.
// Only an active session can be abandoned; a finished one keeps its outcome.
func (g *Game) Abandon() error {
	if !g.state.Active {
		return ErrSessionNotActive
	}
	score, round := g.state.Score, g.state.Round
	g.state = idleState()
	g.state.Outcome = OutcomeAbandoned
	g.history.Clear()
	g.emit(Event{Kind: EventGameAbandoned, Score: score, Rounds: round})
	return nil
}

// ------------------------------ commands -----------------------------------

// SubmitCandidate enters the code to probe this round.
func (g *Game) SubmitCandidate(s string) error {
	if !g.state.Active {
		return ErrSessionNotActive
	}
	c, err := code.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCodeFormat, err)
	}
	if g.state.HasCandidate() {
		return ErrCandidateAlreadySet
	}
	g.history.Perform(&submitCandidate{code: c}, &g.state)
	g.emit(Event{Kind: EventCandidateEntered, Candidate: c.String(), Round: g.state.Round, Score: g.state.Score})
	return nil
}

// UseValidator probes the current candidate with validator id and returns
// whether candidate and secret agree. Each use costs one point.
func (g *Game) UseValidator(id int) (bool, error) {
	if !g.state.Active {
		return false, ErrSessionNotActive
	}
	if !g.state.HasCandidate() {
		return false, ErrNoCandidateSet
	}
	if g.state.ValidatorsUsed >= MaxValidatorsPerRound {
		return false, ErrValidatorBudgetExhausted
	}
	_, slot, ok := g.state.Problem.Rule(id)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownValidatorForProblem, id)
	}
	if row, ok := g.state.Results[g.state.Round]; ok && row[slot] != SlotUnset {
		return false, fmt.Errorf("%w: %d", ErrValidatorAlreadyUsedThisRound, id)
	}

	result, err := g.state.Problem.Validate(id, g.state.Candidate)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnknownValidatorForProblem, err)
	}

	g.history.Perform(&useValidator{id: id, slot: slot, result: result}, &g.state)
	g.emit(Event{
		Kind:        EventValidatorUsed,
		ValidatorID: id,
		Result:      &result,
		Round:       g.state.Round,
		Score:       g.state.Score,
	})
	return result, nil
}

// AdvanceRound clears the candidate and validator count and moves to the
// next round. Score and problem carry over.
func (g *Game) AdvanceRound() error {
	if !g.state.Active {
		return ErrSessionNotActive
	}
	g.history.Perform(&advanceRound{}, &g.state)
	g.emit(Event{Kind: EventRoundAdvanced, Round: g.state.Round, Score: g.state.Score})
	return nil
}

// ------------------------------ history ------------------------------------

// Undo reverts the last command. An empty history is reported with
// ErrNothingToUndo and an undo_unavailable event.
func (g *Game) Undo() error {
	if !g.state.Active {
		return ErrSessionNotActive
	}
	cmd, err := g.history.Undo(&g.state)
	if err != nil {
		g.emit(Event{Kind: EventUndoUnavailable, Round: g.state.Round, Score: g.state.Score})
		return err
	}
	g.emit(g.historyEvent(EventUndoPerformed, cmd))
	return nil
}

// Redo re-applies the last undone command. An empty redo stack is reported
// with ErrNothingToRedo and a redo_unavailable event.
func (g *Game) Redo() error {
	if !g.state.Active {
		return ErrSessionNotActive
	}
	cmd, err := g.history.Redo(&g.state)
	if err != nil {
		g.emit(Event{Kind: EventRedoUnavailable, Round: g.state.Round, Score: g.state.Score})
		return err
	}
	g.emit(g.historyEvent(EventRedoPerformed, cmd))
	return nil
}

func (g *Game) historyEvent(kind EventKind, cmd Command) Event {
	ev := Event{Kind: kind, Command: cmd.Kind(), Round: g.state.Round, Score: g.state.Score}
	if uv, ok := cmd.(*useValidator); ok {
		ev.ValidatorID = uv.id
		ev.Round = uv.round
	}
	return ev
}

// ------------------------------ queries ------------------------------------

func (g *Game) Active() bool        { return g.state.Active }
func (g *Game) Round() int          { return g.state.Round }
func (g *Game) Score() int          { return g.state.Score }
func (g *Game) ValidatorsUsed() int { return g.state.ValidatorsUsed }
func (g *Game) Outcome() Outcome    { return g.state.Outcome }
func (g *Game) CanUndo() bool       { return g.state.Active && g.history.CanUndo() }
func (g *Game) CanRedo() bool       { return g.state.Active && g.history.CanRedo() }

// Candidate returns the code entered this round, if any.
func (g *Game) Candidate() (code.Code, bool) {
	return g.state.Candidate, g.state.HasCandidate()
}

// Problem returns the current problem, if any.
func (g *Game) Problem() (problem.Problem, bool) {
	if g.state.Problem == nil {
		return problem.Problem{}, false
	}
	return *g.state.Problem, true
}

// ResultsForRound returns one slot per assigned validator for round.
// Rounds without any validator use return all-unset slots.
func (g *Game) ResultsForRound(round int) []Slot {
	if g.state.Problem == nil {
		return nil
	}
	if row, ok := g.state.Results[round]; ok {
		return append([]Slot(nil), row...)
	}
	return make([]Slot, len(g.state.Problem.ValidatorIDs()))
}

// Snapshot is a read-only view of the session for presentation layers.
type Snapshot struct {
	Active         bool           `json:"active"`
	Outcome        Outcome        `json:"outcome,omitempty"`
	ProblemIndex   int            `json:"problemIndex"`
	ProblemNumber  int            `json:"problemNumber,omitempty"`
	Validators     []int          `json:"validators"`
	Round          int            `json:"round"`
	Score          int            `json:"score"`
	Candidate      string         `json:"candidate,omitempty"`
	ValidatorsUsed int            `json:"validatorsUsed"`
	Results        map[int][]Slot `json:"results"`
	CanUndo        bool           `json:"canUndo"`
	CanRedo        bool           `json:"canRedo"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	st := g.state.clone()
	snap := Snapshot{
		Active:         st.Active,
		Outcome:        st.Outcome,
		ProblemIndex:   st.ProblemIndex,
		Validators:     []int{},
		Round:          st.Round,
		Score:          st.Score,
		Candidate:      st.Candidate.String(),
		ValidatorsUsed: st.ValidatorsUsed,
		Results:        st.Results,
		CanUndo:        g.CanUndo(),
		CanRedo:        g.CanRedo(),
	}
	if st.Problem != nil {
		snap.ProblemNumber = st.Problem.Number()
		snap.Validators = st.Problem.ValidatorIDs()
	}
	return snap
}
