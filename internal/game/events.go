package game

// EventKind is the closed set of notifications a Game emits.
type EventKind string

const (
	EventNewGameStarted   EventKind = "new_game_started"
	EventCandidateEntered EventKind = "candidate_entered"
	EventValidatorUsed    EventKind = "validator_used"
	EventUndoPerformed    EventKind = "undo_performed"
	EventRedoPerformed    EventKind = "redo_performed"
	EventUndoUnavailable  EventKind = "undo_unavailable"
	EventRedoUnavailable  EventKind = "redo_unavailable"
	EventRoundAdvanced    EventKind = "round_advanced"
	EventGameWon          EventKind = "game_won"
	EventGameLost         EventKind = "game_lost"
	EventGameAbandoned    EventKind = "game_abandoned"
)

// Event describes one state transition for presentation layers.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind         EventKind   `json:"kind"`
	ProblemIndex int         `json:"problemIndex"`
	Candidate    string      `json:"candidate,omitempty"`
	ValidatorID  int         `json:"validatorId,omitempty"`
	Result       *bool       `json:"result,omitempty"`
	Command      CommandKind `json:"command,omitempty"`
	Round        int         `json:"round,omitempty"`
	Score        int         `json:"score"`
	Rounds       int         `json:"rounds,omitempty"`
}

// Listener receives events synchronously, in emission order.
type Listener func(Event)
