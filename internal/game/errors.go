package game

import "errors"

// Input validation errors.
var (
	ErrInvalidProblemIndex        = errors.New("invalid problem index")
	ErrInvalidCodeFormat          = errors.New("invalid code format")
	ErrUnknownValidatorForProblem = errors.New("validator not available for this problem")
	ErrNoProblems                 = errors.New("no problems loaded")
)

// State precondition errors.
var (
	ErrSessionNotActive              = errors.New("game is not active")
	ErrCandidateAlreadySet           = errors.New("code already entered for this round")
	ErrNoCandidateSet                = errors.New("no code entered for this round")
	ErrValidatorBudgetExhausted      = errors.New("maximum of 3 validators already chosen for this code")
	ErrValidatorAlreadyUsedThisRound = errors.New("validator already used this round")
)

// History errors. These are reported, never fatal.
var (
	ErrNothingToUndo = errors.New("no actions to undo")
	ErrNothingToRedo = errors.New("no actions to redo")
)
