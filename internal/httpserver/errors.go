package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/internal/game"
	"github.com/robalobadob/turing/internal/store"
)

var (
	errBadJSON          = errors.New("bad json")
	errNoProblemsLoaded = errors.New("no problems loaded")
)

type apiError struct {
	status int
	code   string
}

// errorTable maps domain errors to HTTP status and a stable snake_case code.
// Order matters only for wrapped errors that match several entries; the
// first match wins.
var errorTable = []struct {
	err error
	apiError
}{
	{game.ErrInvalidCodeFormat, apiError{http.StatusBadRequest, "invalid_code_format"}},
	{game.ErrInvalidProblemIndex, apiError{http.StatusBadRequest, "invalid_problem_index"}},
	{game.ErrUnknownValidatorForProblem, apiError{http.StatusBadRequest, "unknown_validator"}},
	{errBadJSON, apiError{http.StatusBadRequest, "bad_json"}},

	{game.ErrSessionNotActive, apiError{http.StatusConflict, "session_not_active"}},
	{game.ErrCandidateAlreadySet, apiError{http.StatusConflict, "candidate_already_set"}},
	{game.ErrNoCandidateSet, apiError{http.StatusConflict, "no_candidate_set"}},
	{game.ErrValidatorBudgetExhausted, apiError{http.StatusConflict, "validator_budget_exhausted"}},
	{game.ErrValidatorAlreadyUsedThisRound, apiError{http.StatusConflict, "validator_already_used"}},
	{game.ErrNothingToUndo, apiError{http.StatusConflict, "nothing_to_undo"}},
	{game.ErrNothingToRedo, apiError{http.StatusConflict, "nothing_to_redo"}},

	{errMissingToken, apiError{http.StatusUnauthorized, "unauthorized"}},
	{errInvalidToken, apiError{http.StatusUnauthorized, "invalid_token"}},
	{errWrongSession, apiError{http.StatusForbidden, "forbidden"}},
	{store.ErrNotFound, apiError{http.StatusNotFound, "game_not_found"}},

	{game.ErrNoProblems, apiError{http.StatusServiceUnavailable, "no_problems"}},
	{errNoProblemsLoaded, apiError{http.StatusServiceUnavailable, "no_problems"}},
}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.apiError
		}
	}
	return apiError{http.StatusInternalServerError, "internal"}
}

type errorRes struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Events  []game.Event `json:"events,omitempty"`
}

// writeError renders err as {"error": code, "message": text}. Events emitted
// by a failed operation (undo_unavailable, redo_unavailable) ride along.
func writeError(w http.ResponseWriter, err error, events []game.Event) {
	ae := classify(err)
	if ae.status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, ae.status, errorRes{Error: ae.code, Message: err.Error(), Events: events})
}
