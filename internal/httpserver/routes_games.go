// internal/httpserver/routes_games.go
//
// HTTP routes for game sessions.
//   - POST /games                      → start a session, returns id + token
//   - GET  /games/{id}                 → current state
//   - POST /games/{id}/candidate       → {code}
//   - POST /games/{id}/validators/{vid}
//   - POST /games/{id}/advance
//   - POST /games/{id}/guess           → {code}
//   - POST /games/{id}/undo | /redo
//   - POST /games/{id}/abandon
//
// Every response carries the session snapshot and the events the request
// caused, in emission order.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/internal/daily"
	"github.com/robalobadob/turing/internal/game"
)

func (s *Server) mountGames() {
	s.r.Post("/games", s.handleCreate)
	s.r.Route("/games/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleState)
		r.Post("/candidate", s.handleCandidate)
		r.Post("/validators/{vid}", s.handleValidator)
		r.Post("/advance", s.op(func(g *game.Game) (opExtra, error) { return opExtra{}, g.AdvanceRound() }))
		r.Post("/guess", s.handleGuess)
		r.Post("/undo", s.op(func(g *game.Game) (opExtra, error) { return opExtra{}, g.Undo() }))
		r.Post("/redo", s.op(func(g *game.Game) (opExtra, error) { return opExtra{}, g.Redo() }))
		r.Post("/abandon", s.op(func(g *game.Game) (opExtra, error) { return opExtra{}, g.Abandon() }))
	})
}

// --- create ---

type createReq struct {
	Problem *int `json:"problem,omitempty"` // index into /problems
	Random  bool `json:"random,omitempty"`
	Daily   bool `json:"daily,omitempty"`
}

type createRes struct {
	GameID    string        `json:"gameId"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	State     game.Snapshot `json:"state"`
	Events    []game.Event  `json:"events"`
}

// handleCreate starts a new session. Exactly one of problem, random or
// daily selects the problem; an empty body means random.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err), nil)
		return
	}
	if n := countTrue(req.Problem != nil, req.Random, req.Daily); n > 1 {
		writeError(w, fmt.Errorf("%w: choose one of problem, random, daily", errBadJSON), nil)
		return
	}

	opts := []game.Option{}
	if s.metrics != nil {
		opts = append(opts, game.WithListener(s.metrics.Observe))
	}
	if req.Daily {
		opts = append(opts, game.WithPicker(daily.Picker(s.now, s.salt)))
	}
	g := game.New(s.problems, opts...)

	sess, err := s.store.Create(r.Context(), g)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	sess.View(func(g *game.Game) { g.Subscribe(logEvents(sess.ID)) })

	events, err := sess.Do(func(g *game.Game) error {
		if req.Problem != nil {
			return g.StartNewGame(*req.Problem)
		}
		_, err := g.StartRandomGame()
		return err
	})
	if err != nil {
		_ = s.store.Delete(r.Context(), sess.ID)
		writeError(w, err, events)
		return
	}

	token, exp, err := s.tokens.sign(sess.ID)
	if err != nil {
		_ = s.store.Delete(r.Context(), sess.ID)
		writeError(w, err, nil)
		return
	}

	var snap game.Snapshot
	sess.View(func(g *game.Game) { snap = g.Snapshot() })
	log.Info().Str("session", sess.ID).Int("problem", snap.ProblemNumber).Msg("game created")
	writeJSON(w, http.StatusCreated, createRes{GameID: sess.ID, Token: token, ExpiresAt: exp, State: snap, Events: events})
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// --- session operations ---

// opExtra carries operation-specific results next to the snapshot.
type opExtra struct {
	Result *bool `json:"result,omitempty"` // validator outcome
	Won    *bool `json:"won,omitempty"`    // guess outcome
}

type opRes struct {
	opExtra
	State  game.Snapshot `json:"state"`
	Events []game.Event  `json:"events"`
}

// op adapts a game operation into a handler that runs it under the session
// lock and renders the snapshot and captured events.
func (s *Server) op(fn func(g *game.Game) (opExtra, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.run(w, r, fn)
	}
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, fn func(g *game.Game) (opExtra, error)) {
	sess := sessionFrom(r)
	var (
		extra opExtra
		snap  game.Snapshot
	)
	events, err := sess.Do(func(g *game.Game) error {
		var err error
		extra, err = fn(g)
		snap = g.Snapshot()
		return err
	})
	if events == nil {
		events = []game.Event{}
	}
	if err != nil {
		writeError(w, err, events)
		return
	}
	writeJSON(w, http.StatusOK, opRes{opExtra: extra, State: snap, Events: events})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	sessionFrom(r).View(func(g *game.Game) { snap = g.Snapshot() })
	writeJSON(w, http.StatusOK, opRes{State: snap, Events: []game.Event{}})
}

type codeReq struct {
	Code string `json:"code"`
}

func decodeCode(r *http.Request) (string, error) {
	var req codeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return req.Code, nil
}

func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCode(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	s.run(w, r, func(g *game.Game) (opExtra, error) {
		return opExtra{}, g.SubmitCandidate(c)
	})
}

func (s *Server) handleValidator(w http.ResponseWriter, r *http.Request) {
	vid, err := strconv.Atoi(chi.URLParam(r, "vid"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %q", game.ErrUnknownValidatorForProblem, chi.URLParam(r, "vid")), nil)
		return
	}
	s.run(w, r, func(g *game.Game) (opExtra, error) {
		ok, err := g.UseValidator(vid)
		if err != nil {
			return opExtra{}, err
		}
		return opExtra{Result: &ok}, nil
	})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCode(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	s.run(w, r, func(g *game.Game) (opExtra, error) {
		won, err := g.GuessSecret(c)
		if err != nil {
			return opExtra{}, err
		}
		return opExtra{Won: &won}, nil
	})
}

// logEvents returns a listener that traces a session's events at debug level.
func logEvents(sessionID string) game.Listener {
	return func(e game.Event) {
		ev := log.Debug().Str("session", sessionID).Str("event", string(e.Kind))
		if e.ValidatorID != 0 {
			ev = ev.Int("validator", e.ValidatorID)
		}
		if e.Result != nil {
			ev = ev.Bool("result", *e.Result)
		}
		ev.Int("round", e.Round).Int("score", e.Score).Msg("game event")
	}
}
