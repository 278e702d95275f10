package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/turing/internal/daily"
	"github.com/robalobadob/turing/internal/metrics"
	"github.com/robalobadob/turing/internal/problem"
	"github.com/robalobadob/turing/internal/store"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv   *Server
	store store.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ps, err := problem.Resolve([]problem.Definition{
		{Number: 1, Secret: "123", Difficulty: 1, Luck: 1, ValidatorIDs: []int{1, 5}},
		{Number: 2, Secret: "241", Difficulty: 1, Luck: 1, ValidatorIDs: []int{4, 9, 11, 14}},
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	st := store.NewMemoryStore()
	srv := New(Options{
		Store:        st,
		Problems:     ps,
		Metrics:      metrics.NewRecorder(reg),
		Gatherer:     reg,
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		ClientOrigin: "http://example.test",
		DailySalt:    "salt",
		Now:          func() time.Time { return fixedNow },
	})
	return testEnv{srv: srv, store: st}
}

type eventView struct {
	Kind string `json:"kind"`
}

type stateView struct {
	Active         bool   `json:"active"`
	Outcome        string `json:"outcome"`
	ProblemIndex   int    `json:"problemIndex"`
	ProblemNumber  int    `json:"problemNumber"`
	Round          int    `json:"round"`
	Score          int    `json:"score"`
	Candidate      string `json:"candidate"`
	ValidatorsUsed int    `json:"validatorsUsed"`
	CanUndo        bool   `json:"canUndo"`
	CanRedo        bool   `json:"canRedo"`
}

type response struct {
	GameID string      `json:"gameId"`
	Token  string      `json:"token"`
	Error  string      `json:"error"`
	Result *bool       `json:"result"`
	Won    *bool       `json:"won"`
	State  stateView   `json:"state"`
	Events []eventView `json:"events"`
}

func (r response) kinds() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

func (e testEnv) call(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	var res response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return rec, res
}

func (e testEnv) start(t *testing.T, index int) response {
	t.Helper()
	rec, res := e.call(t, http.MethodPost, "/games", "", map[string]any{"problem": index})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, res.GameID)
	require.NotEmpty(t, res.Token)
	return res
}

func TestHealthAndCatalogue(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "http://example.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = env.call(t, http.MethodGet, "/validators", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []ruleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	assert.Len(t, rules, 22)
	assert.Equal(t, 1, rules[0].ID)
	assert.NotEmpty(t, rules[0].Description)

	rec, _ = env.call(t, http.MethodGet, "/problems", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var probs []problemView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &probs))
	require.Len(t, probs, 2)
	assert.Equal(t, 2, probs[1].Number)
	assert.Len(t, probs[1].Validators, 4)
	assert.NotContains(t, rec.Body.String(), "241", "secrets must not be listed")
}

func TestDailyProblem(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.call(t, http.MethodGet, "/problems/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d dailyRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	want := daily.ProblemIndex(fixedNow, "salt", 2)
	assert.Equal(t, "2026-03-14", d.Date)
	assert.Equal(t, want, d.Index)
	assert.Equal(t, want+1, d.Number)

	rec, res := env.call(t, http.MethodPost, "/games", "", map[string]any{"daily": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, want, res.State.ProblemIndex)
}

func TestPreflight(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.call(t, http.MethodOptions, "/games", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t)
	rec, res := env.call(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", res.Error)
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)

	res := env.start(t, 1)
	assert.True(t, res.State.Active)
	assert.Equal(t, 1, res.State.Round)
	assert.Equal(t, 0, res.State.Score)
	assert.Equal(t, 2, res.State.ProblemNumber)
	assert.Equal(t, []string{"new_game_started"}, res.kinds())
	assert.Equal(t, 1, env.store.Len())

	t.Run("empty body picks at random", func(t *testing.T) {
		rec, res := env.call(t, http.MethodPost, "/games", "", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, res.State.Active)
	})

	t.Run("bad index", func(t *testing.T) {
		before := env.store.Len()
		rec, res := env.call(t, http.MethodPost, "/games", "", map[string]any{"problem": 7})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_problem_index", res.Error)
		assert.Equal(t, before, env.store.Len())
	})

	t.Run("conflicting selectors", func(t *testing.T) {
		rec, res := env.call(t, http.MethodPost, "/games", "", map[string]any{"problem": 0, "random": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_json", res.Error)
	})
}

func TestSessionAuth(t *testing.T) {
	env := newTestEnv(t)
	a := env.start(t, 0)
	b := env.start(t, 0)

	rec, res := env.call(t, http.MethodGet, "/games/"+a.GameID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", res.Error)

	rec, res = env.call(t, http.MethodGet, "/games/"+a.GameID, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", res.Error)

	rec, res = env.call(t, http.MethodGet, "/games/"+a.GameID, b.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", res.Error)

	rec, res = env.call(t, http.MethodGet, "/games/"+a.GameID, a.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, res.State.Active)

	require.NoError(t, env.store.Delete(context.Background(), a.GameID))
	rec, res = env.call(t, http.MethodGet, "/games/"+a.GameID, a.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "game_not_found", res.Error)
}

func TestExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	a := env.start(t, 0)

	later := fixedNow.Add(2 * time.Hour)
	env.srv.tokens.now = func() time.Time { return later }

	rec, res := env.call(t, http.MethodGet, "/games/"+a.GameID, a.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", res.Error)
}

func TestPlayThroughHTTP(t *testing.T) {
	env := newTestEnv(t)
	g := env.start(t, 0)
	base, tok := "/games/"+g.GameID, g.Token

	rec, res := env.call(t, http.MethodPost, base+"/validators/1", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_candidate_set", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/candidate", tok, map[string]string{"code": "164"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_code_format", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/candidate", tok, map[string]string{"code": "114"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "114", res.State.Candidate)
	assert.Equal(t, []string{"candidate_entered"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/candidate", tok, map[string]string{"code": "115"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "candidate_already_set", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/validators/1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, res.Result)
	assert.True(t, *res.Result)
	assert.Equal(t, 1, res.State.Score)
	assert.Equal(t, []string{"validator_used"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/validators/1", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "validator_already_used", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/validators/9", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_validator", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/validators/x", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_validator", res.Error)

	rec, res = env.call(t, http.MethodPost, base+"/undo", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, res.State.Score)
	assert.True(t, res.State.CanRedo)
	assert.Equal(t, []string{"undo_performed"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/redo", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, res.State.Score)

	rec, res = env.call(t, http.MethodPost, base+"/redo", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "nothing_to_redo", res.Error)
	assert.Equal(t, []string{"redo_unavailable"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/advance", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, res.State.Round)
	assert.Empty(t, res.State.Candidate)
	assert.Equal(t, 0, res.State.ValidatorsUsed)

	rec, res = env.call(t, http.MethodPost, base+"/guess", tok, map[string]string{"code": "123"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, res.Won)
	assert.True(t, *res.Won)
	assert.False(t, res.State.Active)
	assert.Equal(t, "won", res.State.Outcome)
	assert.Equal(t, []string{"game_won"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/undo", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_not_active", res.Error)

	rec, _ = env.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "turing_games_started_total 1")
	assert.Contains(t, body, `turing_games_finished_total{outcome="won"} 1`)
}

func TestAbandon(t *testing.T) {
	env := newTestEnv(t)
	g := env.start(t, 0)
	base, tok := "/games/"+g.GameID, g.Token

	_, _ = env.call(t, http.MethodPost, base+"/candidate", tok, map[string]string{"code": "111"})
	rec, res := env.call(t, http.MethodPost, base+"/abandon", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, res.State.Active)
	assert.Equal(t, "abandoned", res.State.Outcome)
	assert.Empty(t, res.State.Candidate)
	assert.Equal(t, []string{"game_abandoned"}, res.kinds())

	rec, res = env.call(t, http.MethodPost, base+"/guess", tok, map[string]string{"code": "123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_not_active", res.Error)
}

func TestBadJSONBody(t *testing.T) {
	env := newTestEnv(t)
	g := env.start(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/games/"+g.GameID+"/candidate", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+g.Token)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bad_json"`)
}

func TestAbandonAfterWinKeepsOutcome(t *testing.T) {
	env := newTestEnv(t)
	g := env.start(t, 0)
	base, tok := "/games/"+g.GameID, g.Token

	rec, _ := env.call(t, http.MethodPost, base+"/guess", tok, map[string]string{"code": "123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, res := env.call(t, http.MethodPost, base+"/abandon", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_not_active", res.Error)
	assert.Empty(t, res.Events)

	rec, res = env.call(t, http.MethodGet, base, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "won", res.State.Outcome)

	rec, _ = env.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `turing_games_finished_total{outcome="won"} 1`)
	assert.NotContains(t, rec.Body.String(), `outcome="abandoned"`)
}
