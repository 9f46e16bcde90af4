package api_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/api"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/recommend"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/scoring"
	"github.com/vytor/chesslegends/internal/services"
	"github.com/vytor/chesslegends/internal/testutil/mocks"
)

const morphyGames = `[Event "Paris Opera"]
[Date "1858.11.02"]
[White "Morphy, Paul"]
[Black "Duke Karl / Count Isouard"]
[Result "1-0"]

1. e4 e5 2. Nf3 d6 3. d4 Bg4 1-0
`

func newServer(t *testing.T, queue *mocks.MockJobQueue) http.Handler {
	t.Helper()
	engine := rules.New()
	reg := identity.DefaultRegistry()
	legends := services.NewLegendService(reg,
		legend.NewPipeline(reg, replay.New(engine), 18, 2),
		legend.NewStore(), nil,
		recommend.New(engine, nil, rand.New(rand.NewSource(7))), 10)
	study := services.NewStudyService(legends, scoring.NewScorer(engine, nil, 0), nil)

	srv := &api.Server{LegendService: legends, StudyService: study}
	if queue != nil {
		srv.JobQueue = queue
	}
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	h := newServer(t, nil)
	rec, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportAndQuery(t *testing.T) {
	h := newServer(t, nil)

	rec, body := do(t, h, http.MethodPost, "/legends/morphy/games", morphyGames)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, body["inserted"])

	rec, _ = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/legends/morphy/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["plies_indexed"])
	assert.EqualValues(t, 18, body["horizon"])

	rec, body = do(t, h, http.MethodGet, "/legends/morphy/book?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["entries"], 2)

	rec, body = do(t, h, http.MethodGet, "/legends/morphy/book?fen="+strings.ReplaceAll(rules.StartFEN, " ", "+"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "e2e4", entries[0].(map[string]any)["move"])

	rec, body = do(t, h, http.MethodPost, "/legends/morphy/recommend", `{"history":["e4","e5"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "g1f3", body["move"])
	assert.Equal(t, "index", body["source"])

	rec, body = do(t, h, http.MethodGet, "/legends", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["legends"])
}

func TestErrors(t *testing.T) {
	h := newServer(t, nil)
	_, _ = do(t, h, http.MethodPost, "/legends/morphy/games", morphyGames)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "unknown legend import", method: http.MethodPost, path: "/legends/nobody/games", body: morphyGames, status: http.StatusNotFound, code: "UNKNOWN_LEGEND"},
		{name: "empty pgn", method: http.MethodPost, path: "/legends/morphy/games", body: "  ", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unbuilt legend stats", method: http.MethodGet, path: "/legends/tal/stats", status: http.StatusNotFound, code: "UNKNOWN_LEGEND"},
		{name: "bad limit", method: http.MethodGet, path: "/legends/morphy/book?limit=x", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "bad json", method: http.MethodPost, path: "/legends/morphy/recommend", body: "{", status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "illegal history", method: http.MethodPost, path: "/legends/morphy/recommend", body: `{"history":["e5"]}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "index miss without oracle", method: http.MethodPost, path: "/legends/morphy/recommend", body: `{"history":["e4"]}`, status: http.StatusServiceUnavailable, code: "ORACLE_UNAVAILABLE"},
		{name: "unknown session", method: http.MethodPost, path: "/sessions/nope/guesses", body: `{"move":"e4"}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "missing move", method: http.MethodPost, path: "/sessions/nope/guesses", body: `{}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestStudySession(t *testing.T) {
	h := newServer(t, nil)
	_, _ = do(t, h, http.MethodPost, "/legends/morphy/games", morphyGames)

	rec, body := do(t, h, http.MethodPost, "/legends/morphy/sessions", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)
	assert.Equal(t, "white", body["side"])
	assert.EqualValues(t, 3, body["positions"])
	current := body["current"].(map[string]any)
	assert.Empty(t, current["historical"].(map[string]any)["from"])

	for _, move := range []string{"e4", "Nf3", "Nc3"} {
		rec, body = do(t, h, http.MethodPost, "/sessions/"+id+"/guesses", `{"move":"`+move+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	result := body["result"].(map[string]any)
	assert.Equal(t, "b1c3", result["guess"])
	assert.Equal(t, "d2d4", result["historical"])
	assert.Nil(t, body["session"].(map[string]any)["current"])

	rec, body = do(t, h, http.MethodPost, "/sessions/"+id+"/guesses", `{"move":"e4"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SESSION_COMPLETE", errorCode(body))

	rec, body = do(t, h, http.MethodPost, "/sessions/"+id+"/finish", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 300, body["max_score"])
	assert.Equal(t, id, body["session_id"])

	rec, _ = do(t, h, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRebuild(t *testing.T) {
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueRebuild", "morphy").Return(nil)
	h := newServer(t, queue)

	rec, body := do(t, h, http.MethodPost, "/legends/morphy/rebuild", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "queued", body["status"])

	rec, body = do(t, h, http.MethodPost, "/legends/Morphy/rebuild", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "morphy", body["legend_id"])

	rec, _ = do(t, h, http.MethodPost, "/legends/nobody/rebuild", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	queue.AssertNumberOfCalls(t, "EnqueueRebuild", 2)
}

func TestImport_MixedCaseLegendID(t *testing.T) {
	h := newServer(t, nil)

	rec, body := do(t, h, http.MethodPost, "/legends/Morphy/games", morphyGames)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "morphy", body["legend_id"])

	for _, path := range []string{"/legends/Morphy/stats", "/legends/morphy/stats", "/legends/MORPHY/book"} {
		rec, _ = do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRebuild_Inline(t *testing.T) {
	h := newServer(t, nil)
	_, _ = do(t, h, http.MethodPost, "/legends/morphy/games", morphyGames)

	rec, body := do(t, h, http.MethodPost, "/legends/morphy/rebuild", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "morphy", body["legend_id"])
}

func TestImport_BodyTooLarge(t *testing.T) {
	engine := rules.New()
	reg := identity.DefaultRegistry()
	legends := services.NewLegendService(reg, legend.NewPipeline(reg, replay.New(engine), 18, 1),
		legend.NewStore(), nil, recommend.New(engine, nil, nil), 10)
	srv := &api.Server{LegendService: legends, MaxUploadSize: 16}

	req := httptest.NewRequest(http.MethodPost, "/legends/morphy/games", bytes.NewBufferString(morphyGames))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
