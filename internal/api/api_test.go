package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrongbook/backend/internal/api"
	"github.com/wrongbook/backend/internal/auth"
	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/service"
	"github.com/wrongbook/backend/internal/store"
)

var (
	alice = access.User{ID: "alice", Email: "alice@example.com"}
	bob   = access.User{ID: "bob", Email: "bob@example.com"}
	carol = access.User{ID: "carol", Email: "carol@example.com"}
)

type testServer struct {
	t        *testing.T
	server   *httptest.Server
	tokens   *auth.Tokens
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokens("test-secret")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics(registry)
	handler := api.NewHandler(service.NewReviewService(db, logger), db, metrics, logger)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, handler, api.Authenticate(tokens))

	srv := httptest.NewServer(metrics.Instrument(api.CORS(mux)))
	t.Cleanup(srv.Close)
	return &testServer{t: t, server: srv, tokens: tokens, registry: registry}
}

// do sends body as JSON on behalf of user and decodes the response into out.
func (ts *testServer) do(user access.User, method, path string, body, out any) int {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user.ID != "" {
		token, err := ts.tokens.Issue(user, time.Hour)
		require.NoError(ts.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) createProblem(user access.User, title string) string {
	ts.t.Helper()
	var p api.ProblemResponse
	status := ts.do(user, http.MethodPost, "/problems", api.CreateProblemRequest{
		SubjectID:   "algebra",
		Title:       title,
		ProblemType: "short",
	}, &p)
	require.Equal(ts.t, http.StatusCreated, status)
	return p.ID
}

func (ts *testServer) createManualSet(user access.User, ids []string, sharing string, sharedWith ...string) string {
	ts.t.Helper()
	var ps api.ProblemSetResponse
	status := ts.do(user, http.MethodPost, "/problem-sets", api.CreateProblemSetRequest{
		Name:       "week 1",
		SubjectID:  "algebra",
		Kind:       "manual",
		ProblemIDs: ids,
		Sharing:    sharing,
		SharedWith: sharedWith,
	}, &ps)
	require.Equal(ts.t, http.StatusCreated, status)
	return ps.ID
}

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := ts.do(access.User{}, http.MethodPost, "/problems", api.CreateProblemRequest{}, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing bearer token", body["error"])

	req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/sessions/x", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	p2 := ts.createProblem(alice, "p2")
	p3 := ts.createProblem(alice, "p3")
	setID := ts.createManualSet(alice, []string{p1, p2, p3}, "")

	var started api.StartSessionResponse
	status := ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &started)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, started.IsNew)
	assert.Equal(t, p1, started.FirstProblemID)
	assert.Equal(t, []string{p1, p2, p3}, started.Session.ProblemIDs)
	sessionPath := "/sessions/" + started.Session.ID

	progress := []api.RecordProgressRequest{
		{ProblemID: p1, WasSkipped: boolPtr(false), WasCorrect: boolPtr(true), CurrentIndex: intPtr(1)},
		{ProblemID: p2, WasSkipped: boolPtr(false), WasCorrect: boolPtr(false), CurrentIndex: intPtr(2)},
		{ProblemID: p3, WasSkipped: boolPtr(true)},
	}
	for _, p := range progress {
		require.Equal(t, http.StatusOK, ts.do(alice, http.MethodPost, sessionPath+"/progress", p, nil))
	}

	var resumed api.StartSessionResponse
	status = ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &resumed)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, resumed.IsNew)
	assert.Equal(t, started.Session.ID, resumed.Session.ID)
	assert.Equal(t, 2, resumed.Session.CurrentIndex)
	assert.Equal(t, p3, resumed.FirstProblemID)

	var view api.GetSessionResponse
	require.Equal(t, http.StatusOK, ts.do(alice, http.MethodGet, sessionPath, nil, &view))
	assert.Len(t, view.Problems, 3)
	assert.Len(t, view.Results, 3)
	assert.NotNil(t, view.Problems[0].LastReviewedAt)
	assert.Nil(t, view.Problems[2].LastReviewedAt)

	var done api.CompleteSessionResponse
	require.Equal(t, http.StatusOK, ts.do(alice, http.MethodPost, sessionPath+"/complete", nil, &done))
	assert.Equal(t, "completed", done.Outcome)
	assert.False(t, done.Session.IsActive)
	assert.Equal(t, 3, done.Summary.TotalProblems)
	assert.Equal(t, 1, done.Summary.CorrectCount)
	assert.Equal(t, 1, done.Summary.IncorrectCount)
	assert.Equal(t, 1, done.Summary.SkippedCount)
	assert.Equal(t, 50, done.Summary.Accuracy)

	var body map[string]string
	status = ts.do(alice, http.MethodPost, sessionPath+"/progress", api.RecordProgressRequest{CurrentIndex: intPtr(0)}, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "session not found", body["error"])

	started.IsNew = false
	status = ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &started)
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, started.IsNew)
}

func TestRecordProgress_InvalidProblem(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	setID := ts.createManualSet(alice, []string{p1}, "")

	var started api.StartSessionResponse
	require.Equal(t, http.StatusCreated, ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &started))

	var body map[string]string
	status := ts.do(alice, http.MethodPost, "/sessions/"+started.Session.ID+"/progress",
		api.RecordProgressRequest{ProblemID: "elsewhere", WasSkipped: boolPtr(true)}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "problem is not part of this session", body["error"])

	status = ts.do(alice, http.MethodPost, "/sessions/"+started.Session.ID+"/progress",
		api.RecordProgressRequest{CurrentIndex: intPtr(-1)}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "currentIndex must not be negative", body["error"])

	status = ts.do(alice, http.MethodPost, "/sessions/"+started.Session.ID+"/progress",
		api.RecordProgressRequest{ElapsedMs: int64Ptr(-5)}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "elapsedMs must not be negative", body["error"])
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	setID := ts.createManualSet(alice, []string{p1}, "")

	var started api.StartSessionResponse
	require.Equal(t, http.StatusCreated, ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &started))

	var deleted api.DeleteSessionResponse
	require.Equal(t, http.StatusOK, ts.do(alice, http.MethodDelete, "/sessions/"+started.Session.ID, nil, &deleted))
	assert.Equal(t, started.Session.ID, deleted.SessionID)
	assert.False(t, deleted.IsActive)

	assert.Equal(t, http.StatusNotFound, ts.do(alice, http.MethodDelete, "/sessions/"+started.Session.ID, nil, nil))
}

func TestAccessHiding(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	private := ts.createManualSet(alice, []string{p1}, "private")

	var denied, missing map[string]string
	deniedStatus := ts.do(bob, http.MethodGet, "/problem-sets/"+private, nil, &denied)
	missingStatus := ts.do(bob, http.MethodGet, "/problem-sets/no-such-set", nil, &missing)
	assert.Equal(t, http.StatusNotFound, deniedStatus)
	assert.Equal(t, missingStatus, deniedStatus)
	assert.Equal(t, missing, denied)

	deniedStatus = ts.do(bob, http.MethodPost, "/problem-sets/"+private+"/sessions", nil, &denied)
	missingStatus = ts.do(bob, http.MethodPost, "/problem-sets/no-such-set/sessions", nil, &missing)
	assert.Equal(t, http.StatusNotFound, deniedStatus)
	assert.Equal(t, missingStatus, deniedStatus)
	assert.Equal(t, missing, denied)
}

func TestLimitedSharingGivesReadOnlySession(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	setID := ts.createManualSet(alice, []string{p1}, "limited", "BOB@example.com")

	var ps api.ProblemSetResponse
	require.Equal(t, http.StatusOK, ts.do(bob, http.MethodGet, "/problem-sets/"+setID, nil, &ps))
	assert.False(t, ps.IsOwner)
	assert.Empty(t, ps.SharedWith)

	var started api.StartSessionResponse
	require.Equal(t, http.StatusCreated, ts.do(bob, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, &started))
	assert.True(t, started.Session.IsReadOnly)

	assert.Equal(t, http.StatusNotFound, ts.do(carol, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(alice, http.MethodGet, "/sessions/"+started.Session.ID, nil, nil))
}

func TestSmartSetWithNoMatches(t *testing.T) {
	ts := newTestServer(t)
	ts.createProblem(alice, "p1")

	var ps api.ProblemSetResponse
	status := ts.do(alice, http.MethodPost, "/problem-sets", map[string]any{
		"name":       "mastered only",
		"subject_id": "algebra",
		"kind":       "smart",
		"filter":     map[string]any{"statuses": []string{"mastered"}},
	}, &ps)
	require.Equal(t, http.StatusCreated, status)

	var body map[string]string
	status = ts.do(alice, http.MethodPost, "/problem-sets/"+ps.ID+"/sessions", nil, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "No problems match the current filters", body["error"])
}

func TestCreateProblemSet_Validation(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"subject_id": "algebra", "kind": "manual", "problem_ids": []string{p1}}},
		{"unknown kind", map[string]any{"name": "x", "subject_id": "algebra", "kind": "weird"}},
		{"manual without problems", map[string]any{"name": "x", "subject_id": "algebra", "kind": "manual"}},
		{"smart without filter", map[string]any{"name": "x", "subject_id": "algebra", "kind": "smart"}},
		{"negative recency", map[string]any{"name": "x", "subject_id": "algebra", "kind": "smart", "filter": map[string]any{"days_since_review": -1}}},
		{"zero session size", map[string]any{"name": "x", "subject_id": "algebra", "kind": "manual", "problem_ids": []string{p1}, "session_config": map[string]any{"session_size": 0}}},
		{"bad sharing", map[string]any{"name": "x", "subject_id": "algebra", "kind": "manual", "problem_ids": []string{p1}, "sharing": "everyone"}},
		{"foreign problem", map[string]any{"name": "x", "subject_id": "algebra", "kind": "manual", "problem_ids": []string{"not-mine"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, ts.do(alice, http.MethodPost, "/problem-sets", tt.body, nil))
		})
	}
}

func TestUpdateProblemStatus(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")

	var p api.ProblemResponse
	require.Equal(t, http.StatusOK, ts.do(alice, http.MethodPatch, "/problems/"+p1+"/status",
		api.UpdateProblemStatusRequest{Status: "mastered"}, &p))
	assert.Equal(t, "mastered", p.Status)

	assert.Equal(t, http.StatusNotFound, ts.do(bob, http.MethodPatch, "/problems/"+p1+"/status",
		api.UpdateProblemStatusRequest{Status: "wrong"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(alice, http.MethodPatch, "/problems/"+p1+"/status",
		api.UpdateProblemStatusRequest{Status: "forgotten"}, nil))
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	p1 := ts.createProblem(alice, "p1")
	setID := ts.createManualSet(alice, []string{p1}, "")
	require.Equal(t, http.StatusCreated, ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, nil))
	require.Equal(t, http.StatusOK, ts.do(alice, http.MethodPost, "/problem-sets/"+setID+"/sessions", nil, nil))

	count, err := testutil.GatherAndCount(ts.registry, "wrongbook_review_session_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count) // started and resumed series

	count, err = testutil.GatherAndCount(ts.registry, "wrongbook_http_requests_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 3)
}
