package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/wrongbook/backend/internal/domain/problem"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
	"github.com/wrongbook/backend/internal/service"
)

// ── Request / Response types ────────────────────────────────────────────────

type SessionResponse struct {
	ID                  string                      `json:"id"`
	UserID              string                      `json:"user_id"`
	ProblemSetID        string                      `json:"problem_set_id"`
	ProblemIDs          []string                    `json:"problem_ids"`
	CurrentIndex        int                         `json:"current_index"`
	CurrentProblemID    string                      `json:"current_problem_id"`
	IsAtLeadingEdge     bool                        `json:"is_at_leading_edge"`
	CompletedProblemIDs []string                    `json:"completed_problem_ids"`
	SkippedProblemIDs   []string                    `json:"skipped_problem_ids"`
	InitialStatuses     map[string]problem.Status   `json:"initial_statuses"`
	ElapsedMs           int64                       `json:"elapsed_ms"`
	IsReadOnly          bool                        `json:"is_read_only"`
	IsActive            bool                        `json:"is_active"`
	SessionConfig       reviewsession.SessionConfig `json:"session_config"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	CompletedAt         *time.Time                  `json:"completed_at,omitempty"`
}

type StartSessionResponse struct {
	Session        SessionResponse `json:"session"`
	IsNew          bool            `json:"isNew"`
	FirstProblemID string          `json:"firstProblemId"`
}

type ResultResponse struct {
	ID         int64     `json:"id"`
	ProblemID  string    `json:"problem_id"`
	WasCorrect *bool     `json:"was_correct"`
	WasSkipped bool      `json:"was_skipped"`
	CreatedAt  time.Time `json:"created_at"`
}

type GetSessionResponse struct {
	Session  SessionResponse   `json:"session"`
	Problems []ProblemResponse `json:"problems"`
	Results  []ResultResponse  `json:"results"`
}

// RecordProgressRequest uses the field names of the browser session driver.
type RecordProgressRequest struct {
	ProblemID    string `json:"problemId"`
	WasSkipped   *bool  `json:"wasSkipped"`
	WasCorrect   *bool  `json:"wasCorrect"`
	CurrentIndex *int   `json:"currentIndex"`
	ElapsedMs    *int64 `json:"elapsedMs"`
}

// Validate rejects malformed numbers. Whether problemId belongs to the
// session is checked against the session state.
func (r *RecordProgressRequest) Validate() error {
	if r.CurrentIndex != nil && *r.CurrentIndex < 0 {
		return errors.New("currentIndex must not be negative")
	}
	if r.ElapsedMs != nil && *r.ElapsedMs < 0 {
		return errors.New("elapsedMs must not be negative")
	}
	return nil
}

type CompleteSessionResponse struct {
	Session SessionResponse       `json:"session"`
	Summary reviewsession.Summary `json:"summary"`
	Outcome string                `json:"outcome" example:"completed"`
}

type DeleteSessionResponse struct {
	SessionID string `json:"session_id"`
	IsActive  bool   `json:"is_active"`
}

func toSessionResponse(s *reviewsession.Session) SessionResponse {
	return SessionResponse{
		ID:                  s.ID,
		UserID:              s.UserID,
		ProblemSetID:        s.ProblemSetID,
		ProblemIDs:          s.State.ProblemIDs,
		CurrentIndex:        s.State.CurrentIndex,
		CurrentProblemID:    s.State.CurrentProblemID(),
		IsAtLeadingEdge:     reviewsession.IsAtLeadingEdge(s.State),
		CompletedProblemIDs: s.State.CompletedProblemIDs,
		SkippedProblemIDs:   s.State.SkippedProblemIDs,
		InitialStatuses:     s.State.InitialStatuses,
		ElapsedMs:           s.State.ElapsedMs,
		IsReadOnly:          s.State.IsReadOnly,
		IsActive:            s.IsActive,
		SessionConfig:       s.State.Config,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		CompletedAt:         s.CompletedAt,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// startSession starts or resumes a review session.
// @Summary      Start or resume a review session
// @Description  Resumes the caller's active session on the set, or composes a new one from the set's problems.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        setID  path      string  true  "Problem set ID"
// @Success      201    {object}  StartSessionResponse  "new session"
// @Success      200    {object}  StartSessionResponse  "resumed session"
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string  "no problems match"
// @Failure      500    {object}  map[string]string
// @Router       /problem-sets/{setID}/sessions [post]
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.reviews.StartSession(r.Context(), r.PathValue("setID"), currentUser(r))
	if h.handleError(w, err, "problem set") {
		return
	}

	status := http.StatusOK
	if res.IsNew {
		status = http.StatusCreated
		h.metrics.sessionEvent("started")
	} else {
		h.metrics.sessionEvent("resumed")
	}

	respondJSON(w, status, StartSessionResponse{
		Session:        toSessionResponse(res.Session),
		IsNew:          res.IsNew,
		FirstProblemID: res.FirstProblemID,
	})
}

// getSession returns a session with its problems and results.
// @Summary      Get a review session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  GetSessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.reviews.GetSession(r.Context(), r.PathValue("sessionID"), currentUser(r))
	if h.handleError(w, err, "session") {
		return
	}

	problems := make([]ProblemResponse, len(view.Problems))
	for i, p := range view.Problems {
		problems[i] = toProblemResponse(p)
	}
	results := make([]ResultResponse, len(view.Results))
	for i, res := range view.Results {
		results[i] = ResultResponse{
			ID:         res.ID,
			ProblemID:  res.ProblemID,
			WasCorrect: res.WasCorrect,
			WasSkipped: res.WasSkipped,
			CreatedAt:  res.CreatedAt,
		}
	}

	respondJSON(w, http.StatusOK, GetSessionResponse{
		Session:  toSessionResponse(view.Session),
		Problems: problems,
		Results:  results,
	})
}

// recordProgress records an answer, a skip or a heartbeat.
// @Summary      Record session progress
// @Description  wasSkipped=true records a skip; wasSkipped=false with wasCorrect records an answer; anything else only saves position and time.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string                 true  "Session ID"
// @Param        body       body      RecordProgressRequest  true  "Progress report"
// @Success      200        {object}  SessionResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /sessions/{sessionID}/progress [post]
func (h *Handler) recordProgress(w http.ResponseWriter, r *http.Request) {
	var req RecordProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.reviews.RecordProgress(r.Context(), r.PathValue("sessionID"), currentUser(r), service.ProgressInput{
		ProblemID:    req.ProblemID,
		WasSkipped:   req.WasSkipped,
		WasCorrect:   req.WasCorrect,
		CurrentIndex: req.CurrentIndex,
		ElapsedMs:    req.ElapsedMs,
	})
	if h.handleError(w, err, "session") {
		return
	}

	h.metrics.sessionEvent(reviewsession.ActionFromInput(req.WasSkipped, req.WasCorrect).Kind.String())
	respondJSON(w, http.StatusOK, toSessionResponse(sess))
}

// completeSession closes a session and returns its summary.
// @Summary      Complete a review session
// @Description  Closes the session. The outcome is completed_with_degraded_summary when the summary could only be partially computed.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  CompleteSessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /sessions/{sessionID}/complete [post]
func (h *Handler) completeSession(w http.ResponseWriter, r *http.Request) {
	c, err := h.reviews.CompleteSession(r.Context(), r.PathValue("sessionID"), currentUser(r))
	if h.handleError(w, err, "session") {
		return
	}

	h.metrics.sessionEvent(string(c.Outcome))
	respondJSON(w, http.StatusOK, CompleteSessionResponse{
		Session: toSessionResponse(c.Session),
		Summary: c.Summary,
		Outcome: string(c.Outcome),
	})
}

// deleteSession abandons a session.
// @Summary      Delete a review session
// @Description  Soft-deletes the session without computing a summary.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  DeleteSessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /sessions/{sessionID} [delete]
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.reviews.DeleteSession(r.Context(), r.PathValue("sessionID"), currentUser(r))
	if h.handleError(w, err, "session") {
		return
	}

	h.metrics.sessionEvent("deleted")
	respondJSON(w, http.StatusOK, DeleteSessionResponse{SessionID: sess.ID, IsActive: sess.IsActive})
}
