package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/wrongbook/backend/internal/domain/problem"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateProblemRequest struct {
	SubjectID   string   `json:"subject_id" example:"algebra"`
	Title       string   `json:"title" example:"Solve x^2 - 5x + 6 = 0"`
	ProblemType string   `json:"problem_type" example:"short"`
	Status      string   `json:"status,omitempty" example:"wrong"`
	TagIDs      []string `json:"tag_ids,omitempty"`
}

func (r *CreateProblemRequest) Validate() error {
	if r.SubjectID == "" {
		return errors.New("subject_id is required")
	}
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.ProblemType != "" && !problem.Type(r.ProblemType).Valid() {
		return errors.New("invalid problem_type: must be mcq, short, extended or other")
	}
	if r.Status != "" {
		if _, err := problem.ParseStatus(r.Status); err != nil {
			return err
		}
	}
	return nil
}

type UpdateProblemStatusRequest struct {
	Status string `json:"status" example:"mastered"`
}

func (r *UpdateProblemStatusRequest) Validate() error {
	_, err := problem.ParseStatus(r.Status)
	return err
}

type ProblemResponse struct {
	ID             string     `json:"id"`
	SubjectID      string     `json:"subject_id"`
	Title          string     `json:"title"`
	ProblemType    string     `json:"problem_type"`
	Status         string     `json:"status"`
	TagIDs         []string   `json:"tag_ids"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toProblemResponse(p problem.Problem) ProblemResponse {
	tags := p.TagIDs
	if tags == nil {
		tags = []string{}
	}
	return ProblemResponse{
		ID:             p.ID,
		SubjectID:      p.SubjectID,
		Title:          p.Title,
		ProblemType:    string(p.ProblemType),
		Status:         string(p.Status),
		TagIDs:         tags,
		LastReviewedAt: p.LastReviewedAt,
		CreatedAt:      p.CreatedAt,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createProblem adds a problem to the caller's notebook.
// @Summary      Create a problem
// @Tags         Problems
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      CreateProblemRequest  true  "Problem to create"
// @Success      201   {object}  ProblemResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /problems [post]
func (h *Handler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req CreateProblemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := problem.New(currentUser(r).ID, req.SubjectID, req.Title, problem.Type(req.ProblemType), req.TagIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != "" {
		p.Status = problem.Status(req.Status)
	}

	if err := h.store.SaveProblem(r.Context(), p); err != nil {
		h.logger.Error("failed to save problem", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save problem")
		return
	}

	respondJSON(w, http.StatusCreated, toProblemResponse(*p))
}

// updateProblemStatus changes the status of one of the caller's problems.
// @Summary      Update a problem's status
// @Description  Status edits made while a session is open show up in that session's summary.
// @Tags         Problems
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        problemID  path      string                      true  "Problem ID"
// @Param        body       body      UpdateProblemStatusRequest  true  "New status"
// @Success      200        {object}  ProblemResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /problems/{problemID}/status [patch]
func (h *Handler) updateProblemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	problemID := r.PathValue("problemID")

	var req UpdateProblemStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	found, err := h.store.GetProblems(ctx, []string{problemID})
	if h.handleError(w, err, "problem") {
		return
	}
	if len(found) == 0 || found[0].OwnerID != currentUser(r).ID {
		respondError(w, http.StatusNotFound, "problem not found")
		return
	}

	status := problem.Status(req.Status)
	if h.handleError(w, h.store.UpdateProblemStatus(ctx, problemID, status), "problem") {
		return
	}

	p := found[0]
	p.Status = status
	respondJSON(w, http.StatusOK, toProblemResponse(p))
}
