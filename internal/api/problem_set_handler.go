package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/domain/filter"
	"github.com/wrongbook/backend/internal/domain/problemset"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateProblemSetRequest struct {
	Name          string                       `json:"name" example:"Quadratics, week 3"`
	SubjectID     string                       `json:"subject_id" example:"algebra"`
	Kind          string                       `json:"kind" example:"manual"`
	ProblemIDs    []string                     `json:"problem_ids,omitempty"`
	Filter        *filter.Config               `json:"filter,omitempty"`
	SessionConfig *reviewsession.SessionConfig `json:"session_config,omitempty"`
	Sharing       string                       `json:"sharing,omitempty" example:"private"`
	SharedWith    []string                     `json:"shared_with,omitempty"`
}

func (r *CreateProblemSetRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.SubjectID == "" {
		return errors.New("subject_id is required")
	}
	switch problemset.Kind(r.Kind) {
	case problemset.KindManual:
		if len(r.ProblemIDs) == 0 {
			return errors.New("problem_ids is required for a manual set")
		}
	case problemset.KindSmart:
		if r.Filter == nil {
			return errors.New("filter is required for a smart set")
		}
		if err := r.Filter.Validate(); err != nil {
			return err
		}
	default:
		return errors.New("invalid kind: must be manual or smart")
	}
	if r.SessionConfig != nil {
		if err := r.SessionConfig.Validate(); err != nil {
			return err
		}
	}
	if _, err := access.ParseSharingLevel(r.Sharing); err != nil {
		return err
	}
	return nil
}

type ProblemSetResponse struct {
	ID            string                      `json:"id"`
	OwnerID       string                      `json:"owner_id"`
	Name          string                      `json:"name"`
	SubjectID     string                      `json:"subject_id"`
	Kind          string                      `json:"kind"`
	ProblemIDs    []string                    `json:"problem_ids"`
	Filter        *filter.Config              `json:"filter,omitempty"`
	SessionConfig reviewsession.SessionConfig `json:"session_config"`
	Sharing       string                      `json:"sharing"`
	SharedWith    []string                    `json:"shared_with,omitempty"`
	IsOwner       bool                        `json:"is_owner"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func toProblemSetResponse(ps *problemset.ProblemSet, isOwner bool) ProblemSetResponse {
	resp := ProblemSetResponse{
		ID:            ps.ID,
		OwnerID:       ps.OwnerID,
		Name:          ps.Name,
		SubjectID:     ps.SubjectID,
		Kind:          string(ps.Kind),
		ProblemIDs:    ps.ProblemIDs,
		Filter:        ps.Filter,
		SessionConfig: ps.SessionConfig,
		Sharing:       string(ps.Sharing),
		IsOwner:       isOwner,
		CreatedAt:     ps.CreatedAt,
	}
	if resp.ProblemIDs == nil {
		resp.ProblemIDs = []string{}
	}
	// Only the owner sees who the set is shared with.
	if isOwner {
		resp.SharedWith = ps.SharedWith
	}
	return resp
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createProblemSet creates a manual or smart problem set.
// @Summary      Create a problem set
// @Description  A manual set lists its problems; a smart set selects them with a filter at every session start.
// @Tags         Problem sets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      CreateProblemSetRequest  true  "Problem set to create"
// @Success      201   {object}  ProblemSetResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /problem-sets [post]
func (h *Handler) createProblemSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(r)

	var req CreateProblemSetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	config := reviewsession.DefaultConfig()
	if req.SessionConfig != nil {
		config = *req.SessionConfig
	}

	var (
		ps  *problemset.ProblemSet
		err error
	)
	if problemset.Kind(req.Kind) == problemset.KindManual {
		if !h.ownsProblems(w, r, req.ProblemIDs, req.SubjectID) {
			return
		}
		ps, err = problemset.NewManual(user.ID, req.Name, req.SubjectID, req.ProblemIDs, config)
	} else {
		ps, err = problemset.NewSmart(user.ID, req.Name, req.SubjectID, *req.Filter, config)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	level, _ := access.ParseSharingLevel(req.Sharing)
	ps.Share(level, req.SharedWith)

	if err := h.store.SaveProblemSet(ctx, ps); err != nil {
		h.logger.Error("failed to save problem set", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save problem set")
		return
	}

	respondJSON(w, http.StatusCreated, toProblemSetResponse(ps, true))
}

// ownsProblems checks that every id names one of the caller's problems in
// the subject. It writes a 400 response and returns false otherwise.
func (h *Handler) ownsProblems(w http.ResponseWriter, r *http.Request, ids []string, subjectID string) bool {
	problems, err := h.store.GetProblems(r.Context(), ids)
	if h.handleError(w, err, "problem") {
		return false
	}

	owned := make(map[string]bool, len(problems))
	for _, p := range problems {
		if p.OwnerID == currentUser(r).ID && p.SubjectID == subjectID {
			owned[p.ID] = true
		}
	}
	for _, pid := range ids {
		if !owned[pid] {
			respondError(w, http.StatusBadRequest, "unknown problem "+pid)
			return false
		}
	}
	return true
}

// getProblemSet returns a problem set the caller may open.
// @Summary      Get a problem set
// @Tags         Problem sets
// @Produce      json
// @Security     BearerAuth
// @Param        setID  path      string  true  "Problem set ID"
// @Success      200    {object}  ProblemSetResponse
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /problem-sets/{setID} [get]
func (h *Handler) getProblemSet(w http.ResponseWriter, r *http.Request) {
	ps, err := h.store.GetProblemSet(r.Context(), r.PathValue("setID"))
	if h.handleError(w, err, "problem set") {
		return
	}

	decision := ps.CheckAccess(currentUser(r))
	if !decision.Allowed {
		respondError(w, http.StatusNotFound, "problem set not found")
		return
	}

	respondJSON(w, http.StatusOK, toProblemSetResponse(ps, decision.IsOwner))
}
