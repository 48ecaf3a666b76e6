package reviewsession

import (
	"fmt"
	"time"

	"github.com/wrongbook/backend/internal/domain/problem"
	"github.com/wrongbook/backend/internal/id"
)

// State is the persisted progress of a session. It is stored as a single
// structured blob; every change goes through Project so the completed and
// skipped sets stay duplicate-free and disjoint.
type State struct {
	ProblemIDs          []string                  `json:"problem_ids"`
	CurrentIndex        int                       `json:"current_index"`
	CompletedProblemIDs []string                  `json:"completed_problem_ids"`
	SkippedProblemIDs   []string                  `json:"skipped_problem_ids"`
	InitialStatuses     map[string]problem.Status `json:"initial_statuses"`
	ElapsedMs           int64                     `json:"elapsed_ms"`
	IsReadOnly          bool                      `json:"is_read_only"`
	Config              SessionConfig             `json:"session_config"`
}

// Session is one attempt at working through a problem set.
type Session struct {
	ID           string
	UserID       string
	ProblemSetID string
	State        State
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// Result is one recorded outcome. Results are append-only.
type Result struct {
	ID         int64
	SessionID  string
	ProblemID  string
	WasCorrect *bool // nil for skips
	WasSkipped bool
	CreatedAt  time.Time
}

type ActionKind int

const (
	ActionHeartbeat ActionKind = iota // position/timer save, no outcome
	ActionSkip
	ActionAnswer
)

func (k ActionKind) String() string {
	switch k {
	case ActionSkip:
		return "skip"
	case ActionAnswer:
		return "answer"
	}
	return "heartbeat"
}

type Action struct {
	Kind       ActionKind
	WasCorrect bool // only meaningful for ActionAnswer
}

// ActionFromInput derives the action from the loosely typed client fields.
// An explicit skip wins; an explicit non-skip with a verdict is an answer;
// everything else only saves position and time.
func ActionFromInput(wasSkipped, wasCorrect *bool) Action {
	switch {
	case wasSkipped != nil && *wasSkipped:
		return Action{Kind: ActionSkip}
	case wasSkipped != nil && wasCorrect != nil:
		return Action{Kind: ActionAnswer, WasCorrect: *wasCorrect}
	default:
		return Action{Kind: ActionHeartbeat}
	}
}

// Progress is a single client progress report.
type Progress struct {
	ProblemID    string
	Action       Action
	CurrentIndex *int
	ElapsedMs    *int64
}

// NewSession creates an active session over problemIDs, snapshotting the
// status of each selected problem from statuses.
func NewSession(userID, problemSetID string, problemIDs []string, statuses map[string]problem.Status, config SessionConfig, isOwner bool, now time.Time) (*Session, error) {
	if len(problemIDs) == 0 {
		return nil, ErrNoMatchingProblems
	}

	initial := make(map[string]problem.Status, len(problemIDs))
	for _, pid := range problemIDs {
		if s, ok := statuses[pid]; ok {
			initial[pid] = s
		}
	}

	return &Session{
		ID:           id.GenerateID(),
		UserID:       userID,
		ProblemSetID: problemSetID,
		State: State{
			ProblemIDs:          append([]string(nil), problemIDs...),
			CurrentIndex:        0,
			CompletedProblemIDs: []string{},
			SkippedProblemIDs:   []string{},
			InitialStatuses:     initial,
			IsReadOnly:          !isOwner,
			Config:              config,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Project applies a progress report to a state without side effects and
// returns the resulting state. The input state is never modified.
func Project(s State, p Progress) (State, error) {
	if p.ProblemID != "" && !s.Contains(p.ProblemID) {
		return s, ErrInvalidProblemID
	}
	if p.Action.Kind != ActionHeartbeat && p.ProblemID == "" {
		return s, ErrInvalidProblemID
	}
	if p.CurrentIndex != nil && *p.CurrentIndex < 0 {
		return s, fmt.Errorf("%w: current index %d is negative", ErrInvalidInput, *p.CurrentIndex)
	}
	if p.ElapsedMs != nil && *p.ElapsedMs < 0 {
		return s, fmt.Errorf("%w: elapsed time %d is negative", ErrInvalidInput, *p.ElapsedMs)
	}

	next := s.clone()

	if p.CurrentIndex != nil {
		next.CurrentIndex = min(*p.CurrentIndex, len(next.ProblemIDs)-1)
	}
	if p.ElapsedMs != nil && *p.ElapsedMs > next.ElapsedMs {
		next.ElapsedMs = *p.ElapsedMs
	}

	switch p.Action.Kind {
	case ActionSkip:
		// An answer already on record stands.
		if !next.IsCompleted(p.ProblemID) {
			next.SkippedProblemIDs = addID(next.SkippedProblemIDs, p.ProblemID)
		}
	case ActionAnswer:
		next.CompletedProblemIDs = addID(next.CompletedProblemIDs, p.ProblemID)
		next.SkippedProblemIDs = removeID(next.SkippedProblemIDs, p.ProblemID)
	}

	return next, nil
}

// Apply records progress on an active session and returns the result to
// append to the session log, or nil when nothing new was recorded.
func (s *Session) Apply(p Progress, now time.Time) (*Result, error) {
	if !s.IsActive {
		return nil, ErrSessionClosed
	}

	alreadyAnswered := s.State.IsCompleted(p.ProblemID)
	next, err := Project(s.State, p)
	if err != nil {
		return nil, err
	}
	s.State = next
	s.UpdatedAt = now

	switch p.Action.Kind {
	case ActionAnswer:
		correct := p.Action.WasCorrect
		return &Result{SessionID: s.ID, ProblemID: p.ProblemID, WasCorrect: &correct, CreatedAt: now}, nil
	case ActionSkip:
		if alreadyAnswered {
			return nil, nil
		}
		return &Result{SessionID: s.ID, ProblemID: p.ProblemID, WasSkipped: true, CreatedAt: now}, nil
	}
	return nil, nil
}

// Complete closes the session. It is terminal.
func (s *Session) Complete(now time.Time) error {
	if !s.IsActive {
		return ErrSessionClosed
	}
	s.IsActive = false
	s.UpdatedAt = now
	s.CompletedAt = &now
	return nil
}

// Abandon soft-deletes the session without completing it.
func (s *Session) Abandon(now time.Time) error {
	if !s.IsActive {
		return ErrSessionClosed
	}
	s.IsActive = false
	s.UpdatedAt = now
	return nil
}

// CurrentProblemID is the problem the session is positioned on.
func (s State) CurrentProblemID() string {
	if len(s.ProblemIDs) == 0 {
		return ""
	}
	return s.ProblemIDs[max(0, min(s.CurrentIndex, len(s.ProblemIDs)-1))]
}

// IsAtLeadingEdge reports whether the user is at the furthest point reached,
// i.e. the problem after the current one has not been answered yet.
func IsAtLeadingEdge(s State) bool {
	next := s.CurrentIndex + 1
	if next >= len(s.ProblemIDs) {
		return true
	}
	return !s.IsCompleted(s.ProblemIDs[next])
}

func (s State) Contains(problemID string) bool {
	return indexOf(s.ProblemIDs, problemID) >= 0
}

func (s State) IsCompleted(problemID string) bool {
	return indexOf(s.CompletedProblemIDs, problemID) >= 0
}

func (s State) IsSkipped(problemID string) bool {
	return indexOf(s.SkippedProblemIDs, problemID) >= 0
}

func (s State) clone() State {
	c := s
	c.ProblemIDs = append([]string(nil), s.ProblemIDs...)
	c.CompletedProblemIDs = append([]string{}, s.CompletedProblemIDs...)
	c.SkippedProblemIDs = append([]string{}, s.SkippedProblemIDs...)
	c.InitialStatuses = make(map[string]problem.Status, len(s.InitialStatuses))
	for k, v := range s.InitialStatuses {
		c.InitialStatuses[k] = v
	}
	return c
}

func indexOf(ids []string, v string) int {
	for i, x := range ids {
		if x == v {
			return i
		}
	}
	return -1
}

func addID(ids []string, v string) []string {
	if indexOf(ids, v) >= 0 {
		return ids
	}
	return append(ids, v)
}

func removeID(ids []string, v string) []string {
	i := indexOf(ids, v)
	if i < 0 {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}
