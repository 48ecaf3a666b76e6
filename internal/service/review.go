// internal/service/review.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/domain/filter"
	"github.com/wrongbook/backend/internal/domain/problem"
	"github.com/wrongbook/backend/internal/domain/problemset"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
	"github.com/wrongbook/backend/internal/store"
)

// ErrNotFound covers missing resources and resources the caller may not see.
var ErrNotFound = errors.New("not found")

type Outcome string

const (
	OutcomeCompleted                    Outcome = "completed"
	OutcomeCompletedWithDegradedSummary Outcome = "completed_with_degraded_summary"
)

// StartResult is the session a user works on after StartSession.
type StartResult struct {
	Session        *reviewsession.Session
	IsNew          bool
	FirstProblemID string
}

// SessionView is a session with everything needed to render it.
type SessionView struct {
	Session  *reviewsession.Session
	Problems []problem.Problem
	Results  []reviewsession.Result
}

// ProgressInput is a progress report as sent by the client.
type ProgressInput struct {
	ProblemID    string
	WasSkipped   *bool
	WasCorrect   *bool
	CurrentIndex *int
	ElapsedMs    *int64
}

// Completion is the outcome of CompleteSession. The session is closed even
// when Outcome reports a degraded summary.
type Completion struct {
	Session *reviewsession.Session
	Summary reviewsession.Summary
	Outcome Outcome
}

// ReviewService drives review sessions over the store.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

type Option func(*ReviewService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(rs *ReviewService) { rs.now = now }
}

// WithRand makes shuffling deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(rs *ReviewService) { rs.rng = rng }
}

// NewReviewService creates a ReviewService.
func NewReviewService(s store.Store, logger *slog.Logger, opts ...Option) *ReviewService {
	rs := &ReviewService{
		store:  s,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// StartSession resumes the user's active session on the set, or composes a
// new one when there is none.
func (rs *ReviewService) StartSession(ctx context.Context, setID string, user access.User) (*StartResult, error) {
	ps, err := rs.store.GetProblemSet(ctx, setID)
	if err != nil {
		return nil, notFound(err)
	}
	decision := ps.CheckAccess(user)
	if !decision.Allowed {
		return nil, ErrNotFound
	}

	if active, err := rs.findActive(ctx, user.ID, setID); err != nil || active != nil {
		return active, err
	}

	now := rs.now()
	candidates, err := rs.candidates(ctx, ps, now)
	if err != nil {
		return nil, err
	}

	ids, err := rs.compose(candidates, ps.SessionConfig)
	if err != nil {
		return nil, err
	}

	sess, err := reviewsession.NewSession(user.ID, setID, ids, problem.Statuses(candidates), ps.SessionConfig, decision.IsOwner, now)
	if err != nil {
		return nil, err
	}

	if err := rs.store.CreateSession(ctx, sess); err != nil {
		if errors.Is(err, store.ErrActiveSessionExists) {
			// Lost a race with a concurrent start; hand back the winner.
			if active, ferr := rs.findActive(ctx, user.ID, setID); ferr != nil || active != nil {
				return active, ferr
			}
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	rs.logger.Info("session started",
		"session_id", sess.ID,
		"problem_set_id", setID,
		"user_id", user.ID,
		"problems", len(ids),
		"read_only", sess.State.IsReadOnly,
	)

	return &StartResult{Session: sess, IsNew: true, FirstProblemID: ids[0]}, nil
}

func (rs *ReviewService) findActive(ctx context.Context, userID, setID string) (*StartResult, error) {
	active, err := rs.store.FindActiveSession(ctx, userID, setID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return &StartResult{Session: active, IsNew: false, FirstProblemID: active.State.CurrentProblemID()}, nil
}

// candidates returns the problems a new session is composed from: the
// membership list of a manual set, or the filter output of a smart set.
func (rs *ReviewService) candidates(ctx context.Context, ps *problemset.ProblemSet, now time.Time) ([]problem.Problem, error) {
	if ps.Kind == problemset.KindManual {
		problems, err := rs.store.GetProblems(ctx, ps.ProblemIDs)
		if err != nil {
			return nil, fmt.Errorf("load set members: %w", err)
		}
		return problems, nil
	}

	problems, err := rs.store.ListProblemsBySubject(ctx, ps.OwnerID, ps.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject problems: %w", err)
	}
	var cfg filter.Config
	if ps.Filter != nil {
		cfg = *ps.Filter
	}
	return filter.Apply(problems, cfg, now), nil
}

func (rs *ReviewService) compose(problems []problem.Problem, config reviewsession.SessionConfig) ([]string, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return reviewsession.Compose(problems, config, rs.rng)
}

// GetSession returns a session with its problems and result log.
func (rs *ReviewService) GetSession(ctx context.Context, sessionID string, user access.User) (*SessionView, error) {
	sess, err := rs.authorize(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}

	view := &SessionView{Session: sess}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		problems, err := rs.store.GetProblems(gctx, sess.State.ProblemIDs)
		if err != nil {
			return fmt.Errorf("load problems: %w", err)
		}
		view.Problems = problems
		return nil
	})
	g.Go(func() error {
		results, err := rs.store.ListResults(gctx, sess.ID)
		if err != nil {
			return fmt.Errorf("load results: %w", err)
		}
		view.Results = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// RecordProgress applies one progress report to an active session.
func (rs *ReviewService) RecordProgress(ctx context.Context, sessionID string, user access.User, in ProgressInput) (*reviewsession.Session, error) {
	if _, err := rs.authorize(ctx, sessionID, user); err != nil {
		return nil, err
	}

	now := rs.now()
	progress := reviewsession.Progress{
		ProblemID:    in.ProblemID,
		Action:       reviewsession.ActionFromInput(in.WasSkipped, in.WasCorrect),
		CurrentIndex: in.CurrentIndex,
		ElapsedMs:    in.ElapsedMs,
	}

	sess, err := rs.store.UpdateSession(ctx, sessionID, func(s *reviewsession.Session) (*reviewsession.Result, error) {
		return s.Apply(progress, now)
	})
	if err != nil {
		return nil, rs.mutationError(err)
	}

	if progress.Action.Kind == reviewsession.ActionAnswer && !sess.State.IsReadOnly {
		if err := rs.store.TouchProblemReviewed(ctx, progress.ProblemID, now); err != nil {
			rs.logger.Warn("failed to update last reviewed date",
				"session_id", sessionID,
				"problem_id", progress.ProblemID,
				"error", err,
			)
		}
	}

	rs.logger.Debug("progress recorded",
		"session_id", sessionID,
		"problem_id", progress.ProblemID,
		"action", progress.Action.Kind.String(),
	)
	return sess, nil
}

// CompleteSession closes the session and summarizes it. Closing is final;
// a failure while building the summary only degrades the summary.
func (rs *ReviewService) CompleteSession(ctx context.Context, sessionID string, user access.User) (*Completion, error) {
	if _, err := rs.authorize(ctx, sessionID, user); err != nil {
		return nil, err
	}

	now := rs.now()
	sess, err := rs.store.UpdateSession(ctx, sessionID, func(s *reviewsession.Session) (*reviewsession.Result, error) {
		return nil, s.Complete(now)
	})
	if err != nil {
		return nil, rs.mutationError(err)
	}

	completion := &Completion{Session: sess, Outcome: OutcomeCompleted}

	results, err := rs.store.ListResults(ctx, sessionID)
	if err != nil {
		rs.logger.Error("failed to load results for summary", "session_id", sessionID, "error", err)
		completion.Outcome = OutcomeCompletedWithDegradedSummary
		results = nil
	}

	var live map[string]problem.Status
	problems, err := rs.store.GetProblems(ctx, sess.State.ProblemIDs)
	if err != nil {
		rs.logger.Error("failed to load live statuses for summary", "session_id", sessionID, "error", err)
		completion.Outcome = OutcomeCompletedWithDegradedSummary
	} else {
		live = problem.Statuses(problems)
	}

	completion.Summary = reviewsession.Summarize(sess.State, results, live)

	rs.logger.Info("session completed",
		"session_id", sessionID,
		"outcome", string(completion.Outcome),
		"answered", completion.Summary.AnsweredCount,
		"accuracy", completion.Summary.Accuracy,
	)
	return completion, nil
}

// DeleteSession abandons an active session without summarizing it.
func (rs *ReviewService) DeleteSession(ctx context.Context, sessionID string, user access.User) (*reviewsession.Session, error) {
	if _, err := rs.authorize(ctx, sessionID, user); err != nil {
		return nil, err
	}

	now := rs.now()
	sess, err := rs.store.UpdateSession(ctx, sessionID, func(s *reviewsession.Session) (*reviewsession.Result, error) {
		return nil, s.Abandon(now)
	})
	if err != nil {
		return nil, rs.mutationError(err)
	}

	rs.logger.Info("session deleted", "session_id", sessionID)
	return sess, nil
}

// authorize loads a session the user owns and may still open through its
// problem set. Anything else is reported as ErrNotFound.
func (rs *ReviewService) authorize(ctx context.Context, sessionID string, user access.User) (*reviewsession.Session, error) {
	sess, err := rs.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, notFound(err)
	}
	if user.ID == "" || sess.UserID != user.ID {
		return nil, ErrNotFound
	}

	ps, err := rs.store.GetProblemSet(ctx, sess.ProblemSetID)
	if err != nil {
		return nil, notFound(err)
	}
	if !ps.CheckAccess(user).Allowed {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (rs *ReviewService) mutationError(err error) error {
	if errors.Is(err, reviewsession.ErrSessionClosed) {
		return ErrNotFound
	}
	return notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
