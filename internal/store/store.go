package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/wrongbook/backend/internal/domain/problem"
	"github.com/wrongbook/backend/internal/domain/problemset"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrActiveSessionExists = errors.New("an active session already exists for this problem set")
)

// Store is everything the review engine persists or reads.
type Store interface {
	ProblemStore
	ProblemSetStore
	SessionStore
}

type ProblemStore interface {
	SaveProblem(ctx context.Context, p *problem.Problem) error
	// GetProblems returns the problems in the order of ids. Unknown ids are skipped.
	GetProblems(ctx context.Context, ids []string) ([]problem.Problem, error)
	// ListProblemsBySubject returns the owner's problems of a subject in insertion order.
	ListProblemsBySubject(ctx context.Context, ownerID, subjectID string) ([]problem.Problem, error)
	UpdateProblemStatus(ctx context.Context, problemID string, status problem.Status) error
	TouchProblemReviewed(ctx context.Context, problemID string, at time.Time) error
}

type ProblemSetStore interface {
	SaveProblemSet(ctx context.Context, ps *problemset.ProblemSet) error
	GetProblemSet(ctx context.Context, id string) (*problemset.ProblemSet, error)
}

// SessionMutation changes a loaded session and returns the result to append,
// if any. Returning an error aborts the update.
type SessionMutation func(s *reviewsession.Session) (*reviewsession.Result, error)

type SessionStore interface {
	// CreateSession fails with ErrActiveSessionExists when the user already
	// has an active session for the set.
	CreateSession(ctx context.Context, s *reviewsession.Session) error
	GetSession(ctx context.Context, id string) (*reviewsession.Session, error)
	// FindActiveSession returns the most recent active session of the user for the set.
	FindActiveSession(ctx context.Context, userID, problemSetID string) (*reviewsession.Session, error)
	// UpdateSession runs read, mutate and write of one session atomically.
	UpdateSession(ctx context.Context, id string, mutate SessionMutation) (*reviewsession.Session, error)
	ListResults(ctx context.Context, sessionID string) ([]reviewsession.Result, error)
}
