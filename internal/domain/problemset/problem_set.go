package problemset

import (
	"errors"
	"fmt"
	"time"

	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/domain/filter"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
	"github.com/wrongbook/backend/internal/id"
)

type Kind string

const (
	KindManual Kind = "manual" // fixed membership list
	KindSmart  Kind = "smart"  // evaluated from Filter on every session start
)

type ProblemSet struct {
	ID            string
	OwnerID       string
	Name          string
	SubjectID     string
	Kind          Kind
	ProblemIDs    []string       // manual sets, insertion order
	Filter        *filter.Config // smart sets
	SessionConfig reviewsession.SessionConfig
	Sharing       access.SharingLevel
	SharedWith    []string // emails, limited sharing only
	CreatedAt     time.Time
}

func NewManual(ownerID, name, subjectID string, problemIDs []string, config reviewsession.SessionConfig) (*ProblemSet, error) {
	if len(problemIDs) == 0 {
		return nil, errors.New("manual problem set needs at least one problem")
	}
	ps := newSet(ownerID, name, subjectID, KindManual, config)
	ps.ProblemIDs = dedupe(problemIDs)
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

func NewSmart(ownerID, name, subjectID string, cfg filter.Config, config reviewsession.SessionConfig) (*ProblemSet, error) {
	ps := newSet(ownerID, name, subjectID, KindSmart, config)
	ps.Filter = &cfg
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

func newSet(ownerID, name, subjectID string, kind Kind, config reviewsession.SessionConfig) *ProblemSet {
	return &ProblemSet{
		ID:            id.GenerateID(),
		OwnerID:       ownerID,
		Name:          name,
		SubjectID:     subjectID,
		Kind:          kind,
		SessionConfig: config,
		Sharing:       access.SharingPrivate,
		CreatedAt:     time.Now().UTC(),
	}
}

func (ps *ProblemSet) Validate() error {
	if ps.OwnerID == "" {
		return errors.New("problem set owner cannot be empty")
	}
	if ps.Name == "" {
		return errors.New("problem set name cannot be empty")
	}
	if err := ps.SessionConfig.Validate(); err != nil {
		return err
	}
	switch ps.Kind {
	case KindManual:
	case KindSmart:
		if ps.SubjectID == "" {
			return errors.New("smart problem set needs a subject")
		}
		if ps.Filter == nil {
			return errors.New("smart problem set needs a filter")
		}
		if err := ps.Filter.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid problem set kind %q", ps.Kind)
	}
	return nil
}

// Share sets the sharing level and the share list. The list is only kept for
// limited sharing.
func (ps *ProblemSet) Share(level access.SharingLevel, emails []string) {
	ps.Sharing = level
	ps.SharedWith = nil
	if level != access.SharingLimited {
		return
	}
	for _, e := range emails {
		if e = access.NormalizeEmail(e); e != "" {
			ps.SharedWith = append(ps.SharedWith, e)
		}
	}
	ps.SharedWith = dedupe(ps.SharedWith)
}

// CheckAccess runs the access guard for user against this set.
func (ps *ProblemSet) CheckAccess(user access.User) access.Decision {
	return access.Check(ps.OwnerID, ps.Sharing, ps.SharedWith, user)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
