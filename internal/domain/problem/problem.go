package problem

import (
	"errors"
	"fmt"
	"time"

	"github.com/wrongbook/backend/internal/id"
)

type Status string

const (
	StatusWrong       Status = "wrong"
	StatusNeedsReview Status = "needs_review"
	StatusMastered    Status = "mastered"
)

// Rank orders statuses from weakest to strongest. Unknown statuses rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusWrong:
		return 0
	case StatusNeedsReview:
		return 1
	case StatusMastered:
		return 2
	}
	return -1
}

func (s Status) Valid() bool {
	return s.Rank() >= 0
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q: must be wrong, needs_review or mastered", v)
	}
	return s, nil
}

type Type string

const (
	TypeMCQ      Type = "mcq"
	TypeShort    Type = "short"
	TypeExtended Type = "extended"
	TypeOther    Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMCQ, TypeShort, TypeExtended, TypeOther:
		return true
	}
	return false
}

// Problem is a single notebook entry. The review engine only reads it and
// writes Status and LastReviewedAt through the store.
type Problem struct {
	ID             string
	OwnerID        string
	SubjectID      string
	Title          string
	ProblemType    Type
	Status         Status
	TagIDs         []string
	LastReviewedAt *time.Time // nil = never reviewed
	CreatedAt      time.Time
}

func New(ownerID, subjectID, title string, problemType Type, tagIDs []string) (*Problem, error) {
	if ownerID == "" {
		return nil, errors.New("problem owner cannot be empty")
	}
	if subjectID == "" {
		return nil, errors.New("problem subject cannot be empty")
	}
	if title == "" {
		return nil, errors.New("problem title cannot be empty")
	}
	if problemType == "" {
		problemType = TypeOther
	}
	if !problemType.Valid() {
		return nil, fmt.Errorf("invalid problem type %q", problemType)
	}

	return &Problem{
		ID:          id.GenerateID(),
		OwnerID:     ownerID,
		SubjectID:   subjectID,
		Title:       title,
		ProblemType: problemType,
		Status:      StatusWrong,
		TagIDs:      append([]string(nil), tagIDs...),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// HasAnyTag reports whether the problem carries at least one of tagIDs.
func (p *Problem) HasAnyTag(tagIDs []string) bool {
	for _, want := range tagIDs {
		for _, have := range p.TagIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Statuses indexes the status of each problem by id.
func Statuses(problems []Problem) map[string]Status {
	out := make(map[string]Status, len(problems))
	for _, p := range problems {
		out[p.ID] = p.Status
	}
	return out
}
