// Package filter selects the problems eligible for a smart problem set.
package filter

import (
	"errors"
	"fmt"
	"time"

	"github.com/wrongbook/backend/internal/domain/problem"
)

const day = 24 * time.Hour

// Config describes eligibility. Empty slices place no restriction.
type Config struct {
	TagIDs               []string         `json:"tag_ids"`
	Statuses             []problem.Status `json:"statuses"`
	ProblemTypes         []problem.Type   `json:"problem_types"`
	DaysSinceReview      *int             `json:"days_since_review"` // nil = no recency constraint
	IncludeNeverReviewed bool             `json:"include_never_reviewed"`
}

// Validate rejects configs that Apply must never see.
func (c Config) Validate() error {
	if c.DaysSinceReview != nil && *c.DaysSinceReview < 0 {
		return errors.New("days_since_review cannot be negative")
	}
	for _, s := range c.Statuses {
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", s)
		}
	}
	for _, t := range c.ProblemTypes {
		if !t.Valid() {
			return fmt.Errorf("invalid problem type %q", t)
		}
	}
	return nil
}

// Apply returns the problems matching cfg, in input order.
func Apply(problems []problem.Problem, cfg Config, now time.Time) []problem.Problem {
	out := make([]problem.Problem, 0, len(problems))
	for _, p := range problems {
		if Matches(p, cfg, now) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single problem passes every criterion of cfg.
func Matches(p problem.Problem, cfg Config, now time.Time) bool {
	if len(cfg.TagIDs) > 0 && !p.HasAnyTag(cfg.TagIDs) {
		return false
	}
	if len(cfg.Statuses) > 0 && !contains(cfg.Statuses, p.Status) {
		return false
	}
	if len(cfg.ProblemTypes) > 0 && !contains(cfg.ProblemTypes, p.ProblemType) {
		return false
	}
	return recent(p, cfg, now)
}

func recent(p problem.Problem, cfg Config, now time.Time) bool {
	if cfg.DaysSinceReview == nil {
		return true
	}
	if p.LastReviewedAt == nil {
		return cfg.IncludeNeverReviewed
	}
	return now.Sub(*p.LastReviewedAt) >= time.Duration(*cfg.DaysSinceReview)*day
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
