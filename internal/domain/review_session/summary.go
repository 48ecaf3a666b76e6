package reviewsession

import (
	"math"
	"sort"

	"github.com/wrongbook/backend/internal/domain/problem"
)

// StatusChange is a problem whose status differs between session start and
// the moment the summary was computed.
type StatusChange struct {
	ProblemID string         `json:"problem_id"`
	From      problem.Status `json:"from"`
	To        problem.Status `json:"to"`
}

// Summary holds the end-of-session statistics.
type Summary struct {
	TotalProblems  int            `json:"total_problems"`
	AnsweredCount  int            `json:"answered_count"`
	CorrectCount   int            `json:"correct_count"`
	IncorrectCount int            `json:"incorrect_count"`
	SkippedCount   int            `json:"skipped_count"`
	Accuracy       int            `json:"accuracy"` // percent of answered problems
	ElapsedMs      int64          `json:"elapsed_ms"`
	StatusChanges  []StatusChange `json:"status_changes"`
	NewlyMastered  int            `json:"newly_mastered"`
	Improved       int            `json:"improved"`
	Regressed      int            `json:"regressed"`
}

// Summarize computes the statistics of a session from its result log and the
// live problem statuses. Only the latest result per problem counts. Problems
// without a live status get no delta.
func Summarize(state State, results []Result, live map[string]problem.Status) Summary {
	sum := Summary{
		TotalProblems: len(state.ProblemIDs),
		ElapsedMs:     state.ElapsedMs,
		StatusChanges: []StatusChange{},
	}

	for _, r := range LatestResults(state, results) {
		if r.WasSkipped {
			sum.SkippedCount++
			continue
		}
		sum.AnsweredCount++
		switch {
		case r.WasCorrect == nil:
		case *r.WasCorrect:
			sum.CorrectCount++
		default:
			sum.IncorrectCount++
		}
	}
	if sum.AnsweredCount > 0 {
		sum.Accuracy = int(math.Round(float64(sum.CorrectCount) / float64(sum.AnsweredCount) * 100))
	}

	for _, pid := range state.ProblemIDs {
		from, ok := state.InitialStatuses[pid]
		if !ok {
			continue
		}
		to, ok := live[pid]
		if !ok || to == from {
			continue
		}
		sum.StatusChanges = append(sum.StatusChanges, StatusChange{ProblemID: pid, From: from, To: to})
		switch {
		case to.Rank() > from.Rank():
			sum.Improved++
		case to.Rank() < from.Rank():
			sum.Regressed++
		}
		if to == problem.StatusMastered {
			sum.NewlyMastered++
		}
	}

	return sum
}

// LatestResults keeps the most recent result of every problem in the session,
// in session order.
func LatestResults(state State, results []Result) []Result {
	ordered := append([]Result(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	latest := make(map[string]Result, len(ordered))
	for _, r := range ordered {
		latest[r.ProblemID] = r
	}

	out := make([]Result, 0, len(latest))
	for _, pid := range state.ProblemIDs {
		if r, ok := latest[pid]; ok {
			out = append(out, r)
			delete(latest, pid)
		}
	}
	return out
}
