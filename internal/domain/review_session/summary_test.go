package reviewsession_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wrongbook/backend/internal/domain/problem"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
)

func stateOf(ids ...string) reviewsession.State {
	initial := make(map[string]problem.Status, len(ids))
	for _, id := range ids {
		initial[id] = problem.StatusWrong
	}
	return reviewsession.State{ProblemIDs: ids, InitialStatuses: initial}
}

func answered(id int64, pid string, correct bool, at time.Duration) reviewsession.Result {
	return reviewsession.Result{ID: id, ProblemID: pid, WasCorrect: &correct, CreatedAt: t0.Add(at)}
}

func skipped(id int64, pid string, at time.Duration) reviewsession.Result {
	return reviewsession.Result{ID: id, ProblemID: pid, WasSkipped: true, CreatedAt: t0.Add(at)}
}

func TestSummarize_RoundTrip(t *testing.T) {
	state := stateOf("p1", "p2", "p3")
	results := []reviewsession.Result{
		answered(1, "p1", true, 0),
		answered(2, "p2", false, time.Second),
		skipped(3, "p3", 2*time.Second),
	}

	sum := reviewsession.Summarize(state, results, nil)

	assert.Equal(t, 3, sum.TotalProblems)
	assert.Equal(t, 1, sum.CorrectCount)
	assert.Equal(t, 1, sum.IncorrectCount)
	assert.Equal(t, 1, sum.SkippedCount)
	assert.Equal(t, 2, sum.AnsweredCount)
	assert.Equal(t, 50, sum.Accuracy)
}

func TestSummarize_NoResults(t *testing.T) {
	sum := reviewsession.Summarize(stateOf("p1", "p2"), nil, nil)

	assert.Equal(t, reviewsession.Summary{TotalProblems: 2, StatusChanges: []reviewsession.StatusChange{}}, sum)
}

func TestSummarize_LatestResultWins(t *testing.T) {
	state := stateOf("p1", "p2", "p3")
	results := []reviewsession.Result{
		// Delivered out of order: the later timestamp wins regardless of slice position.
		answered(4, "p1", true, 3*time.Second),
		answered(1, "p1", false, 0),
		skipped(2, "p2", time.Second),
		skipped(3, "p2", 2*time.Second),
		skipped(5, "p3", time.Second),
		answered(6, "p3", false, 4*time.Second),
	}

	sum := reviewsession.Summarize(state, results, nil)

	assert.Equal(t, 1, sum.CorrectCount)
	assert.Equal(t, 1, sum.IncorrectCount)
	assert.Equal(t, 1, sum.SkippedCount, "repeated skips count once")
	assert.Equal(t, 50, sum.Accuracy)
}

func TestSummarize_SameTimestampUsesID(t *testing.T) {
	state := stateOf("p1")
	results := []reviewsession.Result{
		answered(2, "p1", true, 0),
		answered(1, "p1", false, 0),
	}

	sum := reviewsession.Summarize(state, results, nil)
	assert.Equal(t, 1, sum.CorrectCount)
	assert.Equal(t, 0, sum.IncorrectCount)
}

func TestSummarize_IgnoresForeignProblems(t *testing.T) {
	sum := reviewsession.Summarize(stateOf("p1"), []reviewsession.Result{answered(1, "zz", true, 0)}, nil)
	assert.Equal(t, 0, sum.AnsweredCount)
}

func TestSummarize_AccuracyRounds(t *testing.T) {
	state := stateOf("p1", "p2", "p3")
	results := []reviewsession.Result{
		answered(1, "p1", true, 0),
		answered(2, "p2", true, 0),
		answered(3, "p3", false, 0),
	}
	assert.Equal(t, 67, reviewsession.Summarize(state, results, nil).Accuracy)
}

func TestSummarize_StatusDeltas(t *testing.T) {
	state := reviewsession.State{
		ProblemIDs: []string{"p1", "p2", "p3", "p4", "p5"},
		InitialStatuses: map[string]problem.Status{
			"p1": problem.StatusWrong,
			"p2": problem.StatusNeedsReview,
			"p3": problem.StatusMastered,
			"p4": problem.StatusWrong,
			"p5": problem.StatusWrong,
		},
		ElapsedMs: 42000,
	}
	live := map[string]problem.Status{
		"p1": problem.StatusMastered,
		"p2": problem.StatusMastered,
		"p3": problem.StatusWrong,
		"p4": problem.StatusWrong,
		// p5 deleted elsewhere: no delta.
	}

	sum := reviewsession.Summarize(state, nil, live)

	assert.Equal(t, []reviewsession.StatusChange{
		{ProblemID: "p1", From: problem.StatusWrong, To: problem.StatusMastered},
		{ProblemID: "p2", From: problem.StatusNeedsReview, To: problem.StatusMastered},
		{ProblemID: "p3", From: problem.StatusMastered, To: problem.StatusWrong},
	}, sum.StatusChanges)
	assert.Equal(t, 2, sum.NewlyMastered)
	assert.Equal(t, 2, sum.Improved)
	assert.Equal(t, 1, sum.Regressed)
	assert.Equal(t, int64(42000), sum.ElapsedMs)
}

func TestLatestResults_SessionOrder(t *testing.T) {
	state := stateOf("p1", "p2")
	results := []reviewsession.Result{
		answered(1, "p2", true, 0),
		answered(2, "p1", true, time.Second),
	}

	latest := reviewsession.LatestResults(state, results)
	if assert.Len(t, latest, 2) {
		assert.Equal(t, "p1", latest[0].ProblemID)
		assert.Equal(t, "p2", latest[1].ProblemID)
	}
}
