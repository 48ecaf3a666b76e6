package problem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrongbook/backend/internal/domain/problem"
)

func TestNew(t *testing.T) {
	p, err := problem.New("user-1", "math", "Integrate x^2", problem.TypeShort, []string{"calculus"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, problem.StatusWrong, p.Status)
	assert.Nil(t, p.LastReviewedAt)
	assert.Equal(t, []string{"calculus"}, p.TagIDs)
}

func TestNew_DefaultsType(t *testing.T) {
	p, err := problem.New("user-1", "math", "Limits", "", nil)
	require.NoError(t, err)
	assert.Equal(t, problem.TypeOther, p.ProblemType)
}

func TestNew_Rejects(t *testing.T) {
	cases := []struct {
		name                  string
		owner, subject, title string
		problemType           problem.Type
	}{
		{"no owner", "", "math", "t", problem.TypeMCQ},
		{"no subject", "u", "", "t", problem.TypeMCQ},
		{"no title", "u", "math", "", problem.TypeMCQ},
		{"bad type", "u", "math", "t", problem.Type("essay")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := problem.New(tc.owner, tc.subject, tc.title, tc.problemType, nil)
			assert.Error(t, err)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := problem.ParseStatus("needs_review")
	require.NoError(t, err)
	assert.Equal(t, problem.StatusNeedsReview, s)

	_, err = problem.ParseStatus("forgotten")
	assert.Error(t, err)
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, problem.StatusWrong.Rank(), problem.StatusNeedsReview.Rank())
	assert.Less(t, problem.StatusNeedsReview.Rank(), problem.StatusMastered.Rank())
	assert.Equal(t, -1, problem.Status("x").Rank())
}

func TestHasAnyTag(t *testing.T) {
	p := problem.Problem{TagIDs: []string{"a", "b"}}
	assert.True(t, p.HasAnyTag([]string{"z", "b"}))
	assert.False(t, p.HasAnyTag([]string{"z"}))
	assert.False(t, p.HasAnyTag(nil))
}
