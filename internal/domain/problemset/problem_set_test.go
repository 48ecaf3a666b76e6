package problemset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/domain/filter"
	"github.com/wrongbook/backend/internal/domain/problemset"
	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
)

func TestNewManual(t *testing.T) {
	ps, err := problemset.NewManual("owner", "Week 1", "math", []string{"p1", "p2", "p1"}, reviewsession.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, problemset.KindManual, ps.Kind)
	assert.Equal(t, []string{"p1", "p2"}, ps.ProblemIDs)
	assert.Equal(t, access.SharingPrivate, ps.Sharing)
}

func TestNewManual_Empty(t *testing.T) {
	_, err := problemset.NewManual("owner", "Week 1", "math", nil, reviewsession.DefaultConfig())
	assert.Error(t, err)
}

func TestNewSmart_ValidatesFilter(t *testing.T) {
	days := -2
	_, err := problemset.NewSmart("owner", "Stale", "math", filter.Config{DaysSinceReview: &days}, reviewsession.DefaultConfig())
	assert.Error(t, err)

	_, err = problemset.NewSmart("owner", "Stale", "", filter.Config{}, reviewsession.DefaultConfig())
	assert.Error(t, err)
}

func TestNewSmart_ValidatesSessionConfig(t *testing.T) {
	size := 0
	_, err := problemset.NewSmart("owner", "All", "math", filter.Config{}, reviewsession.SessionConfig{SessionSize: &size})
	assert.ErrorIs(t, err, reviewsession.ErrInvalidInput)
}

func TestShare(t *testing.T) {
	ps, err := problemset.NewSmart("owner", "All", "math", filter.Config{}, reviewsession.DefaultConfig())
	require.NoError(t, err)

	ps.Share(access.SharingLimited, []string{" A@x.io", "a@x.io", "", "b@x.io"})
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, ps.SharedWith)
	assert.True(t, ps.CheckAccess(access.User{ID: "viewer", Email: "B@x.io"}).Allowed)

	ps.Share(access.SharingPublic, []string{"a@x.io"})
	assert.Nil(t, ps.SharedWith)
	d := ps.CheckAccess(access.User{ID: "anyone"})
	assert.True(t, d.Allowed)
	assert.False(t, d.IsOwner)
}
