package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrongbook/backend/internal/auth"
	"github.com/wrongbook/backend/internal/domain/access"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens, err := auth.NewTokens("secret")
	require.NoError(t, err)

	raw, err := tokens.Issue(access.User{ID: "user-1", Email: " Alice@Example.com "}, time.Hour)
	require.NoError(t, err)

	user, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestTokens_RejectsOtherSecret(t *testing.T) {
	issuer, err := auth.NewTokens("secret")
	require.NoError(t, err)
	verifier, err := auth.NewTokens("another-secret")
	require.NoError(t, err)

	raw, err := issuer.Issue(access.User{ID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens, err := auth.NewTokens("secret")
	require.NoError(t, err)

	raw, err := tokens.Issue(access.User{ID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_RejectsGarbage(t *testing.T) {
	tokens, err := auth.NewTokens("secret")
	require.NoError(t, err)

	_, err = tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_Validation(t *testing.T) {
	_, err := auth.NewTokens("")
	assert.Error(t, err)

	tokens, err := auth.NewTokens("secret")
	require.NoError(t, err)
	_, err = tokens.Issue(access.User{}, time.Hour)
	assert.Error(t, err)
}
