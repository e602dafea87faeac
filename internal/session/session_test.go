package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakeshop/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := SignToken(7, domain.RoleCustomer, "abc123", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.Equal(t, "abc123", claims.SessionID)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := SignToken(7, domain.RoleAdmin, "abc123", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := SignToken(7, domain.RoleCustomer, "abc123", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", "secret")
	assert.Error(t, err)
}
