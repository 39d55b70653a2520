package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/playdesk/support-desk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "support-desk", 0)
	assert.Equal(t, time.Hour, tm.TTL())

	issued := time.Now()
	token, exp, err := tm.GenerateToken("u-1", domain.RoleAgent, "sid-1", issued)
	require.NoError(t, err)
	assert.WithinDuration(t, issued.Add(time.Hour), exp, time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, domain.RoleAgent, claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", "support-desk", time.Hour)

	other := NewTokenManager("other-secret", "support-desk", time.Hour)
	forged, _, err := other.GenerateToken("u-1", domain.RolePlayer, "sid-1", time.Now())
	require.NoError(t, err)
	_, err = tm.ParseToken(forged)
	assert.Error(t, err, "wrong signature")

	foreign := NewTokenManager("secret", "someone-else", time.Hour)
	foreignToken, _, err := foreign.GenerateToken("u-1", domain.RolePlayer, "sid-1", time.Now())
	require.NoError(t, err)
	_, err = tm.ParseToken(foreignToken)
	assert.Error(t, err, "wrong issuer")

	expired, _, err := tm.GenerateToken("u-1", domain.RolePlayer, "sid-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = tm.ParseToken(expired)
	assert.Error(t, err, "expired")

	noRole, _, err := tm.GenerateToken("u-1", domain.Role("Admin"), "sid-1", time.Now())
	require.NoError(t, err)
	_, err = tm.ParseToken(noRole)
	assert.Error(t, err, "unknown role")

	_, err = tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "battery staple"))
}
