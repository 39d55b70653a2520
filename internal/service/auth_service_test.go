package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playdesk/support-desk/internal/domain"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

func TestLoginPlayerIssuesTokenAndSession(t *testing.T) {
	f := newFixture(t)
	player := f.player(t, "ada@example.com", "P-1")

	result, err := f.auth.LoginPlayer(context.Background(), " ADA@example.com", "player-pass")
	require.NoError(t, err)
	assert.Equal(t, player.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)

	claims, err := f.tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, player.ID, claims.Subject)
	assert.Equal(t, result.SessionID, claims.SessionID)
	assert.Equal(t, domain.RolePlayer, claims.Role)

	state, err := f.auth.CurrentSession(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, state.UserID)
	assert.Equal(t, player.Name, state.Name)
	assert.Equal(t, result.ExpiresAt, state.ExpiresAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.player(t, "ada@example.com", "P-1")
	f.agent(t, "agent@example.com")

	cases := map[string]func() (*LoginResult, error){
		"wrong password": func() (*LoginResult, error) {
			return f.auth.LoginPlayer(context.Background(), "ada@example.com", "nope")
		},
		"unknown email": func() (*LoginResult, error) {
			return f.auth.LoginPlayer(context.Background(), "ghost@example.com", "player-pass")
		},
		"agent through player login": func() (*LoginResult, error) {
			return f.auth.LoginPlayer(context.Background(), "agent@example.com", "agent-pass")
		},
		"player through agent login": func() (*LoginResult, error) {
			return f.auth.LoginAgent(context.Background(), "ada@example.com", "player-pass")
		},
	}
	for name, login := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := login()
			assert.Nil(t, result)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	f.agent(t, "agent@example.com")

	result, err := f.auth.LoginAgent(context.Background(), "agent@example.com", "agent-pass")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(context.Background(), result.SessionID))
	_, err = f.auth.CurrentSession(context.Background(), result.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	// Logging out twice is harmless.
	assert.NoError(t, f.auth.Logout(context.Background(), result.SessionID))
}
