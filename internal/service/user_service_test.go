package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/domain"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

func TestCreatePlayer(t *testing.T) {
	f := newFixture(t)
	avatar := "  https://cdn.example.com/a.png "

	player, err := f.users.CreatePlayer(context.Background(), CreatePlayerInput{
		Name:         " Ada ",
		Email:        "Ada@Example.com",
		Password:     "secret-pass",
		PlayerNumber: "P-100",
		Avatar:       &avatar,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RolePlayer, player.Role)
	assert.Equal(t, "ada@example.com", player.Email)
	assert.Equal(t, "Ada", player.Name)
	require.NotNil(t, player.PlayerNumber)
	assert.Equal(t, "P-100", *player.PlayerNumber)
	require.NotNil(t, player.Avatar)
	assert.Equal(t, "https://cdn.example.com/a.png", *player.Avatar)
	assert.NoError(t, auth.ComparePassword(player.PasswordHash, "secret-pass"))

	stored, err := f.users.GetUser(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Equal(t, player.Email, stored.Email)
}

func TestCreatePlayerRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.player(t, "ada@example.com", "P-1")

	_, err := f.users.CreatePlayer(context.Background(), CreatePlayerInput{
		Name: "Other", Email: "ADA@example.com", Password: "x", PlayerNumber: "P-2",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.users.CreatePlayer(context.Background(), CreatePlayerInput{
		Name: "Other", Email: "other@example.com", Password: "x", PlayerNumber: "P-1",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCreateAgentRejectsEmailUsedByPlayer(t *testing.T) {
	f := newFixture(t)
	f.player(t, "shared@example.com", "P-1")

	_, err := f.users.CreateAgent(context.Background(), CreateAgentInput{
		Name: "Agent", Email: "shared@example.com", Password: "x",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestGetUserNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.GetUser(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestEnsureAgent(t *testing.T) {
	f := newFixture(t)
	input := CreateAgentInput{Name: "Root", Email: "root@example.com", Password: "root-pass"}

	first, created, err := f.users.EnsureAgent(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsAgent())

	second, created, err := f.users.EnsureAgent(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureAgentRefusesPlayerEmail(t *testing.T) {
	f := newFixture(t)
	f.player(t, "root@example.com", "P-1")

	_, _, err := f.users.EnsureAgent(context.Background(), CreateAgentInput{
		Name: "Root", Email: "root@example.com", Password: "root-pass",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
