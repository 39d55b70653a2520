package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/repository/memory"
	"github.com/playdesk/support-desk/internal/session"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

type fixture struct {
	app      *fiber.App
	tokens   *TokenManager
	sessions *session.MemoryStore
	player   *domain.User
	agent    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()
	player := domain.NewPlayer("p-1", "p@example.com", "Pat", "PN-1", "hash", nil, now)
	agent := domain.NewAgent("a-1", "a@example.com", "Alex", "hash", nil, now)
	require.NoError(t, store.Users().Create(ctx, player))
	require.NoError(t, store.Users().Create(ctx, agent))

	f := &fixture{
		tokens:   NewTokenManager("secret", "test", time.Hour),
		sessions: session.NewMemoryStore(),
		player:   player,
		agent:    agent,
	}
	mw := NewAuthMiddleware(f.tokens, store.Users(), f.sessions)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/agents-only", mw.Handle, RequireRole(domain.RoleAgent), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(principal.User.ID)
	})
	app.Get("/any", mw.Handle, RequireAnyRole(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	f.app = app
	return f
}

func (f *fixture) login(t *testing.T, user *domain.User) string {
	t.Helper()
	sid := "sid-" + user.ID
	token, exp, err := f.tokens.GenerateToken(user.ID, user.Role, sid, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Save(context.Background(), session.State{
		ID: sid, UserID: user.ID, Role: user.Role, IssuedAt: time.Now(), ExpiresAt: exp,
	}))
	return token
}

func (f *fixture) get(t *testing.T, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareRequiresBearerToken(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/any", ""))
	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/any", "garbage"))
}

func TestMiddlewareRoleGuard(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.get(t, "/any", f.login(t, f.player)))
	assert.Equal(t, http.StatusForbidden, f.get(t, "/agents-only", f.login(t, f.player)))
	assert.Equal(t, http.StatusOK, f.get(t, "/agents-only", f.login(t, f.agent)))
}

func TestMiddlewareRejectsRevokedSession(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.player)
	require.NoError(t, f.sessions.Delete(context.Background(), "sid-"+f.player.ID))

	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/any", token))
}

func TestMiddlewareRejectsRoleMismatch(t *testing.T) {
	f := newFixture(t)
	sid := "sid-forged"
	token, exp, err := f.tokens.GenerateToken(f.player.ID, domain.RoleAgent, sid, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Save(context.Background(), session.State{ID: sid, ExpiresAt: exp}))

	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/agents-only", token))
}
