package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/events"
	"github.com/playdesk/support-desk/internal/repository/memory"
	"github.com/playdesk/support-desk/internal/session"
)

// stepClock advances one second per reading so orderings are deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store    *memory.Store
	sessions *session.MemoryStore
	tokens   *auth.TokenManager
	events   *recordedEvents
	users    *UserService
	tickets  *TicketService
	auth     *AuthenticationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &stepClock{now: time.Now().UTC().Truncate(time.Second)}
	store := memory.NewStore()
	sessions := session.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", "support-desk-test", time.Hour)
	dispatcher := events.NewInMemoryDispatcher()
	recorded := &recordedEvents{}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketReplyAdded,
		events.EventTicketStatusChanged,
	} {
		dispatcher.Subscribe(eventType, recorded.handle)
	}

	return &fixture{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		events:   recorded,
		users: NewUserService(UserDependencies{
			UnitOfWork: store,
			BcryptCost: bcrypt.MinCost,
			Clock:      clock.Now,
		}),
		tickets: NewTicketService(TicketDependencies{
			UnitOfWork: store,
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		auth: NewAuthenticationService(AuthDependencies{
			UserRepo:     store.Users(),
			TokenManager: tokens,
			Sessions:     sessions,
			Clock:        clock.Now,
		}),
	}
}

func (f *fixture) player(t *testing.T, email, number string) *domain.User {
	t.Helper()
	user, err := f.users.CreatePlayer(context.Background(), CreatePlayerInput{
		Name:         "Player " + number,
		Email:        email,
		Password:     "player-pass",
		PlayerNumber: number,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) agent(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := f.users.CreateAgent(context.Background(), CreateAgentInput{
		Name:     "Agent",
		Email:    email,
		Password: "agent-pass",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) ticket(t *testing.T, player *domain.User) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), player.ID, TicketCreateInput{
		Title:       "Cannot log in",
		Description: "The launcher rejects my password",
	})
	require.NoError(t, err)
	return ticket
}
