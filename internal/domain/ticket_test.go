package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testPlayer() *User {
	return NewPlayer("p-1", "Player@Example.com ", "Pat", "PN-1", "hash", nil, t0)
}

func testAgent() *User {
	return NewAgent("a-1", "agent@example.com", "Alex", "hash", nil, t0)
}

func openTicket(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket("t-1", testPlayer(), "Cannot log in", "Login fails with code 42", t0)
	require.NoError(t, err)
	return ticket
}

func reply(t *testing.T, id string, author *User, at time.Time) Reply {
	t.Helper()
	r, err := NewReply(id, "t-1", author, "message "+id, at)
	require.NoError(t, err)
	return r
}

func TestNewTicket(t *testing.T) {
	ticket := openTicket(t)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, t0, ticket.CreatedAt)
	assert.Equal(t, t0, ticket.LastUpdateAt)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Equal(t, "player@example.com", ticket.Creator.Email)
	assert.Empty(t, ticket.Messages())
}

func TestNewTicketRejectsAgentCreator(t *testing.T) {
	_, err := NewTicket("t-1", testAgent(), "title", "description", t0)
	assert.ErrorIs(t, err, ErrCreatorNotPlayer)
}

func TestNewTicketRequiresTitleAndDescription(t *testing.T) {
	_, err := NewTicket("t-1", testPlayer(), "  ", "description", t0)
	assert.ErrorIs(t, err, ErrTicketTitleRequired)

	_, err = NewTicket("t-1", testPlayer(), "title", "", t0)
	assert.ErrorIs(t, err, ErrTicketDescriptionRequired)
}

func TestPlayerReplyKeepsStatus(t *testing.T) {
	ticket := openTicket(t)
	later := t0.Add(time.Minute)

	require.NoError(t, ticket.AddReply(reply(t, "r-1", testPlayer(), later), later))

	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, later, ticket.LastUpdateAt)
	assert.Equal(t, 1, ticket.ReplyCount())
}

func TestAgentReplyMovesOpenToInResolution(t *testing.T) {
	ticket := openTicket(t)
	later := t0.Add(time.Minute)

	require.NoError(t, ticket.AddReply(reply(t, "r-1", testAgent(), later), later))

	assert.Equal(t, TicketStatusInResolution, ticket.Status)
	assert.Equal(t, later, ticket.LastUpdateAt)
}

func TestInResolutionNeverRevertsToOpen(t *testing.T) {
	ticket := openTicket(t)
	require.NoError(t, ticket.AddReply(reply(t, "r-1", testAgent(), t0), t0))
	require.NoError(t, ticket.AddReply(reply(t, "r-2", testPlayer(), t0), t0))
	require.NoError(t, ticket.AddReply(reply(t, "r-3", testAgent(), t0), t0))

	assert.Equal(t, TicketStatusInResolution, ticket.Status)
}

func TestResolveLifecycle(t *testing.T) {
	ticket := openTicket(t)
	require.NoError(t, ticket.AddReply(reply(t, "r-1", testAgent(), t0), t0))

	resolvedAt := t0.Add(time.Hour)
	require.NoError(t, ticket.Resolve(resolvedAt))

	assert.Equal(t, TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, resolvedAt, *ticket.ResolvedAt)
	assert.Equal(t, resolvedAt, ticket.LastUpdateAt)
	assert.True(t, ticket.IsResolved())
}

func TestResolveRequiresInResolution(t *testing.T) {
	ticket := openTicket(t)

	err := ticket.Resolve(t0)
	assert.ErrorIs(t, err, ErrTicketNotInResolution)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestResolvedIsTerminal(t *testing.T) {
	ticket := openTicket(t)
	require.NoError(t, ticket.AddReply(reply(t, "r-1", testAgent(), t0), t0))
	require.NoError(t, ticket.Resolve(t0))

	assert.ErrorIs(t, ticket.Resolve(t0), ErrTicketNotInResolution)
	assert.ErrorIs(t, ticket.AddReply(reply(t, "r-2", testPlayer(), t0), t0), ErrTicketResolved)
	assert.ErrorIs(t, ticket.AddReply(reply(t, "r-3", testAgent(), t0), t0), ErrTicketResolved)
	assert.Equal(t, TicketStatusResolved, ticket.Status)
	assert.Equal(t, 1, ticket.ReplyCount())
}

func TestAddReplyRejectsForeignReply(t *testing.T) {
	ticket := openTicket(t)
	r, err := NewReply("r-1", "t-other", testPlayer(), "hello", t0)
	require.NoError(t, err)

	assert.ErrorIs(t, ticket.AddReply(r, t0), ErrReplyTicketMismatch)
	assert.Zero(t, ticket.ReplyCount())
}

func TestMessagesSortedByCreatedAt(t *testing.T) {
	ticket := openTicket(t)
	third := reply(t, "r-3", testPlayer(), t0.Add(3*time.Minute))
	first := reply(t, "r-1", testAgent(), t0.Add(1*time.Minute))
	second := reply(t, "r-2", testPlayer(), t0.Add(2*time.Minute))

	for _, r := range []Reply{third, first, second} {
		require.NoError(t, ticket.AddReply(r, t0.Add(5*time.Minute)))
	}

	msgs := ticket.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"r-1", "r-2", "r-3"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})

	msgs[0].Content = "mutated"
	assert.NotEqual(t, "mutated", ticket.Messages()[0].Content)
}

func TestRestoreTicketKeepsState(t *testing.T) {
	resolvedAt := t0.Add(time.Hour)
	ticket := RestoreTicket(Ticket{
		ID:         "t-1",
		Creator:    *testPlayer(),
		Status:     TicketStatusResolved,
		ResolvedAt: &resolvedAt,
	}, []Reply{reply(t, "r-1", testAgent(), t0)})

	assert.Equal(t, 1, ticket.ReplyCount())
	assert.ErrorIs(t, ticket.AddReply(reply(t, "r-2", testPlayer(), t0), t0), ErrTicketResolved)
}

func TestNewReplyRequiresContent(t *testing.T) {
	_, err := NewReply("r-1", "t-1", testPlayer(), "   ", t0)
	assert.ErrorIs(t, err, ErrReplyContentRequired)
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, testPlayer().IsPlayer())
	assert.False(t, testPlayer().IsAgent())
	assert.True(t, testAgent().IsAgent())
	assert.Nil(t, testAgent().PlayerNumber)
	assert.True(t, RoleAgent.Valid())
	assert.False(t, Role("Admin").Valid())

	var nobody *User
	assert.False(t, nobody.IsPlayer())
}
