package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/events"
	"github.com/playdesk/support-desk/internal/repository"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	uow        repository.UnitOfWork
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock and NewID default to UTC wall time and random UUIDs.
	Clock func() time.Time
	NewID func() string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		uow:        deps.UnitOfWork,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
		newID:      deps.NewID,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateTicket opens a ticket for a player.
func (s *TicketService) CreateTicket(ctx context.Context, playerID string, input TicketCreateInput) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		creator, err := repos.Users().GetByID(ctx, playerID)
		if err != nil {
			return notFoundOr(err, "player", map[string]any{"player_id": playerID})
		}
		created, err := domain.NewTicket(s.newID(), creator, input.Title, input.Description, s.now())
		if err != nil {
			return ruleError(err, map[string]any{"user_id": playerID})
		}
		if err := repos.Tickets().Create(ctx, created); err != nil {
			return err
		}
		ticket = created
		return nil
	})
	if err != nil {
		return nil, fail(s.logger, "create_ticket", err, zap.String("player_id", playerID))
	}

	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.String("player_id", playerID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorOf(&ticket.Creator),
		Payload:  events.TicketCreatedPayload{Title: ticket.Title},
	})
	return ticket, nil
}

// GetTicket returns a ticket with its replies. Players may only read their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, viewer *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, viewer, ticketID)
	if err != nil {
		return nil, fail(s.logger, "get_ticket", err, zap.String("ticket_id", ticketID), viewerField(viewer))
	}
	return ticket, nil
}

// ListPlayerTickets returns the tickets raised by a player, most recently updated first.
func (s *TicketService) ListPlayerTickets(ctx context.Context, viewer *domain.User, playerID string) ([]*domain.Ticket, error) {
	tickets, err := s.listPlayerTickets(ctx, viewer, playerID)
	if err != nil {
		return nil, fail(s.logger, "list_player_tickets", err, zap.String("player_id", playerID), viewerField(viewer))
	}
	return tickets, nil
}

func (s *TicketService) listPlayerTickets(ctx context.Context, viewer *domain.User, playerID string) ([]*domain.Ticket, error) {
	if viewer.IsPlayer() && viewer.ID != playerID {
		return nil, apperrors.NewForbidden("players can only list their own tickets")
	}
	player, err := s.uow.Users().GetByID(ctx, playerID)
	if err != nil {
		return nil, notFoundOr(err, "player", map[string]any{"player_id": playerID})
	}
	if !player.IsPlayer() {
		return nil, apperrors.NewValidationError("user is not a player", map[string]any{"player_id": playerID})
	}
	return s.uow.Tickets().ListByCreator(ctx, playerID)
}

// ListUnresolved returns every ticket not yet resolved, oldest first.
func (s *TicketService) ListUnresolved(ctx context.Context) ([]*domain.Ticket, error) {
	tickets, err := s.uow.Tickets().ListUnresolved(ctx)
	if err != nil {
		return nil, fail(s.logger, "list_unresolved", err)
	}
	return tickets, nil
}

// AddReply appends a reply from a player or an agent and returns the updated ticket.
// The first agent reply on an open ticket moves it to IN_RESOLUTION.
func (s *TicketService) AddReply(ctx context.Context, ticketID, authorID, content string) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		author    *domain.User
		reply     domain.Reply
		oldStatus domain.TicketStatus
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		ticket, err = repos.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
		}
		author, err = repos.Users().GetByID(ctx, authorID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": authorID})
		}
		if author.IsPlayer() && ticket.Creator.ID != author.ID {
			return apperrors.NewForbidden("players can only reply to their own tickets")
		}

		now := s.now()
		reply, err = domain.NewReply(s.newID(), ticket.ID, author, content, now)
		if err != nil {
			return ruleError(err, map[string]any{"ticket_id": ticketID})
		}
		oldStatus = ticket.Status
		if err := ticket.AddReply(reply, now); err != nil {
			return ruleError(err, map[string]any{"ticket_id": ticketID, "status": ticket.Status})
		}
		if err := repos.Tickets().AddReply(ctx, &reply); err != nil {
			return err
		}
		if err := repos.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordStatusChange(ctx, repos, ticket, oldStatus, author.ID)
	})
	if err != nil {
		return nil, fail(s.logger, "add_reply", err, zap.String("ticket_id", ticketID), zap.String("author_id", authorID))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplyAdded,
		TicketID: ticket.ID,
		Actor:    actorOf(author),
		Payload: events.TicketReplyAddedPayload{
			ReplyID:        reply.ID,
			ContentPreview: stringPreview(reply.Content, 120),
		},
	})
	s.publishStatusChange(ctx, ticket, oldStatus, author)
	return ticket, nil
}

// ResolveTicket marks a ticket in resolution as resolved. Only agents may resolve.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		agent     *domain.User
		oldStatus domain.TicketStatus
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		agent, err = repos.Users().GetByID(ctx, agentID)
		if err != nil {
			return notFoundOr(err, "agent", map[string]any{"agent_id": agentID})
		}
		if !agent.IsAgent() {
			return apperrors.NewForbidden("only agents can resolve tickets")
		}
		ticket, err = repos.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
		}
		oldStatus = ticket.Status
		if err := ticket.Resolve(s.now()); err != nil {
			return ruleError(err, map[string]any{"ticket_id": ticketID, "status": ticket.Status})
		}
		if err := repos.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordStatusChange(ctx, repos, ticket, oldStatus, agent.ID)
	})
	if err != nil {
		return nil, fail(s.logger, "resolve_ticket", err, zap.String("ticket_id", ticketID), zap.String("agent_id", agentID))
	}

	s.logger.Info("ticket resolved", zap.String("ticket_id", ticket.ID), zap.String("agent_id", agentID))
	s.publishStatusChange(ctx, ticket, oldStatus, agent)
	return ticket, nil
}

// ListHistory returns the status audit trail of a ticket.
func (s *TicketService) ListHistory(ctx context.Context, viewer *domain.User, ticketID string) ([]domain.TicketHistory, error) {
	ticket, err := s.loadVisible(ctx, viewer, ticketID)
	if err == nil {
		var history []domain.TicketHistory
		history, err = s.uow.Tickets().ListHistory(ctx, ticket.ID)
		if err == nil {
			return history, nil
		}
	}
	return nil, fail(s.logger, "list_history", err, zap.String("ticket_id", ticketID), viewerField(viewer))
}

func (s *TicketService) loadVisible(ctx context.Context, viewer *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.uow.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canView(viewer, ticket) {
		return nil, apperrors.NewForbidden("ticket belongs to another player")
	}
	return ticket, nil
}

func canView(viewer *domain.User, ticket *domain.Ticket) bool {
	if viewer.IsAgent() {
		return true
	}
	return viewer.IsPlayer() && ticket.Creator.ID == viewer.ID
}

func (s *TicketService) recordStatusChange(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, oldStatus domain.TicketStatus, actorID string) error {
	if ticket.Status == oldStatus {
		return nil
	}
	return repos.Tickets().AddHistory(ctx, &domain.TicketHistory{
		ID:          s.newID(),
		TicketID:    ticket.ID,
		OldStatus:   oldStatus,
		NewStatus:   ticket.Status,
		ChangedByID: actorID,
		CreatedAt:   ticket.LastUpdateAt,
	})
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticket *domain.Ticket, oldStatus domain.TicketStatus, actor *domain.User) {
	if ticket.Status == oldStatus {
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = s.newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func viewerField(viewer *domain.User) zap.Field {
	if viewer == nil {
		return zap.Skip()
	}
	return zap.String("viewer_id", viewer.ID)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
