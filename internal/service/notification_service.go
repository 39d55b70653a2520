package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/config"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/events"
)

// TransitionRecorder counts ticket status transitions.
type TransitionRecorder interface {
	RecordTicketTransition(status string)
}

// NotificationService reacts to ticket events with log entries, metrics and outbound stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	metrics    TransitionRecorder
}

// NewNotificationService creates the service. metrics may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, metrics TransitionRecorder) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to ticket events and returns the subscribed types.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := map[events.EventType]events.EventHandler{
		events.EventTicketCreated:       n.handleTicketCreated,
		events.EventTicketReplyAdded:    n.handleTicketReplyAdded,
		events.EventTicketStatusChanged: n.handleTicketStatusChanged,
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for eventType, handler := range handlers {
		n.dispatcher.Subscribe(eventType, handler)
		subscribed = append(subscribed, eventType)
	}
	return subscribed
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", event.TicketID),
		zap.String("player_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	n.record(string(domain.TicketStatusOpen))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketReplyAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket reply added",
		zap.String("ticket_id", event.TicketID),
		zap.String("author_id", event.Actor.UserID),
		zap.String("author_role", string(event.Actor.Role)),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("ticket_id", event.TicketID), zap.String("actor_id", event.Actor.UserID)}
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
		n.record(string(payload.NewStatus))
	}
	n.logger.Info("ticket status changed", fields...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) record(status string) {
	if n.metrics != nil {
		n.metrics.RecordTicketTransition(status)
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
