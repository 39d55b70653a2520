package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/playdesk/support-desk/internal/config"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/events"
)

type transitionCounter map[string]int

func (c transitionCounter) RecordTicketTransition(status string) { c[status]++ }

func TestNotificationServiceHandlesTicketEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	counter := transitionCounter{}
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/tickets",
	}, counter)
	require.Len(t, svc.RegisterHandlers(), 3)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "t-1",
		Actor:    events.Actor{UserID: "p-1", Role: domain.RolePlayer},
		Payload:  events.TicketCreatedPayload{Title: "help"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: "t-1",
		Actor:    events.Actor{UserID: "a-1", Role: domain.RoleAgent},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusInResolution,
		},
	}))

	assert.Equal(t, 1, counter[string(domain.TicketStatusOpen)])
	assert.Equal(t, 1, counter[string(domain.TicketStatusInResolution)])
	assert.Equal(t, 1, logs.FilterMessage("ticket created").Len())
	assert.Equal(t, 1, logs.FilterMessage("ticket status changed").Len())
	assert.Equal(t, 2, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
}
