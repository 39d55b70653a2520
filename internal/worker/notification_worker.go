package worker

import (
	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/service"
)

// StartNotificationWorker subscribes the notification service to ticket events.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		logger.Warn("notifications disabled")
		return
	}
	subscribed := notifications.RegisterHandlers()
	names := make([]string, 0, len(subscribed))
	for _, eventType := range subscribed {
		names = append(names, string(eventType))
	}
	logger.Info("notification handlers registered", zap.Strings("events", names))
}
