package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/session"
)

// Watcher relays remote session changes until its context ends.
type Watcher interface {
	Watch(ctx context.Context) error
}

// SessionWorker keeps a session watcher running, restarting it after failures.
type SessionWorker struct {
	watcher Watcher
	logger  *zap.Logger
	backoff time.Duration
}

// NewSessionWorker builds a worker. A zero backoff defaults to one second.
func NewSessionWorker(watcher Watcher, logger *zap.Logger, backoff time.Duration) *SessionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &SessionWorker{watcher: watcher, logger: logger, backoff: backoff}
}

// Run blocks until ctx is cancelled.
func (w *SessionWorker) Run(ctx context.Context) {
	for {
		err := w.watcher.Watch(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.logger.Warn("session watcher stopped", zap.Error(err), zap.Duration("retry_in", w.backoff))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff):
		}
	}
}

// LogSessionChanges subscribes a listener that logs every session change and returns the
// unsubscribe function.
func LogSessionChanges(store session.Store, logger *zap.Logger) func() {
	return store.Subscribe(func(change session.Change) {
		fields := []zap.Field{
			zap.String("kind", string(change.Kind)),
			zap.String("session_id", change.SessionID),
		}
		if change.State != nil {
			fields = append(fields, zap.String("user_id", change.State.UserID), zap.String("role", string(change.State.Role)))
		}
		logger.Debug("session changed", fields...)
	})
}
