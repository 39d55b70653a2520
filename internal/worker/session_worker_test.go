package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/session"
)

type flakyWatcher struct {
	calls  atomic.Int32
	cancel context.CancelFunc
}

func (w *flakyWatcher) Watch(ctx context.Context) error {
	if w.calls.Add(1) >= 3 {
		w.cancel()
		<-ctx.Done()
		return nil
	}
	return errors.New("connection refused")
}

func TestSessionWorkerRestartsWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher := &flakyWatcher{cancel: cancel}

	done := make(chan struct{})
	go func() {
		NewSessionWorker(watcher, zap.NewNop(), time.Millisecond).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int32(3), watcher.calls.Load())
}

func TestLogSessionChanges(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	store := session.NewMemoryStore()
	unsubscribe := LogSessionChanges(store, zap.New(core))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, session.State{
		ID:        "s-1",
		UserID:    "u-1",
		Role:      domain.RoleAgent,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Delete(ctx, "s-1"))

	unsubscribe()
	require.NoError(t, store.Delete(ctx, "s-1"))

	entries := logs.FilterMessage("session changed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "saved", entries[0].ContextMap()["kind"])
	assert.Equal(t, "u-1", entries[0].ContextMap()["user_id"])
	assert.Equal(t, "deleted", entries[1].ContextMap()["kind"])
}
