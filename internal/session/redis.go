package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps sessions in Redis with a TTL matching the token lifetime and
// publishes every change on a channel.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	channel   string
	origin    string
	listeners listeners
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedisStore builds a store over client. logger may be nil.
func NewRedisStore(client *redis.Client, keyPrefix, channel string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:  client,
		prefix:  keyPrefix,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
		now:     time.Now,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Save(ctx context.Context, state State) error {
	ttl := state.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", state.ID)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(state.ID), payload, ttl).Err(); err != nil {
		return err
	}
	r.emit(ctx, Change{Kind: ChangeSaved, SessionID: state.ID, State: &state})
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return err
	}
	if removed > 0 {
		r.emit(ctx, Change{Kind: ChangeDeleted, SessionID: id})
	}
	return nil
}

func (r *RedisStore) Subscribe(listener Listener) func() {
	return r.listeners.add(listener)
}

// Watch relays changes published by other store instances to local listeners until ctx ends.
func (r *RedisStore) Watch(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil || change.Origin == r.origin {
				continue
			}
			r.listeners.notify(change)
		}
	}
}

// emit notifies local listeners and publishes the change. A failed publish is logged and
// does not fail the write that caused it.
func (r *RedisStore) emit(ctx context.Context, change Change) {
	change.Origin = r.origin
	r.listeners.notify(change)
	if r.channel == "" {
		return
	}
	payload, err := json.Marshal(change)
	if err == nil {
		err = r.client.Publish(ctx, r.channel, payload).Err()
	}
	if err != nil {
		r.logger.Warn("session change not published",
			zap.String("channel", r.channel),
			zap.String("session_id", change.SessionID),
			zap.String("kind", string(change.Kind)),
			zap.Error(err))
	}
}
