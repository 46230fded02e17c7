package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/redis/go-redis/v9"
)

// ChangesStream is the Redis stream receiving one entry per game mutation
const ChangesStream = "games.changes"

// maxStreamLen caps the stream; older entries are trimmed approximately
const maxStreamLen = 10000

// Action names a mutation
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// GameEvent describes one mutation. Game is nil for deletes.
type GameEvent struct {
	Action Action     `json:"action"`
	ID     string     `json:"id"`
	Game   *game.Wire `json:"game,omitempty"`
	At     time.Time  `json:"at"`
}

// NewGameEvent stamps an event with the current time
func NewGameEvent(action Action, id string, g *game.Game) GameEvent {
	ev := GameEvent{Action: action, ID: id, At: time.Now().UTC()}
	if g != nil {
		w := game.ToWire(*g)
		ev.Game = &w
	}
	return ev
}

// RedisPublisher appends game events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	owned  bool
}

// NewRedisPublisher connects to redisURL and pings it
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisPublisher{client: client, owned: true}, nil
}

// NewRedisStreamPublisher publishes through an existing client, which the
// publisher will not close
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Close closes the Redis connection when the publisher opened it
func (rp *RedisPublisher) Close() error {
	if !rp.owned {
		return nil
	}
	return rp.client.Close()
}

// PublishGameChange appends ev to ChangesStream
func (rp *RedisPublisher) PublishGameChange(ctx context.Context, ev GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding game event: %w", err)
	}

	err = rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: ChangesStream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"action":    string(ev.Action),
			"id":        ev.ID,
			"data":      string(data),
			"timestamp": ev.At.Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing game event: %w", err)
	}
	return nil
}

// ReadGameChanges returns up to count events published after lastID ("0"
// for the beginning) and the id to resume from. It does not block.
func (rp *RedisPublisher) ReadGameChanges(ctx context.Context, lastID string, count int64) ([]GameEvent, string, error) {
	if lastID == "" {
		lastID = "0"
	}
	streams, err := rp.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{ChangesStream, lastID},
		Count:   count,
		Block:   -1,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, fmt.Errorf("reading game events: %w", err)
	}

	var events []GameEvent
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			lastID = msg.ID
			raw, ok := msg.Values["data"].(string)
			if !ok {
				continue
			}
			var ev GameEvent
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				continue
			}
			events = append(events, ev)
		}
	}
	return events, lastID, nil
}

// LatestChangeID returns the id of the newest stream entry, or "0" when the
// stream is empty. Readers that only want future events start from it.
func (rp *RedisPublisher) LatestChangeID(ctx context.Context) (string, error) {
	msgs, err := rp.client.XRevRangeN(ctx, ChangesStream, "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("reading latest game event id: %w", err)
	}
	if len(msgs) == 0 {
		return "0", nil
	}
	return msgs[0].ID, nil
}
