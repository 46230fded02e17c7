// Package scheduler runs the background loops of the API process.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/publisher"
)

// ChangeReader is the read side of the change stream
type ChangeReader interface {
	LatestChangeID(ctx context.Context) (string, error)
	ReadGameChanges(ctx context.Context, lastID string, count int64) ([]publisher.GameEvent, string, error)
}

// ChangeSink receives relayed events, typically the websocket hub
type ChangeSink interface {
	PublishGameChange(ctx context.Context, ev publisher.GameEvent) error
}

// Config holds relay configuration
type Config struct {
	PollInterval time.Duration // Default: 500ms
	BatchSize    int64         // Default: 100
	MaxRetries   int           // Default: 3
	RetryDelay   time.Duration // Default: 1s
}

// DefaultConfig returns default relay configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 500 * time.Millisecond,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Relay polls the Redis change stream and forwards every new event to a
// sink, so watchers connected to any API instance see every write.
type Relay struct {
	reader ChangeReader
	sink   ChangeSink
	config *Config
	logger *log.Logger

	mu     sync.Mutex
	lastID string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRelay creates a relay. A nil config uses DefaultConfig.
func NewRelay(reader ChangeReader, sink ChangeSink, config *Config) *Relay {
	if config == nil {
		config = DefaultConfig()
	}
	return &Relay{
		reader: reader,
		sink:   sink,
		config: config,
		logger: log.Default(),
		done:   make(chan struct{}),
	}
}

// Start relays events published from now on until ctx ends or Stop is called
func (r *Relay) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer close(r.done)

	lastID, err := r.reader.LatestChangeID(ctx)
	if err != nil {
		r.logger.Printf("[relay] ⚠️  could not read stream position, replaying from start: %v", err)
		lastID = "0"
	}
	r.setLastID(lastID)

	r.logger.Printf("[relay] → forwarding %s from %s (interval: %v)", publisher.ChangesStream, lastID, r.config.PollInterval)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("[relay] → stopped")
			return
		case <-ticker.C:
			r.pollWithRetry(ctx)
		}
	}
}

// pollWithRetry drains everything new since the last poll
func (r *Relay) pollWithRetry(ctx context.Context) {
	for {
		var (
			events []publisher.GameEvent
			next   string
			err    error
		)
		for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
			events, next, err = r.reader.ReadGameChanges(ctx, r.LastID(), r.config.BatchSize)
			if err == nil {
				break
			}
			r.logger.Printf("[relay] ⚠️  read attempt %d/%d failed: %v", attempt, r.config.MaxRetries, err)
			if attempt < r.config.MaxRetries {
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.config.RetryDelay):
				}
			}
		}
		if err != nil {
			return
		}

		for _, ev := range events {
			if err := r.sink.PublishGameChange(ctx, ev); err != nil {
				r.logger.Printf("[relay] ⚠️  failed to forward %s event for game %s: %v", ev.Action, ev.ID, err)
			}
		}
		r.setLastID(next)

		if int64(len(events)) < r.config.BatchSize {
			return
		}
	}
}

// LastID is the stream id of the last forwarded entry
func (r *Relay) LastID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastID
}

func (r *Relay) setLastID(id string) {
	r.mu.Lock()
	r.lastID = id
	r.mu.Unlock()
}

// Stop ends Start and waits for it to return
func (r *Relay) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-r.done
}
