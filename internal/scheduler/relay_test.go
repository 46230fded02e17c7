package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/publisher"
)

type recordingSink struct {
	mu     sync.Mutex
	events []publisher.GameEvent
}

func (s *recordingSink) PublishGameChange(ctx context.Context, ev publisher.GameEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) snapshot() []publisher.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publisher.GameEvent(nil), s.events...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func fastConfig() *Config {
	return &Config{PollInterval: 10 * time.Millisecond, BatchSize: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestRelayForwardsNewEvents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	pub, err := publisher.NewRedisPublisher("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisPublisher: %v", err)
	}
	defer pub.Close()

	old := game.Game{ID: "1", Team: "Texas", Opponent: "Rice", PointsFor: 7}
	if err := pub.PublishGameChange(ctx, publisher.NewGameEvent(publisher.ActionCreated, "1", &old)); err != nil {
		t.Fatalf("PublishGameChange: %v", err)
	}

	sink := &recordingSink{}
	relay := NewRelay(pub, sink, fastConfig())
	go relay.Start(ctx)
	defer relay.Stop()

	waitFor(t, "start position", func() bool { return relay.LastID() != "" })

	g := game.Game{ID: "2", Team: "Georgia", Opponent: "Clemson", PointsFor: 34, PointsAgainst: 3}
	pub.PublishGameChange(ctx, publisher.NewGameEvent(publisher.ActionCreated, "2", &g))
	pub.PublishGameChange(ctx, publisher.NewGameEvent(publisher.ActionDeleted, "2", nil))

	waitFor(t, "relayed events", func() bool { return len(sink.snapshot()) >= 2 })

	events := sink.snapshot()
	if len(events) != 2 {
		t.Fatalf("expected only the 2 new events, got %+v", events)
	}
	if events[0].ID != "2" || events[0].Action != publisher.ActionCreated || events[1].Action != publisher.ActionDeleted {
		t.Errorf("unexpected events %+v", events)
	}
}

type failingReader struct {
	mu    sync.Mutex
	reads int
}

func (f *failingReader) LatestChangeID(ctx context.Context) (string, error) {
	return "", errors.New("no stream")
}

func (f *failingReader) ReadGameChanges(ctx context.Context, lastID string, count int64) ([]publisher.GameEvent, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return nil, lastID, errors.New("connection refused")
}

func (f *failingReader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func TestRelayKeepsPollingThroughErrors(t *testing.T) {
	reader := &failingReader{}
	sink := &recordingSink{}
	relay := NewRelay(reader, sink, fastConfig())
	go relay.Start(context.Background())

	waitFor(t, "repeated polls", func() bool { return reader.count() >= 4 })
	relay.Stop()

	if relay.LastID() != "0" {
		t.Errorf("expected replay from 0 after a position error, got %q", relay.LastID())
	}
	if len(sink.snapshot()) != 0 {
		t.Errorf("nothing should be forwarded")
	}
}
