package publisher

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fortuna/gridiron/internal/game"
	"github.com/redis/go-redis/v9"
)

func TestPublishAndReadGameChanges(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	pub, err := NewRedisPublisher("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisPublisher: %v", err)
	}
	defer pub.Close()

	if id, err := pub.LatestChangeID(ctx); err != nil || id != "0" {
		t.Fatalf("expected id 0 on an empty stream, got %q %v", id, err)
	}

	events, last, err := pub.ReadGameChanges(ctx, "", 10)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected no events yet, got %v %v", events, err)
	}

	g := game.Game{ID: "4", Team: "Georgia", Opponent: "Clemson", Week: 1, HomeAway: game.Home, PointsFor: 30, PointsAgainst: 10}
	if err := pub.PublishGameChange(ctx, NewGameEvent(ActionCreated, "4", &g)); err != nil {
		t.Fatalf("PublishGameChange: %v", err)
	}
	if err := pub.PublishGameChange(ctx, NewGameEvent(ActionDeleted, "4", nil)); err != nil {
		t.Fatalf("PublishGameChange: %v", err)
	}

	events, last, err = pub.ReadGameChanges(ctx, last, 10)
	if err != nil {
		t.Fatalf("ReadGameChanges: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != ActionCreated || events[0].Game == nil || events[0].Game.Result != game.Win {
		t.Errorf("unexpected create event %+v", events[0])
	}
	if events[0].Game.TeamScore != 30 {
		t.Errorf("event should carry the wire aliases, got %+v", events[0].Game)
	}
	if events[1].Action != ActionDeleted || events[1].Game != nil {
		t.Errorf("unexpected delete event %+v", events[1])
	}

	if id, err := pub.LatestChangeID(ctx); err != nil || id != last {
		t.Errorf("expected latest id %q, got %q %v", last, id, err)
	}

	more, _, err := pub.ReadGameChanges(ctx, last, 10)
	if err != nil || len(more) != 0 {
		t.Fatalf("reading from the last id should return nothing new, got %v %v", more, err)
	}

	entries, err := mr.Stream(ChangesStream)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 stream entries, got %d %v", len(entries), err)
	}
}

func TestSharedClientNotClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewRedisStreamPublisher(client)
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("shared client should stay open: %v", err)
	}
}

func TestNewRedisPublisher_BadURL(t *testing.T) {
	if _, err := NewRedisPublisher("not a url"); err == nil {
		t.Fatalf("expected error")
	}
}
