package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/gorilla/websocket"
)

// Watch connects to a /ws/games endpoint and delivers each game change on
// the returned channel. The channel is closed when ctx ends or the
// connection drops.
func Watch(ctx context.Context, url string) (<-chan publisher.GameEvent, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	events := make(chan publisher.GameEvent, 16)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[ws-watch] connection lost: %v", err)
				}
				return
			}

			var ev publisher.GameEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("[ws-watch] ⚠️  skipping malformed event: %v", err)
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
