package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/stats"
)

// GameList is one GET /games response after normalization
type GameList struct {
	Items []game.Game
	Total int
}

// ErrMissingID is returned when an update or delete is attempted without an id
var ErrMissingID = errors.New("game id is required")

// ListGames fetches games. With nil params the server returns the whole
// collection; with query.Params it returns one page.
func (c *Client) ListGames(ctx context.Context, params url.Values) (*GameList, error) {
	var raw interface{}
	if err := c.do(ctx, "list games", http.MethodGet, "/games", params, nil, &raw); err != nil {
		return nil, err
	}
	return parseList(raw), nil
}

// AllGames fetches the whole collection
func (c *Client) AllGames(ctx context.Context) ([]game.Game, error) {
	list, err := c.ListGames(ctx, nil)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// GetGame fetches a single game
func (c *Client) GetGame(ctx context.Context, id string) (game.Game, error) {
	if id == "" {
		return game.Game{}, ErrMissingID
	}
	var raw map[string]interface{}
	if err := c.do(ctx, "get game", http.MethodGet, "/games/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return game.Game{}, err
	}
	return game.Normalize(unwrap(raw)), nil
}

// CreateGame posts a new game and returns the server's copy
func (c *Client) CreateGame(ctx context.Context, g game.Game) (game.Game, error) {
	g.ID = ""
	var raw map[string]interface{}
	if err := c.do(ctx, "create game", http.MethodPost, "/games", nil, game.ToWire(g), &raw); err != nil {
		return game.Game{}, err
	}
	if len(raw) == 0 {
		return g.WithDerivedResult(), nil
	}
	return game.Normalize(unwrap(raw)), nil
}

// UpdateGame replaces an existing game
func (c *Client) UpdateGame(ctx context.Context, g game.Game) (game.Game, error) {
	if g.ID == "" {
		return game.Game{}, ErrMissingID
	}
	var raw map[string]interface{}
	if err := c.do(ctx, "update game", http.MethodPut, "/games/"+url.PathEscape(g.ID), nil, game.ToWire(g), &raw); err != nil {
		return game.Game{}, err
	}
	if len(raw) == 0 {
		return g.WithDerivedResult(), nil
	}
	return game.Normalize(unwrap(raw)), nil
}

// DeleteGame removes a game
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return c.do(ctx, "delete game", http.MethodDelete, "/games/"+url.PathEscape(id), nil, nil, nil)
}

// Stats fetches the server-side aggregate
func (c *Client) Stats(ctx context.Context) (stats.Summary, error) {
	var raw map[string]interface{}
	if err := c.do(ctx, "load stats", http.MethodGet, "/stats", nil, nil, &raw); err != nil {
		return stats.Summary{}, err
	}
	return stats.FromPayload(raw), nil
}

// parseList accepts {items, total}, {games|data, count} or a bare array
func parseList(raw interface{}) *GameList {
	switch v := raw.(type) {
	case []interface{}:
		items := game.NormalizeAll(v)
		return &GameList{Items: items, Total: len(items)}
	case map[string]interface{}:
		var items []game.Game
		for _, key := range []string{"items", "games", "data"} {
			if arr, ok := v[key].([]interface{}); ok {
				items = game.NormalizeAll(arr)
				break
			}
		}
		if items == nil {
			items = []game.Game{}
		}
		total := len(items)
		for _, key := range []string{"total", "count", "totalCount"} {
			if n, ok := v[key].(float64); ok && n >= 0 {
				total = int(n)
				break
			}
		}
		return &GameList{Items: items, Total: total}
	default:
		return &GameList{Items: []game.Game{}}
	}
}

// unwrap accepts both a bare record and {"game": {...}}
func unwrap(raw map[string]interface{}) map[string]interface{} {
	if inner, ok := raw["game"].(map[string]interface{}); ok {
		if _, hasID := raw["id"]; !hasID {
			return inner
		}
	}
	return raw
}
