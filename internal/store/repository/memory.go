package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
)

// MemoryGameRepository keeps games in process. It backs the API when no
// DATABASE_URL is configured and serves as the test double for services.
type MemoryGameRepository struct {
	mu     sync.RWMutex
	games  []game.Game
	nextID int
}

// NewMemoryGameRepository creates a repository seeded with games. Seeded
// games without an id are given one.
func NewMemoryGameRepository(seed ...game.Game) *MemoryGameRepository {
	r := &MemoryGameRepository{nextID: 1}
	for _, g := range seed {
		if g.ID == "" {
			g.ID = strconv.Itoa(r.nextID)
		}
		if n, err := strconv.Atoi(g.ID); err == nil && n >= r.nextID {
			r.nextID = n + 1
		}
		r.games = append(r.games, g.WithDerivedResult())
	}
	return r
}

// List returns every stored game in insertion order
func (r *MemoryGameRepository) List(ctx context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]game.Game{}, r.games...), nil
}

// ListPage filters, sorts and slices the stored games
func (r *MemoryGameRepository) ListPage(ctx context.Context, s query.State) (query.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return query.Apply(r.games, s), nil
}

// GetByID returns the game with the given id or ErrGameNotFound
func (r *MemoryGameRepository) GetByID(ctx context.Context, id string) (game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.games[i], nil
	}
	return game.Game{}, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
}

// Create stores a game under the next free id
func (r *MemoryGameRepository) Create(ctx context.Context, g game.Game) (game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = strconv.Itoa(r.nextID)
	r.nextID++
	g = g.WithDerivedResult()
	r.games = append(r.games, g)
	return g, nil
}

// Update replaces the stored game with the same id
func (r *MemoryGameRepository) Update(ctx context.Context, g game.Game) (game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(g.ID)
	if i < 0 {
		return game.Game{}, fmt.Errorf("game %s: %w", g.ID, ErrGameNotFound)
	}
	g = g.WithDerivedResult()
	r.games[i] = g
	return g, nil
}

// Delete removes the game with the given id
func (r *MemoryGameRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	r.games = append(r.games[:i], r.games[i+1:]...)
	return nil
}

// Summary aggregates the stored games
func (r *MemoryGameRepository) Summary(ctx context.Context) (stats.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return stats.Compute(r.games), nil
}

func (r *MemoryGameRepository) index(id string) int {
	for i := range r.games {
		if r.games[i].ID == id {
			return i
		}
	}
	return -1
}
