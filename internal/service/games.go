package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/query"
)

// GameRepository is the storage the game service runs on. Both the
// PostgreSQL and the in-memory repositories satisfy it.
type GameRepository interface {
	List(ctx context.Context) ([]game.Game, error)
	ListPage(ctx context.Context, s query.State) (query.Page, error)
	GetByID(ctx context.Context, id string) (game.Game, error)
	Create(ctx context.Context, g game.Game) (game.Game, error)
	Update(ctx context.Context, g game.Game) (game.Game, error)
	Delete(ctx context.Context, id string) error
}

// ChangePublisher is told about every successful mutation
type ChangePublisher interface {
	PublishGameChange(ctx context.Context, ev publisher.GameEvent) error
}

// MultiPublisher fans an event out to several publishers
type MultiPublisher []ChangePublisher

// PublishGameChange publishes to every publisher and joins their errors
func (m MultiPublisher) PublishGameChange(ctx context.Context, ev publisher.GameEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishGameChange(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GameService handles game-related business logic
type GameService struct {
	repo      GameRepository
	publisher ChangePublisher
	stats     *StatsService
	logger    *log.Logger
}

// NewGameService creates a new game service. pub and stats may be nil.
func NewGameService(repo GameRepository, pub ChangePublisher, stats *StatsService) *GameService {
	return &GameService{
		repo:      repo,
		publisher: pub,
		stats:     stats,
		logger:    log.Default(),
	}
}

// ListGames returns the whole collection
func (s *GameService) ListGames(ctx context.Context) ([]game.Game, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}
	return games, nil
}

// ListPage returns one evaluated page of the collection
func (s *GameService) ListPage(ctx context.Context, q query.State) (query.Page, error) {
	page, err := s.repo.ListPage(ctx, q)
	if err != nil {
		return query.Page{}, fmt.Errorf("fetching games page: %w", err)
	}
	return page, nil
}

// GetGame retrieves a game by id
func (s *GameService) GetGame(ctx context.Context, id string) (game.Game, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return game.Game{}, fmt.Errorf("fetching game: %w", err)
	}
	return g, nil
}

// CreateGame validates and stores a new game. Validation failures are
// returned as game.FieldErrors.
func (s *GameService) CreateGame(ctx context.Context, g game.Game) (game.Game, error) {
	g = prepare(g)
	if errs := validate(g); errs != nil {
		return game.Game{}, errs
	}

	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return game.Game{}, fmt.Errorf("creating game: %w", err)
	}

	s.changed(ctx, publisher.ActionCreated, created.ID, &created)
	return created, nil
}

// UpdateGame validates and replaces an existing game
func (s *GameService) UpdateGame(ctx context.Context, g game.Game) (game.Game, error) {
	g = prepare(g)
	if errs := validate(g); errs != nil {
		return game.Game{}, errs
	}

	updated, err := s.repo.Update(ctx, g)
	if err != nil {
		return game.Game{}, fmt.Errorf("updating game: %w", err)
	}

	s.changed(ctx, publisher.ActionUpdated, updated.ID, &updated)
	return updated, nil
}

// DeleteGame removes a game
func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}

	s.changed(ctx, publisher.ActionDeleted, id, nil)
	return nil
}

// prepare applies the write-path canonicalization: title-cased names and a
// result derived from the score
func prepare(g game.Game) game.Game {
	g.Team = game.TitleCase(g.Team)
	g.Opponent = game.TitleCase(g.Opponent)
	if g.ImageURL == "" {
		g.ImageURL = game.PlaceholderURL
	}
	if g.HomeAway == "" {
		g.HomeAway = game.UnknownVenue
	}
	return g.WithDerivedResult()
}

// validate applies the form rules, except that API writers may leave the
// venue unknown
func validate(g game.Game) game.FieldErrors {
	errs := game.Validate(g)
	if g.HomeAway == game.UnknownVenue {
		delete(errs, game.FieldHomeAway)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// changed drops cached stats and announces the mutation. Failures here never
// undo a write that already succeeded.
func (s *GameService) changed(ctx context.Context, action publisher.Action, id string, g *game.Game) {
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.logger.Printf("⚠️  failed to invalidate stats cache: %v", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishGameChange(ctx, publisher.NewGameEvent(action, id, g)); err != nil {
			s.logger.Printf("⚠️  failed to publish %s event for game %s: %v", action, id, err)
		}
	}
}
