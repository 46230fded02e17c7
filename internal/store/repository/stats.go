package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/store"
)

// StatsRepository computes the season aggregate in SQL
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// Summary returns totals, wins, losses, average points for and the highest
// scoring game. Ties on points go to the lowest id, matching stats.Compute
// over the List order.
func (r *StatsRepository) Summary(ctx context.Context) (stats.Summary, error) {
	q := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE team_score > opponent_score),
			COALESCE(AVG(team_score), 0)
		FROM games
	`

	var s stats.Summary
	var avg float64
	if err := r.db.DB().QueryRowContext(ctx, q).Scan(&s.TotalGames, &s.Wins, &avg); err != nil {
		return stats.Summary{}, fmt.Errorf("querying stats: %w", err)
	}
	s.Losses = s.TotalGames - s.Wins
	s.AvgPointsFor = stats.RoundTenth(avg)

	if s.TotalGames == 0 {
		return s, nil
	}

	highQuery := `SELECT ` + store.GameColumns + ` FROM games ORDER BY team_score DESC, id ASC LIMIT 1`

	var row store.GameRow
	err := r.db.DB().QueryRowContext(ctx, highQuery).Scan(row.ScanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return stats.Summary{}, fmt.Errorf("querying highest scoring game: %w", err)
	}

	high := row.ToGame()
	s.HighestScoringGame = &high
	return s, nil
}
