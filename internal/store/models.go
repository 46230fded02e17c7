package store

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/fortuna/gridiron/internal/game"
)

// GameRow is one row of the games table
type GameRow struct {
	ID            int            `db:"id"`
	Week          int            `db:"week"`
	Team          string         `db:"team"`
	Opponent      string         `db:"opponent"`
	HomeAway      string         `db:"home_away"`
	TeamScore     int            `db:"team_score"`
	OpponentScore int            `db:"opponent_score"`
	Result        string         `db:"result"`
	ImageURL      sql.NullString `db:"image_url"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// GameColumns is the select list matching GameRow.ScanArgs
const GameColumns = `id, week, team, opponent, home_away, team_score, opponent_score,
	result, image_url, created_at, updated_at`

// ScanArgs returns the destinations for a GameColumns select
func (r *GameRow) ScanArgs() []interface{} {
	return []interface{}{
		&r.ID, &r.Week, &r.Team, &r.Opponent, &r.HomeAway, &r.TeamScore, &r.OpponentScore,
		&r.Result, &r.ImageURL, &r.CreatedAt, &r.UpdatedAt,
	}
}

// ToGame converts the row to the canonical record. The result column is
// ignored in favor of the scores.
func (r GameRow) ToGame() game.Game {
	g := game.Game{
		ID:            strconv.Itoa(r.ID),
		Week:          r.Week,
		Team:          r.Team,
		Opponent:      r.Opponent,
		HomeAway:      game.ParseHomeAway(r.HomeAway),
		PointsFor:     r.TeamScore,
		PointsAgainst: r.OpponentScore,
		ImageURL:      game.PlaceholderURL,
	}
	if r.ImageURL.Valid && r.ImageURL.String != "" {
		g.ImageURL = r.ImageURL.String
	}
	return g.WithDerivedResult()
}

// RowFromGame builds the column values for an insert or update. The id is
// not set.
func RowFromGame(g game.Game) GameRow {
	g = g.WithDerivedResult()
	row := GameRow{
		Week:          g.Week,
		Team:          g.Team,
		Opponent:      g.Opponent,
		HomeAway:      string(g.HomeAway),
		TeamScore:     g.PointsFor,
		OpponentScore: g.PointsAgainst,
		Result:        string(g.Result),
	}
	if g.ImageURL != "" && g.ImageURL != game.PlaceholderURL {
		row.ImageURL = sql.NullString{String: g.ImageURL, Valid: true}
	}
	return row
}
