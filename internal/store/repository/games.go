package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/store"
)

// ErrGameNotFound is returned when no row matches the requested id
var ErrGameNotFound = errors.New("game not found")

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// List returns every game in insertion order
func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	q := `SELECT ` + store.GameColumns + ` FROM games ORDER BY id`

	rows, err := r.db.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ListPage evaluates the selection in SQL: search, derived-result filter,
// sort with id as the tiebreaker, and a page clamped to the last valid one.
func (r *GameRepository) ListPage(ctx context.Context, s query.State) (query.Page, error) {
	s = s.Normalized()
	where, args := whereClause(s)

	var total int
	countQuery := `SELECT COUNT(*) FROM games` + where
	if err := r.db.DB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return query.Page{}, fmt.Errorf("counting games: %w", err)
	}

	totalPages := query.TotalPages(total, s.PageSize)
	page := query.ClampPage(s.Page, totalPages)

	n := len(args)
	listQuery := `SELECT ` + store.GameColumns + ` FROM games` + where +
		` ORDER BY ` + orderClause(s.SortField, s.SortDir) +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, s.PageSize, (page-1)*s.PageSize)

	rows, err := r.db.DB().QueryContext(ctx, listQuery, args...)
	if err != nil {
		return query.Page{}, fmt.Errorf("querying games page: %w", err)
	}
	defer rows.Close()

	items, err := scanGames(rows)
	if err != nil {
		return query.Page{}, err
	}

	return query.Page{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}

// GetByID finds a game by id
func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, error) {
	n, err := parseID(id)
	if err != nil {
		return game.Game{}, err
	}

	q := `SELECT ` + store.GameColumns + ` FROM games WHERE id = $1`

	var row store.GameRow
	err = r.db.DB().QueryRowContext(ctx, q, n).Scan(row.ScanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("querying game: %w", err)
	}

	return row.ToGame(), nil
}

// Create inserts a game and returns it with its new id
func (r *GameRepository) Create(ctx context.Context, g game.Game) (game.Game, error) {
	row := store.RowFromGame(g)
	q := `
		INSERT INTO games (week, team, opponent, home_away, team_score, opponent_score, result, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + store.GameColumns

	var created store.GameRow
	err := r.db.DB().QueryRowContext(ctx, q,
		row.Week, row.Team, row.Opponent, row.HomeAway,
		row.TeamScore, row.OpponentScore, row.Result, row.ImageURL,
	).Scan(created.ScanArgs()...)
	if err != nil {
		return game.Game{}, fmt.Errorf("inserting game: %w", err)
	}

	return created.ToGame(), nil
}

// Update replaces every column of an existing game
func (r *GameRepository) Update(ctx context.Context, g game.Game) (game.Game, error) {
	n, err := parseID(g.ID)
	if err != nil {
		return game.Game{}, err
	}

	row := store.RowFromGame(g)
	q := `
		UPDATE games SET
			week = $2,
			team = $3,
			opponent = $4,
			home_away = $5,
			team_score = $6,
			opponent_score = $7,
			result = $8,
			image_url = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + store.GameColumns

	var updated store.GameRow
	err = r.db.DB().QueryRowContext(ctx, q, n,
		row.Week, row.Team, row.Opponent, row.HomeAway,
		row.TeamScore, row.OpponentScore, row.Result, row.ImageURL,
	).Scan(updated.ScanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, fmt.Errorf("game %s: %w", g.ID, ErrGameNotFound)
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("updating game: %w", err)
	}

	return updated.ToGame(), nil
}

// Delete removes a game
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.db.DB().ExecContext(ctx, `DELETE FROM games WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	return nil
}

// parseID rejects ids that cannot be a SERIAL key. They can never match a
// row, so they are reported as not found.
func parseID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("game %q: %w", id, ErrGameNotFound)
	}
	return n, nil
}

const derivedResult = `CASE WHEN team_score > opponent_score THEN 'W' ELSE 'L' END`

func whereClause(s query.State) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if needle := strings.TrimSpace(s.Search); needle != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(needle))+"%")
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, `(LOWER(team) LIKE `+p+` OR LOWER(opponent) LIKE `+p+`)`)
	}

	if s.Result != query.All {
		args = append(args, string(s.Result))
		conds = append(conds, derivedResult+` = $`+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

var sortColumns = map[query.SortField]string{
	query.SortWeek:          "week",
	query.SortTeam:          "LOWER(team)",
	query.SortOpponent:      "LOWER(opponent)",
	query.SortHomeAway:      "LOWER(home_away)",
	query.SortPointsFor:     "team_score",
	query.SortPointsAgainst: "opponent_score",
	query.SortResult:        derivedResult,
}

func orderClause(field query.SortField, dir query.Direction) string {
	col, ok := sortColumns[field]
	if !ok {
		col = sortColumns[query.SortWeek]
	}
	d := "ASC"
	if dir == query.Desc {
		d = "DESC"
	}
	// id keeps equal keys in insertion order in both directions
	return col + " " + d + ", id ASC"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanGames(rows *sql.Rows) ([]game.Game, error) {
	games := []game.Game{}
	for rows.Next() {
		var row store.GameRow
		if err := rows.Scan(row.ScanArgs()...); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, row.ToGame())
	}

	return games, rows.Err()
}
