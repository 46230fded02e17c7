package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fortuna/gridiron/internal/game"
)

// Page is one evaluated slice of the list plus the counts the view needs
type Page struct {
	Items      []game.Game `json:"items"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	TotalCount int         `json:"total"`
}

// Apply runs the full client-side pipeline: text search, result filter,
// stable sort, then pagination clamped to the last valid page.
// The input slice is never modified.
func Apply(games []game.Game, s State) Page {
	s = s.Normalized()

	matched := Filter(games, s)
	sorted := Sort(matched, s.SortField, s.SortDir)

	totalPages := TotalPages(len(sorted), s.PageSize)
	page := ClampPage(s.Page, totalPages)

	start := (page - 1) * s.PageSize
	end := min(start+s.PageSize, len(sorted))

	items := make([]game.Game, 0, end-start)
	items = append(items, sorted[start:end]...)

	return Page{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: len(sorted),
	}
}

// Filter applies the text search and the result filter, keeping input order
func Filter(games []game.Game, s State) []game.Game {
	needle := strings.ToLower(strings.TrimSpace(s.Search))
	result := ParseResultFilter(string(s.Result))

	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if needle != "" &&
			!strings.Contains(strings.ToLower(g.Team), needle) &&
			!strings.Contains(strings.ToLower(g.Opponent), needle) {
			continue
		}
		if result != All && string(g.WithDerivedResult().Result) != string(result) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Sort returns a stably sorted copy. Descending order only flips the
// comparison, so equal keys keep their input order either way.
func Sort(games []game.Game, field SortField, dir Direction) []game.Game {
	out := slices.Clone(games)
	if out == nil {
		out = []game.Game{}
	}

	slices.SortStableFunc(out, func(a, b game.Game) int {
		c := compareBy(a, b, field)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func compareBy(a, b game.Game, field SortField) int {
	switch field {
	case SortTeam:
		return compareFold(a.Team, b.Team)
	case SortOpponent:
		return compareFold(a.Opponent, b.Opponent)
	case SortHomeAway:
		return compareFold(string(a.HomeAway), string(b.HomeAway))
	case SortPointsFor:
		return cmp.Compare(a.PointsFor, b.PointsFor)
	case SortPointsAgainst:
		return cmp.Compare(a.PointsAgainst, b.PointsAgainst)
	case SortResult:
		return compareFold(string(a.WithDerivedResult().Result), string(b.WithDerivedResult().Result))
	default:
		return cmp.Compare(a.Week, b.Week)
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// TotalPages is max(1, ceil(count/pageSize))
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	return max(1, pages)
}

// ClampPage keeps page inside [1, totalPages]
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
