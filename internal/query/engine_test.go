package query

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/fortuna/gridiron/internal/game"
)

func makeGames(n int) []game.Game {
	games := make([]game.Game, 0, n)
	for i := 0; i < n; i++ {
		g := game.Game{
			ID:            fmt.Sprintf("%d", i+1),
			Week:          (i % 12) + 1,
			Team:          fmt.Sprintf("Team %02d", i),
			Opponent:      fmt.Sprintf("Opp %02d", n-i),
			HomeAway:      game.Home,
			PointsFor:     (i * 7) % 50,
			PointsAgainst: (i * 5) % 40,
		}
		games = append(games, g.WithDerivedResult())
	}
	return games
}

func TestApply_PassThroughIsSortPlusPaginate(t *testing.T) {
	games := makeGames(23)
	s := DefaultState()
	s.Page = 2

	page := Apply(games, s)

	sorted := Sort(games, SortWeek, Asc)
	want := sorted[10:20]
	if !reflect.DeepEqual(page.Items, want) {
		t.Fatalf("expected page 2 of the sorted input\nwant %v\ngot  %v", want, page.Items)
	}
	if len(page.Items) > s.PageSize {
		t.Fatalf("page larger than page size: %d", len(page.Items))
	}
	if page.TotalCount != 23 {
		t.Errorf("expected total 23, got %d", page.TotalCount)
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	games := makeGames(8)
	before := append([]game.Game(nil), games...)

	s := DefaultState()
	s.SortField = SortTeam
	s.SortDir = Desc
	Apply(games, s)

	if !reflect.DeepEqual(games, before) {
		t.Fatalf("Apply reordered its input")
	}
}

func TestApply_ClampsStalePage(t *testing.T) {
	games := makeGames(23)

	s := DefaultState()
	s.Page = 5
	clamped := Apply(games, s)

	s.Page = 3
	last := Apply(games, s)

	if clamped.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", clamped.TotalPages)
	}
	if clamped.Page != 3 {
		t.Errorf("expected page clamped to 3, got %d", clamped.Page)
	}
	if !reflect.DeepEqual(clamped.Items, last.Items) {
		t.Errorf("expected page 5 to equal page 3")
	}
	if len(last.Items) != 3 {
		t.Errorf("expected 3 items on the last page, got %d", len(last.Items))
	}
}

func TestApply_ClampAfterFilterShrinksResult(t *testing.T) {
	games := makeGames(40)
	s := DefaultState()
	s.Page = 4
	s.Search = "team 0"

	page := Apply(games, s)

	if page.TotalCount != 10 {
		t.Fatalf("expected 10 matches for 'team 0', got %d", page.TotalCount)
	}
	if page.Page != 1 || len(page.Items) != 10 {
		t.Fatalf("expected clamp to the single page, got page %d with %d items", page.Page, len(page.Items))
	}
}

func TestApply_EmptyInput(t *testing.T) {
	page := Apply(nil, DefaultState())

	if page.TotalPages != 1 || page.Page != 1 {
		t.Fatalf("expected one empty page, got %+v", page)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", page.Items)
	}
}

func TestApply_IdempotentOnItsOwnSlice(t *testing.T) {
	games := makeGames(23)
	for _, p := range []int{1, 2, 3} {
		s := DefaultState()
		s.Page = p
		s.SortField = SortPointsFor
		s.SortDir = Desc

		first := Apply(games, s)
		again := Apply(first.Items, s)

		if !reflect.DeepEqual(first.Items, again.Items) {
			t.Fatalf("page %d: re-applying changed the slice\nfirst %v\nagain %v", p, first.Items, again.Items)
		}
	}
}

func TestSort_StableInBothDirections(t *testing.T) {
	games := []game.Game{
		{ID: "a", Week: 2, Team: "texas"},
		{ID: "b", Week: 1, Team: "Texas"},
		{ID: "c", Week: 2, Team: "Alabama"},
		{ID: "d", Week: 1, Team: "TEXAS"},
	}

	ids := func(gs []game.Game) string {
		out := ""
		for _, g := range gs {
			out += g.ID
		}
		return out
	}

	if got := ids(Sort(games, SortWeek, Asc)); got != "bdac" {
		t.Errorf("week asc: got %s, want bdac", got)
	}
	if got := ids(Sort(games, SortWeek, Desc)); got != "acbd" {
		t.Errorf("week desc: got %s, want acbd", got)
	}
	if got := ids(Sort(games, SortTeam, Asc)); got != "cabd" {
		t.Errorf("team asc: got %s, want cabd", got)
	}
	if got := ids(Sort(games, SortTeam, Desc)); got != "abdc" {
		t.Errorf("team desc: got %s, want abdc", got)
	}
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	games := []game.Game{
		{ID: "1", Team: "Ohio State", Opponent: "Michigan"},
		{ID: "2", Team: "Texas", Opponent: "Oklahoma"},
	}

	for _, q := range []string{"tex", "TEX", "Tex", "  tex  "} {
		s := DefaultState()
		s.Search = q
		got := Filter(games, s)
		if len(got) != 1 || got[0].ID != "2" {
			t.Errorf("search %q: expected only Texas, got %v", q, got)
		}
	}
}

func TestFilter_SearchMatchesOpponent(t *testing.T) {
	games := []game.Game{
		{ID: "1", Team: "Ohio State", Opponent: "Michigan"},
		{ID: "2", Team: "Texas", Opponent: "Oklahoma"},
	}
	s := DefaultState()
	s.Search = "mich"

	got := Filter(games, s)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected the Michigan game, got %v", got)
	}
}

func TestFilter_ResultUsesDerivedOutcome(t *testing.T) {
	games := []game.Game{
		{ID: "1", PointsFor: 10, PointsAgainst: 3, Result: game.Loss},
		{ID: "2", PointsFor: 3, PointsAgainst: 10, Result: game.Win},
		{ID: "3", PointsFor: 7, PointsAgainst: 7},
	}

	s := DefaultState()
	s.Result = OnlyW
	wins := Filter(games, s)
	if len(wins) != 1 || wins[0].ID != "1" {
		t.Fatalf("expected game 1 as the only win, got %v", wins)
	}

	s.Result = OnlyL
	if losses := Filter(games, s); len(losses) != 2 {
		t.Fatalf("expected 2 losses including the tie, got %v", losses)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ count, size, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{5, 0, 1},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.count, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.count, tc.size, got, tc.want)
		}
	}
}
