package view

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/tracker"
)

// Text renders the active view as plain terminal output. Output for views
// other than the active one is skipped.
type Text struct {
	w    io.Writer
	view tracker.View
}

// NewText writes to w
func NewText(w io.Writer) *Text {
	return &Text{w: w, view: tracker.ListView}
}

var _ tracker.Renderer = (*Text)(nil)

var titles = map[tracker.View]string{
	tracker.ListView:  "Games",
	tracker.FormView:  "Edit Game",
	tracker.StatsView: "Stats",
}

// SwitchView makes v the active view and prints its heading
func (t *Text) SwitchView(v tracker.View) {
	t.view = v
	fmt.Fprintf(t.w, "\n== %s ==\n", titles[v])
}

// RenderQuery prints the active search, filter and sort
func (t *Text) RenderQuery(s query.State) {
	if t.view != tracker.ListView {
		return
	}
	search := s.Search
	if search == "" {
		search = "-"
	}
	fmt.Fprintf(t.w, "search: %s | result: %s | sort: %s %s | page size: %d\n",
		search, s.Result, s.SortField, s.SortDir, s.PageSize)
}

// RenderRows prints the current page as a table
func (t *Text) RenderRows(games []game.Game) {
	if t.view != tracker.ListView {
		return
	}
	if len(games) == 0 {
		fmt.Fprintln(t.w, "No games match.")
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWEEK\tTEAM\tOPPONENT\tH/A\tPF\tPA\tRESULT")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			g.ID, g.Week, g.Team, g.Opponent, g.HomeAway, g.PointsFor, g.PointsAgainst, g.WithDerivedResult().Result)
	}
	tw.Flush()
}

// RenderPageInfo prints the page position and total count
func (t *Text) RenderPageInfo(page, totalPages, totalCount int) {
	if t.view != tracker.ListView {
		return
	}
	fmt.Fprintf(t.w, "Page %d of %d (%d games)\n", page, totalPages, totalCount)
}

// RenderStats prints the summary
func (t *Text) RenderStats(s stats.Summary) {
	if t.view != tracker.StatsView {
		return
	}
	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total games\t%d\n", s.TotalGames)
	fmt.Fprintf(tw, "Wins\t%d\n", s.Wins)
	fmt.Fprintf(tw, "Losses\t%d\n", s.Losses)
	fmt.Fprintf(tw, "Avg points for\t%s\n", stats.FormatAvg(s.AvgPointsFor))
	high := "-"
	if s.HighestScoringGame != nil {
		high = fmt.Sprintf("%s (%d)", s.HighestScoringGame.Matchup(), s.HighestScoringGame.PointsFor)
	}
	fmt.Fprintf(tw, "Highest scoring game\t%s\n", high)
	tw.Flush()
}

// PopulateForm prints the form values being edited
func (t *Text) PopulateForm(f game.Form) {
	if t.view != tracker.FormView {
		return
	}
	id := f.ID
	if id == "" {
		id = "(new)"
	}
	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", id)
	for _, row := range formRows(f) {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	tw.Flush()
}

// RenderFieldErrors prints one line per invalid field
func (t *Text) RenderFieldErrors(errs game.FieldErrors) {
	if t.view != tracker.FormView || len(errs) == 0 {
		return
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(t.w, "  ! %s: %s\n", field, errs[field])
	}
}

// RenderMessage prints a notice for v when v is active
func (t *Text) RenderMessage(v tracker.View, msg string) {
	if v != t.view || msg == "" {
		return
	}
	fmt.Fprintln(t.w, msg)
}

// formRows lists the editable fields in form order
func formRows(f game.Form) [][2]string {
	return [][2]string{
		{game.FieldTeam, f.Team},
		{game.FieldOpponent, f.Opponent},
		{game.FieldHomeAway, f.HomeAway},
		{game.FieldWeek, f.Week},
		{game.FieldPointsFor, f.PointsFor},
		{game.FieldPointsAgainst, f.PointsAgainst},
	}
}

// FormFields names the editable fields in the order a prompt should ask for them
func FormFields() []string {
	rows := formRows(game.Form{})
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

// FormValue returns the raw value of the named form field
func FormValue(f game.Form, field string) string {
	for _, r := range formRows(f) {
		if r[0] == field {
			return r[1]
		}
	}
	return ""
}

// SetFormField assigns a raw value to the named form field
func SetFormField(f *game.Form, field, value string) bool {
	switch field {
	case game.FieldTeam:
		f.Team = value
	case game.FieldOpponent:
		f.Opponent = value
	case game.FieldHomeAway:
		f.HomeAway = value
	case game.FieldWeek:
		f.Week = value
	case game.FieldPointsFor:
		f.PointsFor = value
	case game.FieldPointsAgainst:
		f.PointsAgainst = value
	default:
		return false
	}
	return true
}
