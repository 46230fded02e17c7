package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/tracker"
)

var sample = []game.Game{
	{ID: "1", Week: 1, Team: "Texas", Opponent: "Rice", HomeAway: game.Home, PointsFor: 31, PointsAgainst: 10},
	{ID: "2", Week: 2, Team: "<script>alert(1)</script>", Opponent: "Alabama", HomeAway: game.Away, PointsFor: 20, PointsAgainst: 20, ImageURL: "img/bama.png"},
}

func paintList(r tracker.Renderer) {
	r.SwitchView(tracker.ListView)
	r.RenderQuery(query.DefaultState())
	r.RenderRows(sample)
	r.RenderPageInfo(1, 1, 2)
	r.PopulateForm(game.Form{})
	r.RenderFieldErrors(nil)
	r.RenderMessage(tracker.ListView, "Saved.")
	r.RenderMessage(tracker.FormView, "")
	r.RenderMessage(tracker.StatsView, "")
}

func TestHTML_ListView(t *testing.T) {
	h := NewHTML()
	paintList(h)

	var buf bytes.Buffer
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	rows := doc.Find("#gamesTable tbody tr")
	if rows.Length() != 2 {
		t.Fatalf("expected 2 rows, got %d", rows.Length())
	}

	first := rows.First()
	if got := first.Find("td.result").Text(); got != "W" {
		t.Errorf("expected W, got %q", got)
	}
	if src, _ := first.Find("img").Attr("src"); src != game.PlaceholderURL {
		t.Errorf("expected placeholder image, got %q", src)
	}
	if alt, _ := first.Find("img").Attr("alt"); alt != "Texas vs Rice (Week 1)" {
		t.Errorf("unexpected alt text %q", alt)
	}

	second := rows.Eq(1)
	if got := second.Find("td.result").Text(); got != "L" {
		t.Errorf("a tie should render as L, got %q", got)
	}
	if got := second.Find("td.team").Text(); got != "<script>alert(1)</script>" {
		t.Errorf("team text should round trip as text, got %q", got)
	}
	if doc.Find("script").Length() != 0 {
		t.Errorf("team names must be escaped")
	}

	if _, hidden := doc.Find("#listView").Attr("hidden"); hidden {
		t.Errorf("list view should be visible")
	}
	if _, hidden := doc.Find("#statsView").Attr("hidden"); !hidden {
		t.Errorf("stats view should be hidden")
	}
	if got := strings.TrimSpace(doc.Find("#listView .message").Text()); got != "Saved." {
		t.Errorf("unexpected message %q", got)
	}
	if got := doc.Find("#pageInfo").Text(); got != "Page 1 of 1 (2 games)" {
		t.Errorf("unexpected page info %q", got)
	}
}

func TestHTML_EmptyList(t *testing.T) {
	h := NewHTML()
	h.SwitchView(tracker.ListView)
	h.RenderRows(nil)

	var buf bytes.Buffer
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Find("#gamesTable tr.empty").Length() != 1 {
		t.Errorf("expected an empty-state row")
	}
}

func TestHTML_FormWithErrors(t *testing.T) {
	h := NewHTML()
	h.SwitchView(tracker.FormView)
	h.PopulateForm(game.Form{ID: "7", Team: "x", Week: "0"})
	h.RenderFieldErrors(game.FieldErrors{game.FieldTeam: "Team is required.", game.FieldWeek: "Week must be 1-20."})

	var buf bytes.Buffer
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if id, _ := doc.Find(`#gameForm input[name="id"]`).Attr("value"); id != "7" {
		t.Errorf("expected id 7, got %q", id)
	}
	if v, _ := doc.Find(`#gameForm input[name="team"]`).Attr("value"); v != "x" {
		t.Errorf("expected raw team value, got %q", v)
	}
	if n := doc.Find(".field-error").Length(); n != 2 {
		t.Errorf("expected 2 field errors, got %d", n)
	}
	if got := doc.Find(`.field-error[data-field="week"]`).Text(); got != "Week must be 1-20." {
		t.Errorf("unexpected week error %q", got)
	}
}

func TestHTML_Stats(t *testing.T) {
	h := NewHTML()
	h.SwitchView(tracker.StatsView)
	h.RenderStats(stats.Compute([]game.Game{
		{Team: "A", Opponent: "B", Week: 1, PointsFor: 21, PointsAgainst: 14},
		{Team: "C", Opponent: "D", Week: 2, PointsFor: 10, PointsAgainst: 17},
		{Team: "E", Opponent: "F", Week: 3, PointsFor: 21, PointsAgainst: 21},
		{Team: "G", Opponent: "H", Week: 4, PointsFor: 9, PointsAgainst: 3},
	}))

	var buf bytes.Buffer
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := map[string]string{
		"#statTotal":  "4",
		"#statWins":   "2",
		"#statLosses": "2",
		"#statAvg":    "15.3",
		"#statHigh":   "A vs B (Week 1) (21)",
	}
	for sel, v := range want {
		if got := doc.Find(sel).Text(); got != v {
			t.Errorf("%s: expected %q, got %q", sel, v, got)
		}
	}
}

func TestText_OnlyActiveView(t *testing.T) {
	var buf bytes.Buffer
	tx := NewText(&buf)
	paintList(tx)
	tx.RenderStats(stats.Summary{TotalGames: 99})

	out := buf.String()
	for _, want := range []string{"== Games ==", "Texas", "Rice", "Page 1 of 1 (2 games)", "Saved."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Total games") {
		t.Errorf("stats should not print on the list view:\n%s", out)
	}
}

func TestText_FormErrors(t *testing.T) {
	var buf bytes.Buffer
	tx := NewText(&buf)
	tx.SwitchView(tracker.FormView)
	tx.PopulateForm(game.Form{Team: "x"})
	tx.RenderFieldErrors(game.FieldErrors{game.FieldWeek: "Week must be 1-20.", game.FieldTeam: "Team is required."})

	out := buf.String()
	if !strings.Contains(out, "(new)") {
		t.Errorf("expected new-record marker:\n%s", out)
	}
	team := strings.Index(out, "team: Team is required.")
	week := strings.Index(out, "week: Week must be 1-20.")
	if team < 0 || week < 0 || team > week {
		t.Errorf("expected sorted field errors:\n%s", out)
	}
}

func TestSetFormField(t *testing.T) {
	var f game.Form
	for _, field := range FormFields() {
		if !SetFormField(&f, field, "v") {
			t.Fatalf("field %s not settable", field)
		}
	}
	if f.Team != "v" || f.PointsAgainst != "v" {
		t.Errorf("unexpected form %+v", f)
	}
	if SetFormField(&f, "nope", "v") {
		t.Errorf("unknown fields should be rejected")
	}
	if FormValue(f, game.FieldOpponent) != "v" || FormValue(f, "nope") != "" {
		t.Errorf("FormValue should read back assigned fields")
	}
}
