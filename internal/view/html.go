// Package view implements tracker.Renderer for the terminal and for static
// HTML snapshots.
package view

import (
	"html/template"
	"io"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/tracker"
)

// HTML collects one paint and writes it as a standalone page
type HTML struct {
	page htmlPage
}

var _ tracker.Renderer = (*HTML)(nil)

type htmlRow struct {
	Game    game.Game
	Result  game.Result
	Image   string
	Matchup string
}

type htmlField struct {
	Name  string
	Value string
	Error string
}

type htmlPage struct {
	View       string
	Query      query.State
	Rows       []htmlRow
	Page       int
	TotalPages int
	TotalCount int
	Stats      *stats.Summary
	FormID     string
	Fields     []htmlField
	Messages   map[string]string
}

// NewHTML returns an empty snapshot
func NewHTML() *HTML {
	return &HTML{page: htmlPage{Messages: map[string]string{}}}
}

func (h *HTML) SwitchView(v tracker.View) { h.page.View = string(v) }

func (h *HTML) RenderQuery(s query.State) { h.page.Query = s }

func (h *HTML) RenderRows(games []game.Game) {
	rows := make([]htmlRow, 0, len(games))
	for _, g := range games {
		image := g.ImageURL
		if image == "" {
			image = game.PlaceholderURL
		}
		rows = append(rows, htmlRow{
			Game:    g,
			Result:  g.WithDerivedResult().Result,
			Image:   image,
			Matchup: g.Matchup(),
		})
	}
	h.page.Rows = rows
}

func (h *HTML) RenderPageInfo(page, totalPages, totalCount int) {
	h.page.Page = page
	h.page.TotalPages = totalPages
	h.page.TotalCount = totalCount
}

func (h *HTML) RenderStats(s stats.Summary) { h.page.Stats = &s }

func (h *HTML) PopulateForm(f game.Form) {
	h.page.FormID = f.ID
	rows := formRows(f)
	fields := make([]htmlField, len(rows))
	for i, r := range rows {
		fields[i] = htmlField{Name: r[0], Value: r[1]}
	}
	h.page.Fields = fields
}

func (h *HTML) RenderFieldErrors(errs game.FieldErrors) {
	for i := range h.page.Fields {
		h.page.Fields[i].Error = errs[h.page.Fields[i].Name]
	}
}

func (h *HTML) RenderMessage(v tracker.View, msg string) { h.page.Messages[string(v)] = msg }

// WriteTo writes the collected page
func (h *HTML) WriteTo(w io.Writer) error {
	return pageTemplate.Execute(w, h.page)
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"avg": stats.FormatAvg,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Games</title></head>
<body>
<section id="listView"{{if ne .View "listView"}} hidden{{end}}>
  <p class="query">search: {{.Query.Search}} | result: {{.Query.Result}} | sort: {{.Query.SortField}} {{.Query.SortDir}}</p>
  <p class="message">{{index .Messages "listView"}}</p>
  <table id="gamesTable">
    <thead><tr><th>Week</th><th>Team</th><th>Opponent</th><th>H/A</th><th>PF</th><th>PA</th><th>Result</th><th></th></tr></thead>
    <tbody>
    {{- range .Rows}}
      <tr data-id="{{.Game.ID}}">
        <td class="week">{{.Game.Week}}</td>
        <td class="team">{{.Game.Team}}</td>
        <td class="opponent">{{.Game.Opponent}}</td>
        <td class="homeAway">{{.Game.HomeAway}}</td>
        <td class="pointsFor">{{.Game.PointsFor}}</td>
        <td class="pointsAgainst">{{.Game.PointsAgainst}}</td>
        <td class="result">{{.Result}}</td>
        <td><img src="{{.Image}}" alt="{{.Matchup}}"></td>
      </tr>
    {{- else}}
      <tr class="empty"><td colspan="8">No games match.</td></tr>
    {{- end}}
    </tbody>
  </table>
  <p id="pageInfo">Page {{.Page}} of {{.TotalPages}} ({{.TotalCount}} games)</p>
</section>
<section id="formView"{{if ne .View "formView"}} hidden{{end}}>
  <p class="message">{{index .Messages "formView"}}</p>
  <form id="gameForm">
    <input type="hidden" name="id" value="{{.FormID}}">
    {{- range .Fields}}
    <label>{{.Name}} <input name="{{.Name}}" value="{{.Value}}"></label>
    {{- if .Error}}<span class="field-error" data-field="{{.Name}}">{{.Error}}</span>{{end}}
    {{- end}}
  </form>
</section>
<section id="statsView"{{if ne .View "statsView"}} hidden{{end}}>
  <p class="message">{{index .Messages "statsView"}}</p>
  {{- with .Stats}}
  <dl>
    <dt>Total games</dt><dd id="statTotal">{{.TotalGames}}</dd>
    <dt>Wins</dt><dd id="statWins">{{.Wins}}</dd>
    <dt>Losses</dt><dd id="statLosses">{{.Losses}}</dd>
    <dt>Avg points for</dt><dd id="statAvg">{{avg .AvgPointsFor}}</dd>
    <dt>Highest scoring game</dt><dd id="statHigh">{{with .HighestScoringGame}}{{.Matchup}} ({{.PointsFor}}){{else}}-{{end}}</dd>
  </dl>
  {{- end}}
</section>
</body>
</html>
`))
