package tracker

import (
	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
)

// View is one of the mutually exclusive screens
type View string

const (
	ListView  View = "listView"
	FormView  View = "formView"
	StatsView View = "statsView"
)

// ParseView accepts the view ids and their short names ("list", "form", "stats")
func ParseView(v string) (View, bool) {
	switch v {
	case "list", string(ListView):
		return ListView, true
	case "form", "add", string(FormView):
		return FormView, true
	case "stats", string(StatsView):
		return StatsView, true
	}
	return "", false
}

// Renderer is the presentation side. The store calls it only from paint,
// after every state change; implementations must not call back into the store.
type Renderer interface {
	SwitchView(v View)
	RenderQuery(s query.State)
	RenderRows(games []game.Game)
	RenderPageInfo(page, totalPages, totalCount int)
	RenderStats(s stats.Summary)
	PopulateForm(f game.Form)
	RenderFieldErrors(errs game.FieldErrors)
	RenderMessage(v View, msg string)
}

// Confirmer gates destructive actions
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Snapshot is an immutable copy of everything a renderer can show
type Snapshot struct {
	Mode        Mode
	View        View
	Query       query.State
	Items       []game.Game
	Page        int
	TotalPages  int
	TotalCount  int
	Stats       *stats.Summary
	Form        game.Form
	FieldErrors game.FieldErrors
	Messages    map[View]string
}

var allViews = []View{ListView, FormView, StatsView}

// paint is the only writer of presentation output
func paint(r Renderer, snap Snapshot) {
	if r == nil {
		return
	}
	r.SwitchView(snap.View)
	r.RenderQuery(snap.Query)
	r.RenderRows(snap.Items)
	r.RenderPageInfo(snap.Page, snap.TotalPages, snap.TotalCount)
	if snap.Stats != nil {
		r.RenderStats(*snap.Stats)
	}
	r.PopulateForm(snap.Form)
	r.RenderFieldErrors(snap.FieldErrors)
	for _, v := range allViews {
		r.RenderMessage(v, snap.Messages[v])
	}
}
