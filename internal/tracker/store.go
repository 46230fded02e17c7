// Package tracker holds the single source of truth for the games UI: the
// query selection, the loaded data, the active view and the form. Every
// change ends in one repaint through a Renderer.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/fortuna/gridiron/internal/api/client"
	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/prefs"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/stats"
)

// Mode selects where search, filter, sort and paging run
type Mode string

const (
	// ClientPaged loads the whole collection once and evaluates locally
	ClientPaged Mode = "client"
	// ServerPaged sends the selection as query params and shows what comes back
	ServerPaged Mode = "server"
)

// ParseMode defaults to ClientPaged
func ParseMode(v string) Mode {
	if strings.EqualFold(strings.TrimSpace(v), string(ServerPaged)) {
		return ServerPaged
	}
	return ClientPaged
}

// API is the subset of the REST client the store needs
type API interface {
	ListGames(ctx context.Context, params url.Values) (*client.GameList, error)
	GetGame(ctx context.Context, id string) (game.Game, error)
	CreateGame(ctx context.Context, g game.Game) (game.Game, error)
	UpdateGame(ctx context.Context, g game.Game) (game.Game, error)
	DeleteGame(ctx context.Context, id string) error
	Stats(ctx context.Context) (stats.Summary, error)
}

// DeletePrompt is shown before a record is removed
const DeletePrompt = "Delete this record? This cannot be undone."

const (
	noticeSaved   = "Saved."
	noticeDeleted = "Deleted."
)

// ErrInvalidPageSize is returned for page sizes below 1
var ErrInvalidPageSize = errors.New("page size must be a positive integer")

// Options configures a Store
type Options struct {
	Mode   Mode
	Prefs  prefs.Store
	Logger *log.Logger
}

// Store is the games controller
type Store struct {
	api      API
	renderer Renderer
	prefs    prefs.Store
	mode     Mode
	logger   *log.Logger

	mu        sync.Mutex
	seq       uint64
	statsSeq  uint64
	state     query.State
	all       []game.Game
	loaded    bool
	page      query.Page
	view      View
	summary   *stats.Summary
	form      game.Form
	fieldErrs game.FieldErrors
	messages  map[View]string
}

// New creates a store in list view. The page size comes from prefs when one
// has been saved.
func New(ctx context.Context, api API, renderer Renderer, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	mode := opts.Mode
	if mode != ServerPaged {
		mode = ClientPaged
	}

	state := query.DefaultState()
	state.PageSize = prefs.PageSize(ctx, opts.Prefs, query.DefaultPageSize)

	return &Store{
		api:      api,
		renderer: renderer,
		prefs:    opts.Prefs,
		mode:     mode,
		logger:   logger,
		state:    state,
		page:     query.Page{Items: []game.Game{}, Page: 1, TotalPages: 1},
		view:     ListView,
		messages: make(map[View]string),
	}
}

// Mode reports the paging strategy
func (s *Store) Mode() Mode {
	return s.mode
}

// State returns the current selection
func (s *Store) State() query.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the active view
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Snapshot copies the state a renderer needs
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]game.Game, len(s.page.Items))
	copy(items, s.page.Items)

	messages := make(map[View]string, len(s.messages))
	for k, v := range s.messages {
		messages[k] = v
	}

	var fieldErrs game.FieldErrors
	if len(s.fieldErrs) > 0 {
		fieldErrs = make(game.FieldErrors, len(s.fieldErrs))
		for k, v := range s.fieldErrs {
			fieldErrs[k] = v
		}
	}

	var summary *stats.Summary
	if s.summary != nil {
		c := *s.summary
		summary = &c
	}

	return Snapshot{
		Mode:        s.mode,
		View:        s.view,
		Query:       s.state,
		Items:       items,
		Page:        s.page.Page,
		TotalPages:  s.page.TotalPages,
		TotalCount:  s.page.TotalCount,
		Stats:       summary,
		Form:        s.form,
		FieldErrors: fieldErrs,
		Messages:    messages,
	}
}

// RenderTo paints the current state onto r, which need not be the store's
// own renderer.
func (s *Store) RenderTo(r Renderer) {
	paint(r, s.Snapshot())
}

func (s *Store) render() {
	paint(s.renderer, s.Snapshot())
}

// Reload fetches the data for the current selection and repaints
func (s *Store) Reload(ctx context.Context) error {
	return s.reload(ctx, "")
}

// Refresh reloads whatever the active view shows
func (s *Store) Refresh(ctx context.Context) error {
	switch s.View() {
	case ListView:
		return s.Reload(ctx)
	case StatsView:
		_, err := s.RefreshStats(ctx)
		return err
	}
	return nil
}

func (s *Store) reload(ctx context.Context, notice string) error {
	if s.mode == ServerPaged {
		return s.fetchPage(ctx, notice, true)
	}

	s.mu.Lock()
	s.seq++
	token := s.seq
	s.mu.Unlock()

	list, err := s.api.ListGames(ctx, nil)
	if err != nil {
		return s.fail(token, ListView, err)
	}

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		s.logger.Printf("[tracker] dropping stale reload %d", token)
		return nil
	}
	s.all = list.Items
	s.loaded = true
	s.recomputeLocked()
	s.messages[ListView] = notice
	s.mu.Unlock()

	s.render()
	return nil
}

// fetchPage asks the server for the current page. When the server reports
// fewer pages than the requested one the page is clamped and fetched again,
// once.
func (s *Store) fetchPage(ctx context.Context, notice string, retry bool) error {
	s.mu.Lock()
	s.seq++
	token := s.seq
	state := s.state.Normalized()
	s.mu.Unlock()

	list, err := s.api.ListGames(ctx, query.Params(state))
	if err != nil {
		return s.fail(token, ListView, err)
	}

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		s.logger.Printf("[tracker] dropping stale page %d", token)
		return nil
	}

	totalPages := query.TotalPages(list.Total, state.PageSize)
	if state.Page > totalPages && list.Total > 0 && retry {
		s.state.Page = totalPages
		s.mu.Unlock()
		return s.fetchPage(ctx, notice, false)
	}

	if len(list.Items) > state.PageSize {
		// server ignored the paging params
		s.page = query.Apply(list.Items, state)
	} else {
		s.page = query.Page{
			Items:      list.Items,
			Page:       query.ClampPage(state.Page, totalPages),
			TotalPages: totalPages,
			TotalCount: list.Total,
		}
	}
	s.state.Page = s.page.Page
	s.messages[ListView] = notice
	s.mu.Unlock()

	s.render()
	return nil
}

// recomputeLocked re-evaluates the local pipeline. Client mode only.
func (s *Store) recomputeLocked() {
	s.page = query.Apply(s.all, s.state)
	s.state.Page = s.page.Page
}

// fail records a network failure on view and repaints. Query state and data
// are left as they were. Failures of superseded requests are dropped.
func (s *Store) fail(token uint64, view View, err error) error {
	s.mu.Lock()
	if token != 0 && token != s.seq {
		s.mu.Unlock()
		return nil
	}
	s.messages[view] = "Error: " + errorMessage(err)
	s.mu.Unlock()

	s.logger.Printf("[tracker] ⚠️  %s: %v", view, err)
	s.render()
	return err
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// update applies fn to the selection and re-evaluates it
func (s *Store) update(ctx context.Context, fn func(st *query.State)) error {
	s.mu.Lock()
	fn(&s.state)
	s.state = s.state.Normalized()
	if s.mode == ServerPaged {
		s.mu.Unlock()
		return s.fetchPage(ctx, "", true)
	}
	s.recomputeLocked()
	s.mu.Unlock()

	s.render()
	return nil
}

// SetSearch filters by team or opponent substring and returns to page 1
func (s *Store) SetSearch(ctx context.Context, text string) error {
	return s.update(ctx, func(st *query.State) {
		st.Search = strings.TrimSpace(text)
		st.Page = 1
	})
}

// SetResultFilter restricts the list to wins, losses or everything
func (s *Store) SetResultFilter(ctx context.Context, f query.ResultFilter) error {
	return s.update(ctx, func(st *query.State) {
		st.Result = f
		st.Page = 1
	})
}

// SetSort changes the sort column and direction
func (s *Store) SetSort(ctx context.Context, field query.SortField, dir query.Direction) error {
	return s.update(ctx, func(st *query.State) {
		st.SortField = field
		st.SortDir = dir
		st.Page = 1
	})
}

// SetPageSize changes the page size and saves it as a preference. A failed
// save is logged and otherwise ignored.
func (s *Store) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		return ErrInvalidPageSize
	}
	if err := prefs.SavePageSize(ctx, s.prefs, n); err != nil {
		s.logger.Printf("[tracker] ⚠️  could not save page size: %v", err)
	}
	return s.update(ctx, func(st *query.State) {
		st.PageSize = n
		st.Page = 1
	})
}

// GotoPage moves to page n, clamped to the valid range
func (s *Store) GotoPage(ctx context.Context, n int) error {
	return s.update(ctx, func(st *query.State) {
		st.Page = max(n, 1)
	})
}

// GoNext moves forward one page and stays put on the last page
func (s *Store) GoNext(ctx context.Context) error {
	return s.update(ctx, func(st *query.State) {
		st.Page = min(st.Page+1, max(s.page.TotalPages, 1))
	})
}

// GoPrev moves back one page. On page 1 it does nothing.
func (s *Store) GoPrev(ctx context.Context) error {
	s.mu.Lock()
	first := s.state.Page <= 1
	s.mu.Unlock()
	if first {
		return nil
	}
	return s.update(ctx, func(st *query.State) {
		st.Page--
	})
}

// SwitchView activates v. Entering the list reloads from page 1, entering
// stats refreshes the summary.
func (s *Store) SwitchView(ctx context.Context, v View) error {
	s.mu.Lock()
	s.view = v
	if v == ListView {
		s.state.Page = 1
	}
	s.mu.Unlock()

	switch v {
	case ListView:
		return s.Reload(ctx)
	case StatsView:
		_, err := s.RefreshStats(ctx)
		return err
	}
	s.render()
	return nil
}

// RefreshStats loads the summary from the server. When the server cannot
// answer it is computed from the full collection instead. In client mode
// the server's answer is checked against the loaded data.
func (s *Store) RefreshStats(ctx context.Context) (stats.Summary, error) {
	s.mu.Lock()
	s.statsSeq++
	token := s.statsSeq
	s.mu.Unlock()

	summary, err := s.api.Stats(ctx)
	if err != nil {
		s.logger.Printf("[tracker] stats endpoint failed, computing locally: %v", err)
		all, listErr := s.allGames(ctx)
		if listErr != nil {
			return stats.Summary{}, s.failStats(token, err)
		}
		summary = stats.Compute(all)
	} else if local, ok := s.localSummary(); ok && !summary.Matches(local) {
		s.logger.Printf("[tracker] ⚠️  server stats %+v disagree with local %+v", summary, local)
	}

	s.mu.Lock()
	if token != s.statsSeq {
		s.mu.Unlock()
		return summary, nil
	}
	s.summary = &summary
	s.messages[StatsView] = ""
	s.mu.Unlock()

	s.render()
	return summary, nil
}

func (s *Store) failStats(token uint64, err error) error {
	s.mu.Lock()
	if token != s.statsSeq {
		s.mu.Unlock()
		return nil
	}
	s.messages[StatsView] = "Error: " + errorMessage(err)
	s.mu.Unlock()

	s.logger.Printf("[tracker] ⚠️  %s: %v", StatsView, err)
	s.render()
	return err
}

func (s *Store) allGames(ctx context.Context) ([]game.Game, error) {
	s.mu.Lock()
	if s.mode == ClientPaged && s.loaded {
		all := append([]game.Game(nil), s.all...)
		s.mu.Unlock()
		return all, nil
	}
	s.mu.Unlock()

	list, err := s.api.ListGames(ctx, nil)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (s *Store) localSummary() (stats.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ClientPaged || !s.loaded {
		return stats.Summary{}, false
	}
	return stats.Compute(s.all), true
}

// NewGame opens an empty form
func (s *Store) NewGame() {
	s.mu.Lock()
	s.form = game.Form{}
	s.fieldErrs = nil
	s.messages[FormView] = ""
	s.view = FormView
	s.mu.Unlock()

	s.render()
}

// Edit loads a game into the form
func (s *Store) Edit(ctx context.Context, id string) error {
	g, err := s.api.GetGame(ctx, id)
	if err != nil {
		return s.fail(0, ListView, err)
	}

	s.mu.Lock()
	s.form = game.FormFrom(g)
	s.fieldErrs = nil
	s.messages[FormView] = ""
	s.view = FormView
	s.mu.Unlock()

	s.render()
	return nil
}

// Submit validates the form and creates or updates the game. Validation
// failures stay on the form with per-field messages and return
// game.FieldErrors. Success returns to the list.
func (s *Store) Submit(ctx context.Context, f game.Form) (game.Game, error) {
	g, err := game.ParseForm(f)
	if err != nil {
		s.mu.Lock()
		s.form = f
		s.view = FormView
		s.messages[FormView] = ""
		var fe game.FieldErrors
		if errors.As(err, &fe) {
			s.fieldErrs = fe
		}
		s.mu.Unlock()

		s.render()
		return game.Game{}, err
	}

	var saved game.Game
	if g.ID == "" {
		saved, err = s.api.CreateGame(ctx, g)
	} else {
		saved, err = s.api.UpdateGame(ctx, g)
	}
	if err != nil {
		s.mu.Lock()
		s.form = f
		s.view = FormView
		s.fieldErrs = nil
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			s.fieldErrs = game.FieldErrors(apiErr.Fields)
		}
		s.messages[FormView] = "Error: " + errorMessage(err)
		s.mu.Unlock()

		s.logger.Printf("[tracker] ⚠️  save failed: %v", err)
		s.render()
		return game.Game{}, fmt.Errorf("saving game: %w", err)
	}

	s.mu.Lock()
	s.form = game.Form{}
	s.fieldErrs = nil
	s.messages[FormView] = ""
	s.view = ListView
	s.state.Page = 1
	s.mu.Unlock()

	s.logger.Printf("[tracker] ✓ saved %s", saved.Matchup())
	return saved, s.reload(ctx, noticeSaved)
}

// Cancel discards the form and returns to the list
func (s *Store) Cancel(ctx context.Context) error {
	s.mu.Lock()
	s.form = game.Form{}
	s.fieldErrs = nil
	s.messages[FormView] = ""
	s.mu.Unlock()

	return s.SwitchView(ctx, ListView)
}

// Delete removes a game after confirmation and reloads the current page.
// It reports false with no side effects when the user declines.
func (s *Store) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return false, nil
	}

	if err := s.api.DeleteGame(ctx, id); err != nil {
		return false, s.fail(0, ListView, err)
	}

	s.logger.Printf("[tracker] ✓ deleted game %s", id)
	return true, s.reload(ctx, noticeDeleted)
}
