package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/tracker"
	"github.com/fortuna/gridiron/internal/view"
)

const helpText = `Commands:
  list                      show the games list (back to page 1)
  search <text>             match team or opponent, empty clears
  filter ALL|W|L            filter by result
  sort <field> [asc|desc]   week, team, opponent, homeAway, pointsFor, pointsAgainst, result
  size <n>                  games per page (remembered)
  page <n> | next | prev    move between pages
  add                       enter a new game
  edit <id>                 change a game
  delete <id>               remove a game
  stats                     show totals
  export <file.html>        write the current screen as HTML
  help                      this text
  quit                      leave`

// shell reads commands line by line and drives the tracker store. Prompts
// inside a command read from the same line channel.
type shell struct {
	store  *tracker.Store
	out    io.Writer
	lines  <-chan string
	logger *log.Logger
}

func newShell(store *tracker.Store, in io.Reader, out io.Writer, logger *log.Logger) *shell {
	return &shell{
		store:  store,
		out:    out,
		lines:  readLines(in),
		logger: logger,
	}
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// run processes commands until quit, end of input or ctx ends. Each change
// event reloads whatever view is showing.
func (sh *shell) run(ctx context.Context, events <-chan publisher.GameEvent) {
	sh.printPrompt()
	for {
		select {
		case <-ctx.Done():
			return

		case line, ok := <-sh.lines:
			if !ok {
				return
			}
			if sh.exec(ctx, line) {
				return
			}
			sh.printPrompt()

		case ev, ok := <-events:
			if !ok {
				sh.logger.Printf("[gridiron] ⚠️  change feed closed")
				events = nil
				continue
			}
			sh.logger.Printf("[gridiron] game %s %s, refreshing", ev.ID, ev.Action)
			sh.store.Refresh(ctx)
			sh.printPrompt()
		}
	}
}

func (sh *shell) printPrompt() {
	fmt.Fprint(sh.out, "> ")
}

// exec runs one command line and reports whether the shell should exit
func (sh *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "list", "ls":
		sh.store.SwitchView(ctx, tracker.ListView)

	case "search":
		sh.store.SetSearch(ctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))

	case "filter":
		if len(args) != 1 {
			sh.usage("filter ALL|W|L")
			return false
		}
		sh.store.SetResultFilter(ctx, query.ParseResultFilter(args[0]))

	case "sort":
		if len(args) < 1 || len(args) > 2 {
			sh.usage("sort <field> [asc|desc]")
			return false
		}
		dir := query.Asc
		if len(args) == 2 {
			dir = query.ParseDirection(args[1])
		}
		sh.store.SetSort(ctx, query.ParseSortField(args[0]), dir)

	case "size":
		n, ok := sh.intArg(args, "size <n>")
		if !ok {
			return false
		}
		if err := sh.store.SetPageSize(ctx, n); errors.Is(err, tracker.ErrInvalidPageSize) {
			fmt.Fprintln(sh.out, "Page size must be a positive number.")
		}

	case "page":
		n, ok := sh.intArg(args, "page <n>")
		if !ok {
			return false
		}
		sh.store.GotoPage(ctx, n)

	case "next":
		sh.store.GoNext(ctx)

	case "prev":
		sh.store.GoPrev(ctx)

	case "add", "new":
		sh.store.NewGame()
		return sh.editForm(ctx, game.Form{})

	case "edit":
		if len(args) != 1 {
			sh.usage("edit <id>")
			return false
		}
		if err := sh.store.Edit(ctx, args[0]); err != nil {
			return false
		}
		return sh.editForm(ctx, sh.store.Snapshot().Form)

	case "delete", "rm":
		if len(args) != 1 {
			sh.usage("delete <id>")
			return false
		}
		deleted, err := sh.store.Delete(ctx, args[0], tracker.ConfirmFunc(sh.confirm))
		if !deleted && err == nil {
			fmt.Fprintln(sh.out, "Nothing deleted.")
		}

	case "stats":
		sh.store.SwitchView(ctx, tracker.StatsView)

	case "export":
		if len(args) != 1 {
			sh.usage("export <file.html>")
			return false
		}
		if err := sh.export(args[0]); err != nil {
			fmt.Fprintf(sh.out, "Export failed: %v\n", err)
			return false
		}
		fmt.Fprintf(sh.out, "Wrote %s\n", args[0])

	case "help", "?":
		fmt.Fprintln(sh.out, helpText)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(sh.out, "Unknown command %q, type help for a list.\n", cmd)
	}
	return false
}

// editForm prompts for every field, keeping the current value on an empty
// answer, and submits. Validation failures offer another pass.
func (sh *shell) editForm(ctx context.Context, f game.Form) bool {
	for {
		for _, field := range view.FormFields() {
			current := view.FormValue(f, field)
			label := field
			if current != "" {
				label = fmt.Sprintf("%s [%s]", field, current)
			}
			answer, ok := sh.prompt(label + ": ")
			if !ok {
				sh.store.Cancel(ctx)
				return true
			}
			if answer = strings.TrimSpace(answer); answer != "" {
				view.SetFormField(&f, field, answer)
			}
		}

		_, err := sh.store.Submit(ctx, f)
		if err == nil {
			return false
		}

		retry, ok := sh.prompt("Fix and try again? [Y/n] ")
		if !ok {
			sh.store.Cancel(ctx)
			return true
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(retry)), "n") {
			sh.store.Cancel(ctx)
			return false
		}
	}
}

func (sh *shell) confirm(prompt string) bool {
	answer, ok := sh.prompt(prompt + " [y/N] ")
	if !ok {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (sh *shell) prompt(label string) (string, bool) {
	fmt.Fprint(sh.out, label)
	line, ok := <-sh.lines
	return line, ok
}

func (sh *shell) intArg(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		sh.usage(usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		sh.usage(usage)
		return 0, false
	}
	return n, true
}

func (sh *shell) usage(u string) {
	fmt.Fprintf(sh.out, "usage: %s\n", u)
}

// export renders the current state as a standalone HTML page
func (sh *shell) export(path string) error {
	page := view.NewHTML()
	sh.store.RenderTo(page)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
