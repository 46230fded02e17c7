package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortuna/gridiron/internal/api/client"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/prefs"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/tracker"
	"github.com/fortuna/gridiron/internal/view"
)

const (
	appName    = "gridiron"
	appVersion = "1.0.0"
)

func main() {
	cfg := config.Load()

	var (
		apiURL    = flag.String("api", cfg.APIURL, "Games API base URL")
		mode      = flag.String("mode", cfg.Mode, "Paging mode: client or server")
		prefsFile = flag.String("prefs-file", cfg.PrefsFile, "Preference file")
		redisURL  = flag.String("redis", "", "Keep preferences in Redis instead of the preference file")
		watch     = flag.Bool("watch", false, "Refresh when the change feed reports an edit")
		wsURL     = flag.String("ws", cfg.WSURL, "Change feed URL used with -watch")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("=== %s v%s ===", appName, appVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scope := prefs.Scope{Domain: cfg.PrefsDomain, Path: cfg.PrefsPath}
	var store prefs.Store = prefs.NewFileStore(*prefsFile, scope)
	if *redisURL != "" {
		redisCache, err := cache.NewRedisCache(*redisURL)
		if err != nil {
			logger.Printf("⚠️  Redis unavailable, using %s: %v", *prefsFile, err)
		} else {
			defer redisCache.Close()
			store = prefs.NewRedisStore(redisCache, scope)
		}
	}

	api := client.New(*apiURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger))

	games := tracker.New(ctx, api, view.NewText(os.Stdout), tracker.Options{
		Mode:   tracker.ParseMode(*mode),
		Prefs:  store,
		Logger: logger,
	})
	logger.Printf("✓ Using %s (%s paging)", api.BaseURL(), games.Mode())

	var events <-chan publisher.GameEvent
	if *watch {
		ch, err := websocket.Watch(ctx, *wsURL)
		if err != nil {
			logger.Printf("⚠️  change feed unavailable: %v", err)
		} else {
			events = ch
			logger.Printf("✓ Watching %s", *wsURL)
		}
	}

	games.Reload(ctx)
	newShell(games, os.Stdin, os.Stdout, logger).run(ctx, events)
}
