package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/markrai/seen-engine/pkg/asset"
	"github.com/markrai/seen-engine/pkg/config"
	"github.com/markrai/seen-engine/pkg/gallery"
	"github.com/markrai/seen-engine/pkg/photoapi"
	"github.com/markrai/seen-engine/pkg/prefs"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	watch := flag.Bool("watch", false, "Keep running and poll the server for count changes")
	ephemeral := flag.Bool("ephemeral", false, "Keep view preferences in memory instead of the preferences file")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.LogJSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	log.Info().Str("version", version).Str("commit", commit).Str("server", cfg.ServerURL).Msg("starting seen-engine")

	var client *photoapi.Client
	if cfg.OAuth != nil {
		client = photoapi.NewOAuthClient(cfg.ServerURL, clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}, cfg.ServerTimeout)
	} else {
		client = photoapi.NewClient(cfg.ServerURL, cfg.ServerAPIKey, cfg.ServerTimeout)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("photo server unreachable")
	}

	source := photoapi.NewCachedSource(client, cfg.CacheTTL)
	var store prefs.Store = prefs.NewFileStore(cfg.PrefsPath, log.Logger)
	if *ephemeral {
		store = prefs.NewSessionStore()
	}

	session := gallery.New(source, store, gallery.Options{
		PageSize:     cfg.PageSize,
		DeleteSettle: cfg.DeleteSettle,
		ResetSettle:  cfg.ResetSettle,
		Logger:       log.Logger,
	})
	defer session.Close()

	if err := session.Open(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load first page")
	}
	for session.HasNext() {
		added, err := session.LoadMore(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to extend timeline")
		}
		if added == 0 {
			break
		}
	}

	printTimeline(session)

	if !*watch {
		return
	}

	session.OnChange = func() {
		printTimeline(session)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.StatsPollCron, func() {
		pollCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
		defer cancel()
		total, err := client.Stats(pollCtx)
		if err != nil {
			log.Warn().Err(err).Msg("stats poll failed")
			return
		}
		session.TotalChanged(total)
	})
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.StatsPollCron).Msg("invalid stats poll schedule")
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	log.Info().Str("cron", cfg.StatsPollCron).Msg("watching for server-side changes")
	<-ctx.Done()
	log.Info().Msg("shutting down")
}

func printTimeline(session *gallery.Session) {
	view := session.View()
	state := session.State()
	fmt.Printf("loaded %d of %d assets (sort %s %s)\n", state.End-state.Start, state.Total, view.Sort.Field, view.Sort.Order)

	if view.GroupBy == asset.GroupNone {
		for _, a := range session.Organized() {
			fmt.Printf("  %8d  %s\n", a.ID, a.Filename)
		}
		return
	}
	for _, b := range session.Buckets() {
		fmt.Printf("%s (%d)\n", b.Key, len(b.Items))
		for _, a := range b.Items {
			fmt.Printf("  %8d  %s\n", a.ID, a.Filename)
		}
	}
}
