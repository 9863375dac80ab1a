package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/commands"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/database"
	"github.com/gohye/catalogbot/catalogbot/database/repositories"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/manager"
	"github.com/gohye/catalogbot/catalogbot/metrics"
	"github.com/gohye/catalogbot/catalogbot/preferences"
	"github.com/gohye/catalogbot/catalogbot/views"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, logger.Options{Color: true})))

	cfg, err := catalogbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, logger.Options{
		Level:     cfg.Log.Level,
		AddSource: cfg.Log.AddSource,
		Color:     cfg.Log.Format != "plain",
	})))

	logger.LogSystem("Starting catalog bot",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), config.ReloadTimeout)
	defer cancel()

	b := catalogbot.New(*cfg, version, commit)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Close(ctx)
	}()

	var store preferences.Store
	if cfg.DB.Enabled() {
		dbStartTime := time.Now()
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			slog.Error("Database connection failed",
				slog.String("type", "db"),
				slog.String("error", err.Error()),
				slog.Duration("attempted_for", time.Since(dbStartTime)))
			os.Exit(-1)
		}
		b.DB = db
		if err := db.InitializeSchema(ctx); err != nil {
			slog.Error("Failed to initialize database schema",
				slog.String("type", "db"),
				slog.String("error", err.Error()))
			os.Exit(-1)
		}
		store = repositories.NewPreferenceRepository(db.BunDB())
		slog.Info("Database connected successfully",
			slog.String("type", "db"),
			slog.String("database", cfg.DB.Database),
			slog.Duration("took", time.Since(dbStartTime)))
	} else {
		slog.Warn("No database configured, preferences are disabled", slog.String("type", "db"))
	}

	source, checker, baseURL, err := b.NewSource(ctx)
	if err != nil {
		slog.Error("Failed to open master data source",
			slog.String("type", "sys"),
			slog.String("driver", cfg.Assets.Driver),
			slog.Any("error", err))
		os.Exit(-1)
	}
	b.Source = source
	b.URLs = assets.NewURLResolver(baseURL, checker, cfg.Assets.URLCacheSize)

	servers, _ := cfg.Servers()
	b.Catalog = manager.New(source, manager.Options{
		Servers:     servers,
		AliasesPath: cfg.Catalog.AliasesPath,
		URLs:        b.URLs,
	})
	if _, err := b.Catalog.Reload(ctx); err != nil {
		slog.Error("Initial catalog load failed", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	if cfg.Catalog.ReloadCron != "" {
		if err := b.Catalog.Schedule(cfg.Catalog.ReloadCron, cfg.Location()); err != nil {
			slog.Error("Failed to schedule catalog reloads", slog.String("type", "sys"), slog.Any("error", err))
			os.Exit(-1)
		}
	}

	b.Preferences = preferences.NewResolver(store, preferences.Defaults{
		Server:          catalogServer(cfg),
		Servers:         servers,
		Location:        cfg.Location(),
		Language:        cfg.Catalog.Language,
		AllowUnreleased: false,
	})
	b.Sessions = views.NewSessionStore(time.Duration(cfg.Views.IdleTimeoutSeconds)*time.Second, config.SessionCleanupInterval)

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()
	if cfg.Metrics.Address != "" {
		go func() {
			if err := metrics.Serve(metricsCtx, cfg.Metrics.Address); err != nil {
				slog.Error("Metrics server failed", slog.String("type", "sys"), slog.Any("error", err))
			}
		}()
	}

	h := handler.New()
	commands.Register(h, b)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
}

func catalogServer(cfg *catalogbot.Config) catalog.Server {
	server, _ := catalog.ParseServer(cfg.Catalog.DefaultServer)
	return server
}
