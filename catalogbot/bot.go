package catalogbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/database"
	"github.com/gohye/catalogbot/catalogbot/manager"
	"github.com/gohye/catalogbot/catalogbot/preferences"
	"github.com/gohye/catalogbot/catalogbot/views"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg         Config
	Client      bot.Client
	Paginator   *paginator.Manager
	Version     string
	Commit      string
	DB          *database.DB
	Source      assets.Source
	URLs        *assets.URLResolver
	Catalog     *manager.Manager
	Sessions    *views.SessionStore
	Preferences *preferences.Resolver
}

// NewSource opens the configured master data source. The Spaces source also checks asset
// existence for the URL resolver.
func (b *Bot) NewSource(ctx context.Context) (assets.Source, assets.ObjectChecker, string, error) {
	switch b.Cfg.Assets.Driver {
	case DriverSpaces:
		spaces, err := assets.NewSpacesSource(ctx, assets.SpacesConfig{
			Key:    b.Cfg.Spaces.Key,
			Secret: b.Cfg.Spaces.Secret,
			Region: b.Cfg.Spaces.Region,
			Bucket: b.Cfg.Spaces.Bucket,
			Root:   b.Cfg.Spaces.Root,
		})
		if err != nil {
			return nil, nil, "", err
		}
		base := b.Cfg.Assets.BaseURL
		if base == "" {
			base = spaces.BaseURL()
		}
		return spaces, spaces, base, nil
	case DriverMongo:
		mongo, err := assets.NewMongoSource(ctx, b.Cfg.Assets.MongoURI, b.Cfg.Assets.MongoDatabase)
		if err != nil {
			return nil, nil, "", err
		}
		return mongo, nil, b.Cfg.Assets.BaseURL, nil
	case DriverDir:
		return assets.NewDirSource(b.Cfg.Assets.Dir), nil, b.Cfg.Assets.BaseURL, nil
	default:
		return nil, nil, "", fmt.Errorf("unknown assets driver %q", b.Cfg.Assets.Driver)
	}
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Catalog bot is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithListeningActivity("/card"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence",
			slog.String("type", "sys"),
			slog.Any("error", err))
	}
}

// Close stops background work and releases connections.
func (b *Bot) Close(ctx context.Context) {
	if b.Catalog != nil {
		b.Catalog.Stop()
	}
	if b.Sessions != nil {
		b.Sessions.Close()
	}
	if b.Client != nil {
		b.Client.Close(ctx)
	}
	if closer, ok := b.Source.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			slog.Error("Failed to close asset source",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}
	if b.DB != nil {
		b.DB.Close()
	}
}
