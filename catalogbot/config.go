package catalogbot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/database"
)

// Asset drivers.
const (
	DriverDir    = "dir"
	DriverSpaces = "spaces"
	DriverMongo  = "mongo"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	Spaces  SpacesConfig      `toml:"spaces"`
	Assets  AssetsConfig      `toml:"assets"`
	Catalog CatalogConfig     `toml:"catalog"`
	Views   ViewsConfig       `toml:"views"`
	Metrics MetricsConfig     `toml:"metrics"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	AdminIDs  []snowflake.ID `toml:"admin_ids"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
	Root   string `toml:"root"`
}

type AssetsConfig struct {
	Driver        string `toml:"driver"`
	Dir           string `toml:"dir"`
	BaseURL       string `toml:"base_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	URLCacheSize  int    `toml:"url_cache_size"`
}

type CatalogConfig struct {
	Servers       []string `toml:"servers"`
	DefaultServer string   `toml:"default_server"`
	Timezone      string   `toml:"timezone"`
	Language      string   `toml:"language"`
	AliasesPath   string   `toml:"aliases_path"`
	// ReloadCron is a five-field cron expression. Empty disables scheduled reloads.
	ReloadCron string `toml:"reload_cron"`
}

type ViewsConfig struct {
	IdleTimeoutSeconds int `toml:"idle_timeout_seconds"`
	ListPageSize       int `toml:"list_page_size"`
}

type MetricsConfig struct {
	Address string `toml:"address"`
}

func (c *Config) applyDefaults() {
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Assets.Driver == "" {
		c.Assets.Driver = DriverDir
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "data"
	}
	if c.Assets.URLCacheSize <= 0 {
		c.Assets.URLCacheSize = config.AssetURLCacheSize
	}
	if len(c.Catalog.Servers) == 0 {
		c.Catalog.Servers = []string{string(catalog.ServerJP)}
	}
	if c.Catalog.DefaultServer == "" {
		c.Catalog.DefaultServer = c.Catalog.Servers[0]
	}
	if c.Catalog.Timezone == "" {
		c.Catalog.Timezone = "UTC"
	}
	if c.Catalog.Language == "" {
		c.Catalog.Language = "en"
	}
	if c.Views.IdleTimeoutSeconds <= 0 {
		c.Views.IdleTimeoutSeconds = int(config.SessionIdleTimeout / time.Second)
	}
	if c.Views.ListPageSize <= 0 {
		c.Views.ListPageSize = config.ListPageSize
	}
}

// Validate rejects unknown servers, drivers and timezones.
func (c *Config) Validate() error {
	var errs []error
	servers, err := c.Servers()
	if err != nil {
		errs = append(errs, err)
	}
	if def, err := catalog.ParseServer(c.Catalog.DefaultServer); err != nil {
		errs = append(errs, fmt.Errorf("catalog.default_server: %w", err))
	} else if servers != nil && !slices.Contains(servers, def) {
		errs = append(errs, fmt.Errorf("catalog.default_server %s is not in catalog.servers", def))
	}
	if _, err := time.LoadLocation(c.Catalog.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("catalog.timezone: %w", err))
	}

	switch c.Assets.Driver {
	case DriverDir:
	case DriverSpaces:
		if c.Spaces.Bucket == "" || c.Spaces.Region == "" {
			errs = append(errs, errors.New("spaces.bucket and spaces.region are required by the spaces driver"))
		}
	case DriverMongo:
		if c.Assets.MongoURI == "" || c.Assets.MongoDatabase == "" {
			errs = append(errs, errors.New("assets.mongo_uri and assets.mongo_database are required by the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown assets.driver %q", c.Assets.Driver))
	}
	return errors.Join(errs...)
}

// Servers parses the configured server list in order.
func (c *Config) Servers() ([]catalog.Server, error) {
	servers := make([]catalog.Server, 0, len(c.Catalog.Servers))
	for _, s := range c.Catalog.Servers {
		server, err := catalog.ParseServer(s)
		if err != nil {
			return nil, fmt.Errorf("catalog.servers: %w", err)
		}
		if !slices.Contains(servers, server) {
			servers = append(servers, server)
		}
	}
	return servers, nil
}

// Location is the default timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Catalog.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsAdmin(id snowflake.ID) bool {
	return slices.Contains(c.Bot.AdminIDs, id)
}
