package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment once at startup.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`

	AdminToken string `env:"ADMIN_TOKEN"`

	Feeds Feeds

	Database Database
	Redis    Redis

	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"memory"`
	SearchTTL    time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"30s"`
	DetailTTL    time.Duration `env:"DETAIL_CACHE_TTL" envDefault:"60s"`

	Import Import

	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Feeds holds the published sheet URL of every source table.
type Feeds struct {
	Shipments       string `env:"GSH_SHIPMENTS_CSV"`
	InputSea        string `env:"GSH_INPUT_SEA_CSV"`
	InputAir        string `env:"GSH_INPUT_AIR_CSV"`
	MilestonesSea   string `env:"GSH_MILESTONES_SEA_CSV"`
	MilestonesAir   string `env:"GSH_MILESTONES_AIR_CSV"`
	MilestonesNotes string `env:"GSH_MILESTONES_NOTES_CSV"`
}

type Database struct {
	URL         string `env:"DATABASE_URL"`
	Host        string `env:"PG_HOST" envDefault:"localhost"`
	Port        string `env:"PG_PORT" envDefault:"5432"`
	User        string `env:"PG_USER" envDefault:"postgres"`
	Password    string `env:"PG_PASSWORD"`
	Name        string `env:"PG_DB" envDefault:"tracker"`
	SSLMode     string `env:"PG_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Import struct {
	BatchSize     int           `env:"IMPORT_BATCH_SIZE" envDefault:"1000"`
	Mirror        bool          `env:"MIRROR_SHIPMENTS" envDefault:"true"`
	MirrorCascade bool          `env:"MIRROR_CASCADE" envDefault:"true"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	LockTTL       time.Duration `env:"IMPORT_LOCK_TTL" envDefault:"15m"`
}

// Load reads .env files (when present) and then the process environment.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings needed by every process. Feed URLs are checked
// per import through Feeds.Missing since only imports need them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AdminToken) == "" {
		return errors.New("ADMIN_TOKEN is required")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	return nil
}

// Missing returns the env names of feed URLs that are unset.
func (f Feeds) Missing() []string {
	var missing []string
	for _, kv := range []struct {
		name, value string
	}{
		{"GSH_SHIPMENTS_CSV", f.Shipments},
		{"GSH_INPUT_SEA_CSV", f.InputSea},
		{"GSH_INPUT_AIR_CSV", f.InputAir},
		{"GSH_MILESTONES_SEA_CSV", f.MilestonesSea},
		{"GSH_MILESTONES_AIR_CSV", f.MilestonesAir},
		{"GSH_MILESTONES_NOTES_CSV", f.MilestonesNotes},
	} {
		if strings.TrimSpace(kv.value) == "" {
			missing = append(missing, kv.name)
		}
	}
	return missing
}

// URLs maps each table name to its feed URL.
func (f Feeds) URLs() map[string]string {
	return map[string]string{
		"shipments":        f.Shipments,
		"input_sea":        f.InputSea,
		"input_air":        f.InputAir,
		"milestones_sea":   f.MilestonesSea,
		"milestones_air":   f.MilestonesAir,
		"milestones_notes": f.MilestonesNotes,
	}
}

// DSN returns DATABASE_URL when set, otherwise builds one from the PG_* settings.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}
