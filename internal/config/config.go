package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Lottery   LotteryConfig   `mapstructure:"lottery"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Generator GeneratorConfig `mapstructure:"generator"`
	History   HistoryConfig   `mapstructure:"history"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// APIToken, when set, is required as a bearer token on write calls.
	APIToken string `mapstructure:"api_token"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	File              string `mapstructure:"file"`
}

// DBConfig describes the primary draw backend. An empty DSN disables it and
// the store runs on the JSON cache alone.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DrawSync string `mapstructure:"draw_sync"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
	Size int    `mapstructure:"size"`
}

type LotteryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	OnStart    bool          `mapstructure:"on_start"`
	Pace       time.Duration `mapstructure:"pace"`
	Epoch      string        `mapstructure:"epoch"`
	DrawDay    string        `mapstructure:"draw_day"`
	CutoffHour int           `mapstructure:"cutoff_hour"`
	Timezone   string        `mapstructure:"timezone"`
}

type GeneratorConfig struct {
	DefaultSets int `mapstructure:"default_sets"`
	MaxSets     int `mapstructure:"max_sets"`
}

// HistoryConfig locates the log of generated sets. RecordGenerated adds every
// complete set served by the generator endpoints.
type HistoryConfig struct {
	Path            string `mapstructure:"path"`
	MaxEntries      int    `mapstructure:"max_entries"`
	RecordGenerated bool   `mapstructure:"record_generated"`
}

type FavoritesConfig struct {
	Path string `mapstructure:"path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.api_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.file", "")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/lotto_history.db")
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	// Saturday 21:10, shortly after the announcement hour.
	v.SetDefault("cron.draw_sync", "0 10 21 * * SAT")
	v.SetDefault("cache.path", "data/winning_stats.json")
	v.SetDefault("cache.size", 100)
	v.SetDefault("lottery.base_url", "https://www.dhlottery.co.kr")
	v.SetDefault("lottery.timeout", "10s")
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.on_start", true)
	v.SetDefault("sync.pace", "200ms")
	v.SetDefault("sync.epoch", "2002-12-07")
	v.SetDefault("sync.draw_day", "saturday")
	v.SetDefault("sync.cutoff_hour", 21)
	v.SetDefault("sync.timezone", "Asia/Seoul")
	v.SetDefault("generator.default_sets", 5)
	v.SetDefault("generator.max_sets", 20)
	v.SetDefault("history.path", "data/history.json")
	v.SetDefault("history.max_entries", 500)
	v.SetDefault("history.record_generated", true)
	v.SetDefault("favorites.path", "data/favorites.json")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Location resolves the sync timezone, falling back to a fixed KST offset when
// the zone database is unavailable on the host.
func (c SyncConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		name = "Asia/Seoul"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

func (c SyncConfig) Weekday() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(c.DrawDay)) {
	case "sunday", "sun":
		return time.Sunday
	case "monday", "mon":
		return time.Monday
	case "tuesday", "tue":
		return time.Tuesday
	case "wednesday", "wed":
		return time.Wednesday
	case "thursday", "thu":
		return time.Thursday
	case "friday", "fri":
		return time.Friday
	default:
		return time.Saturday
	}
}
