package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ConfigPathEnvVar names an explicit YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "/etc/funmarket/config.yaml"}

type FeedConfig struct {
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	APIKey  string `koanf:"api_key"`
	RPS     int    `koanf:"rps" validate:"gte=1"`
}

type IngestConfig struct {
	Workers  int `koanf:"workers" validate:"gte=1"`
	PageSize int `koanf:"page_size" validate:"gte=1,lte=1000"`
	MaxPages int `koanf:"max_pages" validate:"gte=0"`
}

type SearchConfig struct {
	Timezone      string        `koanf:"timezone" validate:"required,timezone"`
	NewWithin     time.Duration `koanf:"new_within" validate:"gt=0"`
	PopularCities int           `koanf:"popular_cities" validate:"gte=1"`
	TrendingLimit int           `koanf:"trending_limit" validate:"gte=1,lte=100"`
}

type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures" validate:"gte=1"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type Config struct {
	AppEnv        string        `koanf:"app_env"`
	LogLevel      string        `koanf:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	HTTPAddr      string        `koanf:"http_addr" validate:"required"`
	HTTPTimeout   time.Duration `koanf:"http_timeout" validate:"gt=0"`
	MetricsAddr   string        `koanf:"metrics_addr"`
	MySQLDSN      string        `koanf:"mysql_dsn" validate:"required"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`

	Feed      FeedConfig      `koanf:"feed"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Search    SearchConfig    `koanf:"search"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
}

func defaultConfig() Config {
	return Config{
		AppEnv:      "prod",
		LogLevel:    "info",
		HTTPAddr:    ":8080",
		HTTPTimeout: 15 * time.Second,
		MetricsAddr: ":9100",
		MySQLDSN:    "root:root@tcp(localhost:3306)/funmarket?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:   "localhost:6379",
		CacheTTL:    15 * time.Minute,
		Feed:        FeedConfig{BaseURL: "http://localhost:4000/api", RPS: 5},
		Ingest:      IngestConfig{Workers: 3, PageSize: 100},
		Search: SearchConfig{
			Timezone:      "UTC",
			NewWithin:     90 * 24 * time.Hour,
			PopularCities: 5,
			TrendingLimit: 4,
		},
		Breaker:   BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second},
		RateLimit: RateLimitConfig{Requests: 120, Window: time.Minute},
		CORS:      CORSConfig{Origins: []string{"*"}},
	}
}

// Load layers defaults, an optional YAML file and the environment, in that
// order of precedence (environment wins).
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.CORS.Origins = splitList(c.CORS.Origins)
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.Feed.APIKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c, nil
}

// splitList expands comma-separated elements, since the env provider hands
// a list over as one string.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Location resolves the reference timezone for calendar dates.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Search.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envSections = []string{"feed", "ingest", "search", "breaker", "rate_limit", "cors"}

var envTopLevel = map[string]bool{
	"app_env": true, "log_level": true, "http_addr": true, "http_timeout": true,
	"metrics_addr": true, "mysql_dsn": true, "redis_addr": true,
	"redis_password": true, "redis_db": true, "cache_ttl": true,
}

// envTransformFunc maps environment names onto config paths:
// HTTP_ADDR -> http_addr, SEARCH_TIMEZONE -> search.timezone,
// RATE_LIMIT_REQUESTS -> rate_limit.requests. Unrelated variables are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if envTopLevel[key] {
		return key
	}
	for _, s := range envSections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok && rest != "" {
			return s + "." + rest
		}
	}
	return ""
}
