package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/visitor-geolocation/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Provider ProviderConfig
	MaxMind  MaxMindConfig
	Radius   RadiusConfig
	Notify   NotifyConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host             string
	Port             int
	Env              string
	CORSAllowOrigins string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	LookupCacheTTL time.Duration
	StatsCacheTTL  time.Duration
}

type LogConfig struct {
	Level string
}

// ProviderConfig - HTTP API геолокации по IP
type ProviderConfig struct {
	BaseURL   string
	APIKey    string
	Fields    string
	UserAgent string
	Timeout   time.Duration
	// AxisOrder - порядок осей в confidenceArea у этого провайдера
	AxisOrder domain.AxisOrder
}

// MaxMindConfig - локальные базы GeoLite2/GeoIP2, используются как fallback
type MaxMindConfig struct {
	CityDBPath string
	ASNDBPath  string
}

type RadiusConfig struct {
	Lenient            bool
	SuppressForHosting bool
	HostingOrgPatterns []string
}

// WebhookTarget - один чат-вебхук для уведомлений
type WebhookTarget = domain.WebhookTarget

type NotifyConfig struct {
	Enabled    bool
	NotifyBots bool
	Username   string
	Webhooks   []WebhookTarget
	Timeout    time.Duration
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	BatchSize         int
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = ".env"
	}
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	v.AutomaticEnv()

	axisOrder, ok := domain.ParseAxisOrder(strings.ToLower(v.GetString("GEO_PROVIDER_AXIS_ORDER")))
	if !ok {
		return nil, fmt.Errorf("invalid GEO_PROVIDER_AXIS_ORDER %q", v.GetString("GEO_PROVIDER_AXIS_ORDER"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:             v.GetString("API_HOST"),
			Port:             v.GetInt("API_PORT"),
			Env:              v.GetString("API_ENV"),
			CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
			ReadTimeout:      time.Duration(v.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout:     time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			LookupCacheTTL: time.Duration(v.GetInt("LOOKUP_CACHE_TTL")) * time.Second,
			StatsCacheTTL:  time.Duration(v.GetInt("STATS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Provider: ProviderConfig{
			BaseURL:   strings.TrimRight(v.GetString("GEO_PROVIDER_BASE_URL"), "/"),
			APIKey:    v.GetString("GEO_PROVIDER_API_KEY"),
			Fields:    v.GetString("GEO_PROVIDER_FIELDS"),
			UserAgent: v.GetString("GEO_PROVIDER_USER_AGENT"),
			Timeout:   time.Duration(v.GetInt("GEO_PROVIDER_TIMEOUT")) * time.Second,
			AxisOrder: axisOrder,
		},
		MaxMind: MaxMindConfig{
			CityDBPath: v.GetString("MAXMIND_CITY_DB"),
			ASNDBPath:  v.GetString("MAXMIND_ASN_DB"),
		},
		Radius: RadiusConfig{
			Lenient:            v.GetBool("RADIUS_LENIENT"),
			SuppressForHosting: v.GetBool("SUPPRESS_RADIUS_FOR_HOSTING"),
			HostingOrgPatterns: parseList(v.GetString("HOSTING_ORG_PATTERNS")),
		},
		Notify: NotifyConfig{
			Enabled:    v.GetBool("NOTIFY_ENABLED"),
			NotifyBots: v.GetBool("NOTIFY_BOTS"),
			Username:   v.GetString("WEBHOOK_USERNAME"),
			Webhooks:   parseWebhooks(v.GetString("WEBHOOK_URLS"), v.GetString("WEBHOOK_FORMAT")),
			Timeout:    time.Duration(v.GetInt("WEBHOOK_TIMEOUT")) * time.Second,
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			BatchSize:         v.GetInt("WORKER_BATCH_SIZE"),
		},
	}

	if len(cfg.Radius.HostingOrgPatterns) == 0 {
		cfg.Radius.HostingOrgPatterns = DefaultHostingOrgPatterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultHostingOrgPatterns - подстроки org/ISP, по которым сеть считается хостингом
var DefaultHostingOrgPatterns = []string{
	"amazon", "aws", "google cloud", "microsoft", "azure", "digitalocean",
	"linode", "akamai", "ovh", "hetzner", "vultr", "oracle cloud", "cloudflare",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_READ_TIMEOUT", 10)
	v.SetDefault("API_WRITE_TIMEOUT", 10)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("DB_ENABLED", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "visitors")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("LOOKUP_CACHE_TTL", 3600)
	v.SetDefault("STATS_CACHE_TTL", 60)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("GEO_PROVIDER_BASE_URL", "https://api.ipgeolocation.io/v2/ipgeo")
	v.SetDefault("GEO_PROVIDER_TIMEOUT", 5)
	v.SetDefault("GEO_PROVIDER_AXIS_ORDER", string(domain.AxisOrderAuto))
	v.SetDefault("GEO_PROVIDER_USER_AGENT", "visitor-geolocation/1.0")

	v.SetDefault("RADIUS_LENIENT", false)
	v.SetDefault("SUPPRESS_RADIUS_FOR_HOSTING", true)

	v.SetDefault("NOTIFY_ENABLED", true)
	v.SetDefault("NOTIFY_BOTS", false)
	v.SetDefault("WEBHOOK_FORMAT", "discord")
	v.SetDefault("WEBHOOK_USERNAME", "Visitor Bot")
	v.SetDefault("WEBHOOK_TIMEOUT", 10)

	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONSUMER_GROUP", "visitor-notify-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_BATCH_SIZE", 20)
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Enabled && c.Database.Host == "" {
		errs = append(errs, "DB_HOST is required when DB_ENABLED=true")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		errs = append(errs, "REDIS_HOST is required when REDIS_ENABLED=true")
	}
	if c.Provider.BaseURL == "" && c.MaxMind.CityDBPath == "" {
		errs = append(errs, "either GEO_PROVIDER_BASE_URL or MAXMIND_CITY_DB must be set")
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, "GEO_PROVIDER_TIMEOUT must be positive")
	}
	if c.Worker.MaxRetries < 0 {
		errs = append(errs, "WORKER_MAX_RETRIES must not be negative")
	}
	if c.Worker.BatchSize <= 0 {
		errs = append(errs, "WORKER_BATCH_SIZE must be positive")
	}
	for _, w := range c.Notify.Webhooks {
		if w.Format != domain.WebhookFormatDiscord && w.Format != domain.WebhookFormatSlack {
			errs = append(errs, fmt.Sprintf("unsupported webhook format %q for %s", w.Format, w.URL))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseWebhooks разбирает WEBHOOK_URLS: "url1,slack|url2". Префикс "формат|" переопределяет defaultFormat.
func parseWebhooks(s, defaultFormat string) []WebhookTarget {
	entries := parseList(s)
	if len(entries) == 0 {
		return nil
	}
	targets := make([]WebhookTarget, 0, len(entries))
	for _, e := range entries {
		format := defaultFormat
		url := e
		if i := strings.Index(e, "|"); i > 0 {
			format = strings.ToLower(strings.TrimSpace(e[:i]))
			url = strings.TrimSpace(e[i+1:])
		}
		targets = append(targets, WebhookTarget{URL: url, Format: format})
	}
	return targets
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
