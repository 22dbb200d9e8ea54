package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Postal    PostalConfig
	Label     LabelConfig
	Archive   ArchiveConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
	CORSOrigins    []string // empty rejects cross-origin requests
	APIBasePath    string

	// LabelRateLimit caps label generations per client IP and window; 0 disables it
	LabelRateLimit  int
	RateLimitWindow time.Duration
}

// PostalConfig holds the postal code directory client settings
type PostalConfig struct {
	// URLTemplate contains one %s replaced by the 8-digit code
	URLTemplate     string
	Timeout         time.Duration
	CacheTTL        time.Duration
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerOpenFor  time.Duration // how long the breaker stays open
	BreakerHalfOpen uint32        // requests allowed while half-open
}

// LabelConfig holds label rendering settings
type LabelConfig struct {
	LogoPath      string
	RenderTimeout time.Duration
}

// Archive drivers
const (
	ArchiveNone       = "none"
	ArchiveFileSystem = "filesystem"
	ArchiveS3         = "s3"
)

// ArchiveConfig holds settings for keeping copies of generated labels
type ArchiveConfig struct {
	Driver       string // none, filesystem, s3
	BasePath     string // filesystem root
	Bucket       string
	Prefix       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	LogsEnabled       bool    // Also export zap logs over OTLP
	DBTracing         bool    // Trace GORM statements
	ProfilingEnabled  bool    // Continuous profiling with Pyroscope
	ProfilerAddress   string  // Pyroscope server, e.g. http://pyroscope:4040
}

// MetricsConfig holds OpenTelemetry metrics settings
type MetricsConfig struct {
	Enabled        bool          // Serve the Prometheus scrape endpoint
	Path           string        // Scrape path
	OTLPEnabled    bool          // Also push to telemetry.collector_endpoint
	ExportInterval time.Duration // OTLP push interval
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ETIQUETA_ prefix (e.g., ETIQUETA_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("ETIQUETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans defaulting to true need an explicit default so that an
	// absent key is distinguishable from false.
	v.SetDefault("metrics.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
			CORSOrigins:     v.GetStringSlice("http.cors_origins"),
			APIBasePath:     v.GetString("http.api_base_path"),
			LabelRateLimit:  v.GetInt("http.label_rate_limit"),
			RateLimitWindow: v.GetDuration("http.rate_limit_window"),
		},
		Postal: PostalConfig{
			URLTemplate:     v.GetString("postal.url_template"),
			Timeout:         v.GetDuration("postal.timeout"),
			CacheTTL:        v.GetDuration("postal.cache_ttl"),
			BreakerFailures: v.GetUint32("postal.breaker_failures"),
			BreakerOpenFor:  v.GetDuration("postal.breaker_open_for"),
			BreakerHalfOpen: v.GetUint32("postal.breaker_half_open"),
		},
		Label: LabelConfig{
			LogoPath:      v.GetString("label.logo_path"),
			RenderTimeout: v.GetDuration("label.render_timeout"),
		},
		Archive: ArchiveConfig{
			Driver:       v.GetString("archive.driver"),
			BasePath:     v.GetString("archive.base_path"),
			Bucket:       v.GetString("archive.bucket"),
			Prefix:       v.GetString("archive.prefix"),
			Endpoint:     v.GetString("archive.endpoint"),
			Region:       v.GetString("archive.region"),
			AccessKey:    v.GetString("archive.access_key"),
			SecretKey:    v.GetString("archive.secret_key"),
			UseSSL:       v.GetBool("archive.use_ssl"),
			UsePathStyle: v.GetBool("archive.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTracing:         v.GetBool("telemetry.db_tracing"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
		},
		Metrics: MetricsConfig{
			Enabled:        v.GetBool("metrics.enabled"),
			Path:           v.GetString("metrics.path"),
			OTLPEnabled:    v.GetBool("metrics.otlp_enabled"),
			ExportInterval: v.GetDuration("metrics.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "etiqueta"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "etiqueta"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "./data/etiqueta.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.APIBasePath == "" {
		cfg.HTTP.APIBasePath = "/api"
	}
	if cfg.Postal.URLTemplate == "" {
		cfg.Postal.URLTemplate = "https://viacep.com.br/ws/%s/json/"
	}
	if cfg.Postal.Timeout == 0 {
		cfg.Postal.Timeout = 5 * time.Second
	}
	if cfg.Postal.CacheTTL == 0 {
		cfg.Postal.CacheTTL = 24 * time.Hour
	}
	if cfg.Postal.BreakerFailures == 0 {
		cfg.Postal.BreakerFailures = 5
	}
	if cfg.Postal.BreakerOpenFor == 0 {
		cfg.Postal.BreakerOpenFor = 30 * time.Second
	}
	if cfg.Postal.BreakerHalfOpen == 0 {
		cfg.Postal.BreakerHalfOpen = 1
	}
	if cfg.Label.LogoPath == "" {
		cfg.Label.LogoPath = "./logo.png"
	}
	if cfg.Label.RenderTimeout == 0 {
		cfg.Label.RenderTimeout = 10 * time.Second
	}
	if cfg.Archive.Driver == "" {
		cfg.Archive.Driver = ArchiveNone
	}
	if cfg.Archive.BasePath == "" {
		cfg.Archive.BasePath = "./data/labels"
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "labels"
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-east-1"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ExportInterval <= 0 {
		cfg.Metrics.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if strings.Count(c.Postal.URLTemplate, "%s") != 1 {
		return fmt.Errorf("postal.url_template must contain exactly one %%s, got %q", c.Postal.URLTemplate)
	}

	if !strings.HasPrefix(c.HTTP.APIBasePath, "/") {
		return fmt.Errorf("http.api_base_path must start with '/', got %q", c.HTTP.APIBasePath)
	}

	if c.HTTP.LabelRateLimit < 0 {
		return fmt.Errorf("http.label_rate_limit cannot be negative")
	}

	switch c.Archive.Driver {
	case ArchiveNone, ArchiveFileSystem:
	case ArchiveS3:
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required when archive.driver is s3")
		}
	default:
		return fmt.Errorf("archive.driver must be one of none, filesystem, s3, got %q", c.Archive.Driver)
	}

	// Production-specific validations
	if c.App.Env == "production" && c.Database.Driver == DriverPostgres {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		return fmt.Errorf("telemetry.profiler_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
