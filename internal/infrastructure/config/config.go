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
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
	Storage   StorageConfig
	Cron      CronConfig
	Vendor    VendorConfig
	Instagram InstagramConfig
	ShopMy    ShopMyConfig
	Mavely    MavelyConfig
	LTK       LTKConfig
	Airtable  AirtableConfig
	Creators  []CreatorConfig
	Backfill  BackfillConfig
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

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings.
// An empty Host disables Redis and the in-memory fallbacks are used.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for verifying identity-provider bearer tokens
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration // used only for locally issued dev tokens
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds in-process cron configuration
type SchedulerConfig struct {
	Enabled      bool
	WorkerCount  int
	QueueSize    int
	JobTimeout   time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	LockTTL      time.Duration
	CheckEvery   time.Duration
	StoriesEvery time.Duration
	// Daily run times in HH:MM UTC, keyed by job type
	Schedules map[string]string
	// TokenRefreshWeekday is the weekday (0=Sunday) of the weekly token refresh
	TokenRefreshWeekday int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
	// Continuous profiling
	ProfilingEnabled       bool
	ProfilingServerAddress string
}

// StorageConfig holds the raw payload archive settings
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Prefix          string
}

// CronConfig holds the shared secret guarding cron and admin routes
type CronConfig struct {
	Secret string
}

// VendorConfig holds settings shared by every outbound vendor client
type VendorConfig struct {
	Timeout            time.Duration
	RequestInterval    time.Duration // minimum spacing between requests per vendor
	Burst              int
	BreakerMaxFailures uint32 // consecutive failures before the breaker opens
	BreakerTimeout     time.Duration
}

// InstagramConfig holds Graph API settings
type InstagramConfig struct {
	BaseURL           string
	AccessToken       string // seed token; the token store holds the current one
	AppID             string
	AppSecret         string
	BusinessAccountID string // our account, used for business discovery
	MediaLimit        int
	BackfillPageSize  int
}

// ShopMyAccount is a login matched to creators by id substring
type ShopMyAccount struct {
	Match    string `mapstructure:"match"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// ShopMyConfig holds ShopMy API settings
type ShopMyConfig struct {
	BaseURL  string
	Origin   string
	Accounts []ShopMyAccount
}

// AccountFor returns the first account whose Match is a case-insensitive substring of creatorID
func (c ShopMyConfig) AccountFor(creatorID string) (ShopMyAccount, bool) {
	id := strings.ToLower(creatorID)
	for _, a := range c.Accounts {
		if a.Match != "" && strings.Contains(id, strings.ToLower(a.Match)) {
			return a, true
		}
	}
	return ShopMyAccount{}, false
}

// MavelyConfig holds Mavely settings
type MavelyConfig struct {
	AuthURL       string
	GraphURL      string
	Email         string
	Password      string
	AirtableTable string
	// CreatorMap maps the mirror's "Creator ID" column to creator ids
	CreatorMap map[string]string
	WindowDays int
}

// LTKConfig holds LTK settings
type LTKConfig struct {
	BaseURL          string
	GatewayURL       string
	Origin           string
	CredentialsTable string
}

// AirtableConfig holds Airtable REST settings
type AirtableConfig struct {
	BaseURL string
	Token   string
	BaseID  string
}

// CreatorConfig is one entry of the tracked creator roster
type CreatorConfig struct {
	ID          string `mapstructure:"id"`
	IGUserID    string `mapstructure:"ig_user_id"`
	Username    string `mapstructure:"username"`
	DisplayName string `mapstructure:"display_name"`
	IsOwned     bool   `mapstructure:"is_owned"`
}

// BackfillConfig holds historical backfill settings
type BackfillConfig struct {
	From string // first month, YYYY-MM
	To   string // last month, YYYY-MM; empty means the current month
	Pace time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CREATORHUB_ prefix (e.g., CREATORHUB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CREATORHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             v.GetBool("scheduler.enabled"),
			WorkerCount:         v.GetInt("scheduler.worker_count"),
			QueueSize:           v.GetInt("scheduler.queue_size"),
			JobTimeout:          v.GetDuration("scheduler.job_timeout"),
			MaxRetries:          v.GetInt("scheduler.max_retries"),
			RetryDelay:          v.GetDuration("scheduler.retry_delay"),
			LockTTL:             v.GetDuration("scheduler.lock_ttl"),
			CheckEvery:          v.GetDuration("scheduler.check_every"),
			StoriesEvery:        v.GetDuration("scheduler.stories_every"),
			Schedules:           v.GetStringMapString("scheduler.schedules"),
			TokenRefreshWeekday: v.GetInt("scheduler.token_refresh_weekday"),
		},
		Telemetry: TelemetryConfig{
			Enabled:                v.GetBool("telemetry.enabled"),
			CollectorEndpoint:      v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:          v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:            v.GetString("telemetry.service_name"),
			Insecure:               v.GetBool("telemetry.insecure"),
			MetricsEnabled:         v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:        v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:            v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:         v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:           v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh:      v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			Prefix:          v.GetString("storage.prefix"),
		},
		Cron: CronConfig{
			Secret: v.GetString("cron.secret"),
		},
		Vendor: VendorConfig{
			Timeout:            v.GetDuration("vendor.timeout"),
			RequestInterval:    v.GetDuration("vendor.request_interval"),
			Burst:              v.GetInt("vendor.burst"),
			BreakerMaxFailures: v.GetUint32("vendor.breaker_max_failures"),
			BreakerTimeout:     v.GetDuration("vendor.breaker_timeout"),
		},
		Instagram: InstagramConfig{
			BaseURL:           v.GetString("instagram.base_url"),
			AccessToken:       v.GetString("instagram.access_token"),
			AppID:             v.GetString("instagram.app_id"),
			AppSecret:         v.GetString("instagram.app_secret"),
			BusinessAccountID: v.GetString("instagram.business_account_id"),
			MediaLimit:        v.GetInt("instagram.media_limit"),
			BackfillPageSize:  v.GetInt("instagram.backfill_page_size"),
		},
		ShopMy: ShopMyConfig{
			BaseURL: v.GetString("shopmy.base_url"),
			Origin:  v.GetString("shopmy.origin"),
		},
		Mavely: MavelyConfig{
			AuthURL:       v.GetString("mavely.auth_url"),
			GraphURL:      v.GetString("mavely.graph_url"),
			Email:         v.GetString("mavely.email"),
			Password:      v.GetString("mavely.password"),
			AirtableTable: v.GetString("mavely.airtable_table"),
			CreatorMap:    v.GetStringMapString("mavely.creator_map"),
			WindowDays:    v.GetInt("mavely.window_days"),
		},
		LTK: LTKConfig{
			BaseURL:          v.GetString("ltk.base_url"),
			GatewayURL:       v.GetString("ltk.gateway_url"),
			Origin:           v.GetString("ltk.origin"),
			CredentialsTable: v.GetString("ltk.credentials_table"),
		},
		Airtable: AirtableConfig{
			BaseURL: v.GetString("airtable.base_url"),
			Token:   v.GetString("airtable.token"),
			BaseID:  v.GetString("airtable.base_id"),
		},
		Backfill: BackfillConfig{
			From: v.GetString("backfill.from"),
			To:   v.GetString("backfill.to"),
			Pace: v.GetDuration("backfill.pace"),
		},
	}

	if err := v.UnmarshalKey("shopmy.accounts", &cfg.ShopMy.Accounts); err != nil {
		return nil, fmt.Errorf("error reading shopmy.accounts: %w", err)
	}
	if err := v.UnmarshalKey("creators", &cfg.Creators); err != nil {
		return nil, fmt.Errorf("error reading creators: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultCreators is the roster used when none is configured
func DefaultCreators() []CreatorConfig {
	return []CreatorConfig{
		{ID: "nicki_entenmann", IGUserID: "17841401475580469", Username: "nicki.entenmann", DisplayName: "Nicki Entenmann", IsOwned: true},
		{ID: "livefitwithem", IGUserID: "17841450282995930", Username: "livefitwithem", DisplayName: "Emily Ogan", IsOwned: false},
	}
}

// DefaultSchedules are the daily run times in HH:MM UTC
func DefaultSchedules() map[string]string {
	return map[string]string{
		"ltk_sync":                "06:30",
		"shopmy_sync":             "07:00",
		"mavely_sync":             "07:30",
		"mavely_graphql_sync":     "08:00",
		"instagram_collect":       "09:00",
		"instagram_token_refresh": "05:00",
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "creatorhub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "creatorhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
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
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "creatorhub"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = time.Hour
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
	// cron routes run synchronously and can take minutes
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.WorkerCount == 0 {
		cfg.Scheduler.WorkerCount = 1
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = 16
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 15 * time.Minute
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = time.Minute
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = 30 * time.Minute
	}
	if cfg.Scheduler.CheckEvery == 0 {
		cfg.Scheduler.CheckEvery = time.Minute
	}
	if cfg.Scheduler.StoriesEvery == 0 {
		cfg.Scheduler.StoriesEvery = 6 * time.Hour
	}
	schedules := DefaultSchedules()
	for job, at := range cfg.Scheduler.Schedules {
		schedules[job] = at
	}
	cfg.Scheduler.Schedules = schedules
	if cfg.Scheduler.TokenRefreshWeekday == 0 {
		cfg.Scheduler.TokenRefreshWeekday = int(time.Monday)
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "creatorhub-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.ProfilingServerAddress == "" {
		cfg.Telemetry.ProfilingServerAddress = "http://localhost:4040"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "raw"
	}
	if cfg.Vendor.Timeout == 0 {
		cfg.Vendor.Timeout = 30 * time.Second
	}
	if cfg.Vendor.RequestInterval == 0 {
		cfg.Vendor.RequestInterval = 200 * time.Millisecond
	}
	if cfg.Vendor.Burst == 0 {
		cfg.Vendor.Burst = 1
	}
	if cfg.Vendor.BreakerMaxFailures == 0 {
		cfg.Vendor.BreakerMaxFailures = 5
	}
	if cfg.Vendor.BreakerTimeout == 0 {
		cfg.Vendor.BreakerTimeout = time.Minute
	}
	if cfg.Instagram.BaseURL == "" {
		cfg.Instagram.BaseURL = "https://graph.facebook.com/v21.0"
	}
	if cfg.Instagram.MediaLimit == 0 {
		cfg.Instagram.MediaLimit = 25
	}
	if cfg.Instagram.BackfillPageSize == 0 {
		cfg.Instagram.BackfillPageSize = 50
	}
	if cfg.ShopMy.BaseURL == "" {
		cfg.ShopMy.BaseURL = "https://apiv3.shopmy.us"
	}
	if cfg.ShopMy.Origin == "" {
		cfg.ShopMy.Origin = "https://shopmy.us"
	}
	if cfg.Mavely.AuthURL == "" {
		cfg.Mavely.AuthURL = "https://creators.mave.ly"
	}
	if cfg.Mavely.GraphURL == "" {
		cfg.Mavely.GraphURL = "https://mavely.live/"
	}
	if cfg.Mavely.AirtableTable == "" {
		cfg.Mavely.AirtableTable = "Mavely_Earnings"
	}
	if cfg.Mavely.WindowDays == 0 {
		cfg.Mavely.WindowDays = 90
	}
	if cfg.LTK.BaseURL == "" {
		cfg.LTK.BaseURL = "https://creator-api-gateway.shopltk.com/v1"
	}
	if cfg.LTK.GatewayURL == "" {
		cfg.LTK.GatewayURL = "https://api-gateway.rewardstyle.com"
	}
	if cfg.LTK.Origin == "" {
		cfg.LTK.Origin = "https://creator.shopltk.com"
	}
	if cfg.LTK.CredentialsTable == "" {
		cfg.LTK.CredentialsTable = "LTK_Credentials"
	}
	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if len(cfg.Creators) == 0 {
		cfg.Creators = DefaultCreators()
	}
	if cfg.Backfill.From == "" {
		cfg.Backfill.From = "2024-01"
	}
	if cfg.Backfill.Pace == 0 {
		cfg.Backfill.Pace = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
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

	seen := make(map[string]struct{}, len(c.Creators))
	for i, cr := range c.Creators {
		if cr.ID == "" {
			return fmt.Errorf("creators[%d].id is required", i)
		}
		if _, dup := seen[cr.ID]; dup {
			return fmt.Errorf("creators[%d].id %q is duplicated", i, cr.ID)
		}
		seen[cr.ID] = struct{}{}
	}

	for job, at := range c.Scheduler.Schedules {
		if _, err := time.Parse("15:04", at); err != nil {
			return fmt.Errorf("scheduler.schedules.%s must be HH:MM, got %q", job, at)
		}
	}
	if c.Scheduler.WorkerCount < 0 || c.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("scheduler.worker_count and scheduler.max_retries cannot be negative")
	}

	if _, err := time.Parse("2006-01", c.Backfill.From); err != nil {
		return fmt.Errorf("backfill.from must be YYYY-MM, got %q", c.Backfill.From)
	}
	if c.Backfill.To != "" {
		if _, err := time.Parse("2006-01", c.Backfill.To); err != nil {
			return fmt.Errorf("backfill.to must be YYYY-MM, got %q", c.Backfill.To)
		}
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Cron.Secret == "" {
			return fmt.Errorf("cron.secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
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

// BackfillMonths returns the first and last month of the backfill window
func (b BackfillConfig) BackfillMonths(now time.Time) (from, to time.Time) {
	from, _ = time.Parse("2006-01", b.From)
	if b.To == "" {
		to = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		to, _ = time.Parse("2006-01", b.To)
	}
	return from, to
}
