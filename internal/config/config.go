package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverLevelDB  = "leveldb"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StoreConfig struct {
	Driver      string
	LevelDBPath string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketAvatars string
	PublicURL     string
	UseSSL        bool
	Region        string
	MaxAvatarSize int64
}

type SecurityConfig struct {
	JWTAccessSecret   string
	JWTAccessTTL      time.Duration
	JWTRefreshTTL     time.Duration
	MaxSessions       int
	MaxLoginAttempts  int
	LockoutWindow     time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	IdempotencyTTL    time.Duration
	SigningSecret     string
	BootstrapEmail    string
	BootstrapPassword string
}

type LocaleConfig struct {
	Default  string
	TimeZone string
}

type JobsConfig struct {
	ReminderSpec string
	CleanupSpec  string
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	TLS              TLSConfig
	Store            StoreConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Locale           LocaleConfig
	Jobs             JobsConfig
	Queues           QueueConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// InProcessTasks reports whether api serve must consume background tasks
// itself. LevelDB admits a single process, so the worker cannot share it.
func (c *AppConfig) InProcessTasks() bool {
	return c.Redis.Enabled && c.Store.Driver == StoreDriverLevelDB
}

// ValidateWorker rejects configurations the standalone worker cannot serve.
func (c *AppConfig) ValidateWorker() error {
	if !c.Redis.Enabled {
		return errors.New("worker requires redis.enabled")
	}
	if c.Store.Driver == StoreDriverLevelDB {
		return errors.New("worker requires the postgres store; with leveldb, api serve runs background tasks itself")
	}
	return nil
}

// Location resolves the default time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Locale.TimeZone); err == nil {
		return loc
	}
	return time.UTC
}

func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("MAMACARE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres store")
		}
	case StoreDriverLevelDB:
		if c.Store.LevelDBPath == "" {
			return errors.New("store.leveldbpath is required for the leveldb store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.IsProduction() && c.Security.JWTAccessSecret == "" {
		return errors.New("security.jwtaccesssecret is required in production")
	}
	if c.Security.MaxSessions <= 0 {
		return errors.New("security.maxsessions must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("store.driver", StoreDriverLevelDB)
	v.SetDefault("store.leveldbpath", "./data/mamacare.db")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "mamacare:tasks")
	v.SetDefault("redis.group", "mamacare-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucketavatars", "mamacare-avatars")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxavatarsize", 2<<20)

	v.SetDefault("security.jwtaccesssecret", "dev-access-secret")
	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)
	v.SetDefault("security.maxloginattempts", 5)
	v.SetDefault("security.lockoutwindow", "15m")
	v.SetDefault("security.ratelimitrps", 5)
	v.SetDefault("security.ratelimitburst", 10)
	v.SetDefault("security.idempotencyttl", "24h")
	v.SetDefault("security.signingsecret", "dev-signing-secret")
	v.SetDefault("security.bootstrapemail", "admin@example.com")

	v.SetDefault("locale.default", "en")
	v.SetDefault("locale.timezone", "Africa/Nairobi")

	v.SetDefault("jobs.reminderspec", "0 * * * * *")
	v.SetDefault("jobs.cleanupspec", "0 0 3 * * *")

	v.SetDefault("queues.claiminterval", "30s")

	v.SetDefault("logging.level", "")
}
