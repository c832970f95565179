package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}

	if cfg.Store.Driver != StoreDriverLevelDB {
		t.Errorf("store driver = %q, want %q", cfg.Store.Driver, StoreDriverLevelDB)
	}
	if cfg.Security.JWTAccessTTL != 15*time.Minute {
		t.Errorf("access ttl = %v", cfg.Security.JWTAccessTTL)
	}
	if cfg.Security.LockoutWindow != 15*time.Minute {
		t.Errorf("lockout window = %v", cfg.Security.LockoutWindow)
	}
	if cfg.Security.MaxLoginAttempts != 5 {
		t.Errorf("max login attempts = %d", cfg.Security.MaxLoginAttempts)
	}
	if cfg.Locale.Default != "en" {
		t.Errorf("default locale = %q", cfg.Locale.Default)
	}
}

func TestCORSOriginsFromCommaList(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("allowcorsorigins", "http://a.test,http://b.test")

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cfg.AllowCORSOrigins) != 2 || cfg.AllowCORSOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.AllowCORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	base := func() *AppConfig {
		v := viper.New()
		setDefaults(v)
		cfg, err := decode(v)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown driver", func(c *AppConfig) { c.Store.Driver = "sqlite" }},
		{"postgres without dsn", func(c *AppConfig) { c.Store.Driver = StoreDriverPostgres }},
		{"leveldb without path", func(c *AppConfig) { c.Store.LevelDBPath = "" }},
		{"production without secret", func(c *AppConfig) {
			c.Environment = "production"
			c.Security.JWTAccessSecret = ""
		}},
		{"zero sessions", func(c *AppConfig) { c.Security.MaxSessions = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &AppConfig{Locale: LocaleConfig{TimeZone: "Not/AZone"}}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}

func TestBackgroundTaskPlacement(t *testing.T) {
	cases := []struct {
		name       string
		driver     string
		redis      bool
		inProcess  bool
		workerFail bool
	}{
		{"leveldb with redis", StoreDriverLevelDB, true, true, true},
		{"leveldb without redis", StoreDriverLevelDB, false, false, true},
		{"postgres with redis", StoreDriverPostgres, true, false, false},
		{"postgres without redis", StoreDriverPostgres, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := AppConfig{Store: StoreConfig{Driver: tc.driver}, Redis: RedisConfig{Enabled: tc.redis}}
			if got := cfg.InProcessTasks(); got != tc.inProcess {
				t.Errorf("InProcessTasks = %v, want %v", got, tc.inProcess)
			}
			if err := cfg.ValidateWorker(); (err != nil) != tc.workerFail {
				t.Errorf("ValidateWorker err = %v", err)
			}
		})
	}
}
