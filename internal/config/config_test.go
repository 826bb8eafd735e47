package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.Port != "8000" {
		t.Fatalf("default PORT expected 8000, got %q", cfg.Port)
	}
}

// --- Load defaults ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StoreDriver != "memory" || cfg.CacheTTL != time.Hour || cfg.RedisURL != "" {
		t.Fatalf("storage defaults unexpected: %+v", cfg)
	}
	if cfg.Version != "2.0.0" || cfg.Environment != "production" {
		t.Fatalf("identity defaults unexpected: %q %q", cfg.Version, cfg.Environment)
	}
	if cfg.Quotas.ScriptsPerHour != 10 || cfg.Quotas.VideosPerHour != 5 || cfg.Quotas.APICallsPerHour != 100 || cfg.Quotas.Window != time.Hour {
		t.Fatalf("quota defaults unexpected: %+v", cfg.Quotas)
	}
	p := cfg.Providers
	if p.OpenAIKey != "" || p.AnthropicKey != "" || p.ElevenLabsKey != "" {
		t.Fatalf("provider keys must default to empty: %+v", p)
	}
	if p.Timeout != 30*time.Second || p.ElevenLabsBaseURL != "https://api.elevenlabs.io" {
		t.Fatalf("provider defaults unexpected: %+v", p)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		check func(Config) bool
	}{
		{"server", map[string]string{
			"PORT": "8088", "READ_TIMEOUT": "2s", "READ_HEADER_TIMEOUT": "1s",
			"WRITE_TIMEOUT": "90s", "IDLE_TIMEOUT": "4s", "MAX_HEADER_BYTES": "8192",
			"GIN_MODE": "weird",
		}, func(c Config) bool {
			return c.Port == "8088" && c.ReadTimeout == 2*time.Second && c.ReadHeaderTimeout == time.Second &&
				c.WriteTimeout == 90*time.Second && c.IdleTimeout == 4*time.Second &&
				c.MaxHeaderBytes == 8192 && c.GinMode == "release"
		}},
		{"identity", map[string]string{"APP_VERSION": "2.1.0", "APP_ENV": "staging"}, func(c Config) bool {
			return c.Version == "2.1.0" && c.Environment == "staging"
		}},
		{"logging and docs", map[string]string{"LOG_LEVEL": "warning", "LOG_PRETTY": "yes", "SWAGGER_ENABLED": "on"}, func(c Config) bool {
			return c.LogLevel == "warn" && c.LogPretty && c.SwaggerEnabled
		}},
		{"storage", map[string]string{
			"STORE_DRIVER": "SQLite3", "DB_PATH": "studio.db",
			"REDIS_URL": "redis://localhost:6379/0", "CACHE_TTL": "5m",
		}, func(c Config) bool {
			return c.StoreDriver == "sqlite" && c.DBPath == "studio.db" &&
				c.RedisURL == "redis://localhost:6379/0" && c.CacheTTL == 5*time.Minute
		}},
		{"providers", map[string]string{
			"OPENAI_API_KEY": "sk-test", "ANTHROPIC_MODEL": "claude-x",
			"ELEVENLABS_API_KEY": "xi-test", "PROVIDER_TIMEOUT": "7s",
		}, func(c Config) bool {
			p := c.Providers
			return p.OpenAIKey == "sk-test" && p.AnthropicModel == "claude-x" &&
				p.ElevenLabsKey == "xi-test" && p.Timeout == 7*time.Second
		}},
		{"limits fall back on bad input", map[string]string{
			"RATE_RPS": "x", "RATE_BURST": "nope",
			"QUOTA_SCRIPTS_PER_HOUR": "3", "QUOTA_API_CALLS_PER_HOUR": "0", "QUOTA_WINDOW": "30m",
		}, func(c Config) bool {
			return c.RateRPS == 5.0 && c.RateBurst == 10 && c.Quotas.ScriptsPerHour == 3 &&
				c.Quotas.APICallsPerHour == 0 && c.Quotas.Window == 30*time.Minute
		}},
		{"web protection", map[string]string{
			"CORS_ALLOWED_ORIGINS": " https://studio.example , , http://localhost:3000 ",
			"ENABLE_HSTS":          "TRUE", "HSTS_MAX_AGE": "24h", "IDEMPOTENCY_TTL": "48h",
		}, func(c Config) bool {
			return reflect.DeepEqual(c.CORS.AllowedOrigins, []string{"https://studio.example", "http://localhost:3000"}) &&
				c.Security.EnableHSTS && c.Security.HSTSMaxAge == 24*time.Hour && c.IdempotencyTTL == 48*time.Hour
		}},
		{"tracing", map[string]string{
			"OTEL_ENABLED": "1", "OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317",
			"OTEL_EXPORTER_OTLP_INSECURE": "0", "OTEL_SERVICE_NAME": "studio", "OTEL_TRACES_SAMPLER_ARG": "0.75",
		}, func(c Config) bool {
			o := c.OTEL
			return o.Enabled && o.Endpoint == "otel:4317" && !o.Insecure && o.ServiceName == "studio" && o.SampleRatio == 0.75
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if !tc.check(cfg) {
				t.Fatalf("unexpected config: %+v", cfg)
			}
		})
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"unknown store driver", "STORE_DRIVER", "mongo", "STORE_DRIVER"},
		{"cache ttl non-positive", "CACHE_TTL", "0s", "CACHE_TTL"},
		{"provider timeout non-positive", "PROVIDER_TIMEOUT", "-1s", "PROVIDER_TIMEOUT"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"quota window non-positive", "QUOTA_WINDOW", "0s", "QUOTA_WINDOW"},
		{"quota negative", "QUOTA_VIDEOS_PER_HOUR", "-2", "quota limits"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"idempotency ttl non-positive", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected %s validation error, got: %v", tc.want, err)
			}
		})
	}

	t.Run("sqlite requires DB_PATH", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("DB_PATH", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "DB_PATH must not be empty") {
			t.Fatalf("expected DB_PATH validation error, got: %v", err)
		}
	})
}

// --- helpers ---

func TestHelpers_Parsing(t *testing.T) {
	t.Setenv("CT_STR", "val")
	t.Setenv("CT_EMPTY", "")
	t.Setenv("CT_FLOAT", "3.14")
	t.Setenv("CT_INT", "42")
	t.Setenv("CT_DUR", "150ms")
	t.Setenv("CT_BAD", "zzz")

	checks := []struct {
		name string
		ok   bool
	}{
		{"getenv set", getenv("CT_STR", "d") == "val"},
		{"getenv empty", getenv("CT_EMPTY", "d") == "d"},
		{"getfloat", getfloat("CT_FLOAT", 0) == 3.14},
		{"getfloat bad", getfloat("CT_BAD", 1.5) == 1.5},
		{"getint", getint("CT_INT", 0) == 42},
		{"getint bad", getint("CT_BAD", 7) == 7},
		{"getdur", getdur("CT_DUR", time.Second) == 150*time.Millisecond},
		{"getdur bad", getdur("CT_BAD", 2*time.Second) == 2*time.Second},
		{"getbool empty keeps default", getbool("CT_EMPTY", true) && !getbool("CT_EMPTY", false)},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("%s failed", c.name)
		}
	}

	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on"} {
		k := "CT_T" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Errorf("getbool(%q) = false", v)
		}
	}
	for i, v := range []string{"0", "false", " no ", "N", "off"} {
		k := "CT_F" + strconv.Itoa(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Errorf("getbool(%q) = true", v)
		}
	}

	if out := splitCSV(""); out != nil {
		t.Errorf("splitCSV(\"\") = %#v", out)
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("splitCSV = %#v", got)
	}
}

// Ensure tests don't inherit a PORT from the environment.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
