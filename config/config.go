// Package config loads reactor settings from YAML with REACTOR_*
// environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/errors"
	"github.com/wippyai/reactor/wasmhost"
)

type Config struct {
	Binder  BinderConfig  `yaml:"binder"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
}

type BinderConfig struct {
	// Policy is "reject" (default) or "supersede".
	Policy       string `yaml:"policy"`
	RetainResult bool   `yaml:"retainResult"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// BackendConfig selects what binders call: a WASM module or a JSON-RPC
// ledger. Exactly one of Wasm and RPC is used; Wasm wins when both are set.
type BackendConfig struct {
	Wasm             string  `yaml:"wasm"`
	Wit              string  `yaml:"wit"`
	RPC              string  `yaml:"rpc"`
	Token            string  `yaml:"token"`
	MemoryLimitPages uint32  `yaml:"memoryLimitPages"`
	WASI             bool    `yaml:"wasi"`
	RateLimit        float64 `yaml:"rateLimit"`
	Burst            int     `yaml:"burst"`
}

type ServerConfig struct {
	Listen     string  `yaml:"listen"`
	Principal  string  `yaml:"principal"`
	OwnerToken string  `yaml:"ownerToken"`
	Balance    uint64  `yaml:"balance"`
	RateLimit  float64 `yaml:"rateLimit"`
	Burst      int     `yaml:"burst"`
	Metrics    bool    `yaml:"metrics"`
}

func Default() *Config {
	return &Config{
		Binder: BinderConfig{Policy: binder.RejectWhilePending.String()},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{
			Listen:    "127.0.0.1:1234",
			Principal: "reactor",
			Balance:   100,
			Metrics:   true,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse "+path)
		}
	}
	if err := ApplyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides sets fields from REACTOR_* variables found by lookup.
func ApplyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var err error
	parse := func(key string, set func(string) error) {
		v, ok := lookup(key)
		if !ok || err != nil || strings.TrimSpace(v) == "" {
			return
		}
		if perr := set(strings.TrimSpace(v)); perr != nil {
			err = errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Value(v).
				Cause(perr).
				Detail("environment variable %s", key).
				Build()
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(s string) error {
			b, perr := strconv.ParseBool(s)
			*dst = b
			return perr
		}
	}
	float := func(dst *float64) func(string) error {
		return func(s string) error {
			f, perr := strconv.ParseFloat(s, 64)
			*dst = f
			return perr
		}
	}

	str("REACTOR_POLICY", &cfg.Binder.Policy)
	parse("REACTOR_RETAIN_RESULT", boolean(&cfg.Binder.RetainResult))
	str("REACTOR_LOG_LEVEL", &cfg.Log.Level)
	parse("REACTOR_LOG_DEVELOPMENT", boolean(&cfg.Log.Development))

	str("REACTOR_WASM", &cfg.Backend.Wasm)
	str("REACTOR_WIT", &cfg.Backend.Wit)
	str("REACTOR_RPC", &cfg.Backend.RPC)
	str("REACTOR_TOKEN", &cfg.Backend.Token)
	parse("REACTOR_WASI", boolean(&cfg.Backend.WASI))
	parse("REACTOR_MEMORY_LIMIT_PAGES", func(s string) error {
		n, perr := strconv.ParseUint(s, 10, 32)
		cfg.Backend.MemoryLimitPages = uint32(n)
		return perr
	})
	parse("REACTOR_RATE_LIMIT", float(&cfg.Backend.RateLimit))

	str("REACTOR_LISTEN", &cfg.Server.Listen)
	str("REACTOR_PRINCIPAL", &cfg.Server.Principal)
	str("REACTOR_OWNER_TOKEN", &cfg.Server.OwnerToken)
	parse("REACTOR_BALANCE", func(s string) error {
		n, perr := strconv.ParseUint(s, 10, 64)
		cfg.Server.Balance = n
		return perr
	})
	parse("REACTOR_SERVER_RATE_LIMIT", float(&cfg.Server.RateLimit))
	parse("REACTOR_METRICS", boolean(&cfg.Server.Metrics))
	return err
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := binder.ParsePolicy(c.Binder.Policy); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	if c.Backend.RateLimit < 0 || c.Server.RateLimit < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "rate limit must not be negative")
	}
	if c.Backend.Burst < 0 || c.Server.Burst < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "burst must not be negative")
	}
	return nil
}

// BinderOptions translates the binder section into binder options.
func (c *Config) BinderOptions() ([]binder.Option, error) {
	policy, err := binder.ParsePolicy(c.Binder.Policy)
	if err != nil {
		return nil, err
	}
	return []binder.Option{
		binder.WithPolicy(policy),
		binder.WithRetainResult(c.Binder.RetainResult),
	}, nil
}

func (c *Config) WasmHost() *wasmhost.Config {
	return &wasmhost.Config{
		MemoryLimitPages: c.Backend.MemoryLimitPages,
		EnableWASI:       c.Backend.WASI,
	}
}

// ClientLimiter returns the client-side call limiter, or nil when unlimited.
func (c *Config) ClientLimiter() *rate.Limiter {
	return limiter(c.Backend.RateLimit, c.Backend.Burst)
}

// ServerLimiter returns the server request limiter, or nil when unlimited.
func (c *Config) ServerLimiter() *rate.Limiter {
	return limiter(c.Server.RateLimit, c.Server.Burst)
}

func limiter(r float64, burst int) *rate.Limiter {
	if r <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r), burst)
}

// NewLogger builds a zap logger for the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
