package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken string `koanf:"telegram_bot_token"`
	TelegramAPIURL   string `koanf:"telegram_api_url"`
	StoragePath      string `koanf:"storage_path"`
	HTTPPort         string `koanf:"http_port"`
	AppEnv           AppEnv `koanf:"app_env"`

	// StoreAvailable is false when the deployment runs without a policy store;
	// evaluation then enforces nothing.
	StoreAvailable bool `koanf:"store_available"`

	BanRulesTTLSeconds     int `koanf:"ban_rules_ttl_seconds"`
	GeneralTTLSeconds      int `koanf:"general_ttl_seconds"`
	SilenceTTLSeconds      int `koanf:"silence_ttl_seconds"`
	LimitsTTLSeconds       int `koanf:"limits_ttl_seconds"`
	CapabilitiesTTLSeconds int `koanf:"capabilities_ttl_seconds"`
	RuleCacheTTLSeconds    int `koanf:"rule_cache_ttl_seconds"`

	HousekeepingIntervalSeconds int `koanf:"housekeeping_interval_seconds"`
	NewMemberWindowMinutes      int `koanf:"new_member_window_minutes"`
	WindowIdleMinutes           int `koanf:"window_idle_minutes"`

	// FirstMatchOnly stops firewall evaluation at the first matching rule.
	FirstMatchOnly bool `koanf:"first_match_only"`

	WindowBackend string `koanf:"window_backend"`
	RedisURL      string `koanf:"redis_url"`

	NATSURL               string `koanf:"nats_url"`
	NATSInvalidateSubject string `koanf:"nats_invalidate_subject"`
}

var defaults = map[string]any{
	"telegram_api_url":              "https://api.telegram.org",
	"storage_path":                  "./data",
	"http_port":                     "8080",
	"app_env":                       "production",
	"store_available":               true,
	"ban_rules_ttl_seconds":         45,
	"general_ttl_seconds":           45,
	"silence_ttl_seconds":           45,
	"limits_ttl_seconds":            45,
	"capabilities_ttl_seconds":      45,
	"rule_cache_ttl_seconds":        45,
	"housekeeping_interval_seconds": 300,
	"new_member_window_minutes":     1440,
	"window_idle_minutes":           1440,
	"first_match_only":              false,
	"window_backend":                "memory",
	"nats_invalidate_subject":       "chatguard.policy.invalidate",
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if env, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = env
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	return &cfg, nil
}

// TTL converts one of the *_seconds settings to a duration, falling back to
// 45s for non-positive values.
func TTL(seconds int) time.Duration {
	if seconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
