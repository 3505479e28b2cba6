package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eduquest/internal/engine"
)

// Config holds all configuration for eq.
type Config struct {
	Store   StoreConfig
	Redis   RedisConfig
	Content ContentConfig
	Log     LogConfig
	// RulesFile optionally points at a YAML file of game rule overrides.
	RulesFile string
	// TickInterval is how often the board polls focus regen and the daily
	// reset.
	TickInterval time.Duration
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string
	DBPath  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// ContentConfig points at a directory of catalog overrides.
type ContentConfig struct {
	Dir string
}

type LogConfig struct {
	Mode  string
	Level string
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("EDUQUEST_STORE", BackendSQLite)),
			DBPath:  getEnv("EDUQUEST_DB", ""),
		},
		Redis: RedisConfig{
			Address:  getEnv("EDUQUEST_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("EDUQUEST_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("EDUQUEST_REDIS_DB", 0),
			Prefix:   getEnv("EDUQUEST_REDIS_PREFIX", "eduquest:"),
		},
		Content: ContentConfig{
			Dir: getEnv("EDUQUEST_CONTENT_DIR", ""),
		},
		Log: LogConfig{
			Mode:  getEnv("EDUQUEST_LOG_MODE", "prod"),
			Level: getEnv("EDUQUEST_LOG_LEVEL", "warn"),
		},
		RulesFile:    getEnv("EDUQUEST_CONFIG", ""),
		TickInterval: getEnvAsDuration("EDUQUEST_TICK", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis store")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("invalid redis db: %d", c.Redis.DB)
		}
	default:
		return fmt.Errorf("unknown store backend %q (want sqlite, redis or memory)", c.Store.Backend)
	}
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("unknown log mode %q", c.Log.Mode)
	}
	if c.TickInterval < time.Second {
		return fmt.Errorf("tick interval %s is shorter than 1s", c.TickInterval)
	}
	return nil
}

// rulesFile mirrors engine.Rules with every field optional. Durations are Go
// duration strings ("90m", "24h").
type rulesFile struct {
	XPPerLevel          map[int]float64 `yaml:"xp_per_level"`
	SkillPointsPerLevel *int            `yaml:"skill_points_per_level"`
	StartingGold        *int            `yaml:"starting_gold"`
	StartingSkillPoints *int            `yaml:"starting_skill_points"`
	FocusMax            *float64        `yaml:"focus_max"`
	FocusRegenRate      *float64        `yaml:"focus_regen_rate"`
	FocusRegenInterval  string          `yaml:"focus_regen_interval"`
	RespecCost          *int            `yaml:"respec_cost"`
	RefreshInterval     string          `yaml:"refresh_interval"`
	DefaultName         string          `yaml:"default_name"`
	GoldPerXP           *float64        `yaml:"gold_per_xp"`
}

// Rules returns the game rules: the defaults, overlaid with RulesFile when
// one is configured.
func (c *Config) Rules() (engine.Rules, error) {
	if c.RulesFile == "" {
		return engine.DefaultRules(), nil
	}
	return LoadRules(c.RulesFile)
}

// LoadRules reads rule overrides from path. Unknown keys are an error so a
// typo does not silently fall back to a default.
func LoadRules(path string) (engine.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Rules{}, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()

	var rf rulesFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return engine.Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	rules, err := rf.apply(engine.DefaultRules())
	if err != nil {
		return engine.Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return engine.Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

func (rf rulesFile) apply(r engine.Rules) (engine.Rules, error) {
	if len(rf.XPPerLevel) > 0 {
		r.XPPerLevel = rf.XPPerLevel
	}
	setInt(&r.SkillPointsPerLevel, rf.SkillPointsPerLevel)
	setInt(&r.StartingGold, rf.StartingGold)
	setInt(&r.StartingSkillPoints, rf.StartingSkillPoints)
	setInt(&r.RespecCost, rf.RespecCost)
	setFloat(&r.FocusMax, rf.FocusMax)
	setFloat(&r.FocusRegenRate, rf.FocusRegenRate)
	setFloat(&r.GoldPerXP, rf.GoldPerXP)
	if rf.DefaultName != "" {
		r.DefaultName = rf.DefaultName
	}
	var err error
	if r.FocusRegenInterval, err = parseDuration("focus_regen_interval", rf.FocusRegenInterval, r.FocusRegenInterval); err != nil {
		return r, err
	}
	if r.RefreshInterval, err = parseDuration("refresh_interval", rf.RefreshInterval, r.RefreshInterval); err != nil {
		return r, err
	}
	return r, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
