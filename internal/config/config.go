package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/pelletier/go-toml/v2"
)

// PathEnv names the variable that points at an optional TOML config file.
const PathEnv = "FAMCOORD_CONFIG"

type AppConfig struct {
	DBPath   string `toml:"db_path" env:"FAMCOORD_DB_PATH"`
	LogLevel string `toml:"log_level" env:"FAMCOORD_LOG_LEVEL"`
	Timezone string `toml:"timezone" env:"FAMCOORD_TIMEZONE"`
}

// DefaultsConfig holds the values used for fields an instruction omits.
type DefaultsConfig struct {
	Type        string `toml:"type" env:"FAMCOORD_DEFAULT_TYPE"`
	Assignee    string `toml:"assignee" env:"FAMCOORD_DEFAULT_ASSIGNEE"`
	Time        string `toml:"time" env:"FAMCOORD_DEFAULT_TIME"`
	DurationMin int    `toml:"duration_min" env:"FAMCOORD_DEFAULT_DURATION_MIN"`
}

type FeatureFlags struct {
	NaturalLanguage bool `toml:"natural_language" env:"FAMCOORD_FEATURE_NATURAL_LANGUAGE"`
	PrepTasks       bool `toml:"prep_tasks" env:"FAMCOORD_FEATURE_PREP_TASKS"`
	Recommendations bool `toml:"recommendations" env:"FAMCOORD_FEATURE_RECOMMENDATIONS"`
	AutoApply       bool `toml:"auto_apply" env:"FAMCOORD_AUTO_APPLY"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr" env:"FAMCOORD_SERVER_ADDR"`
	CORSOrigins []string `toml:"cors_origins" env:"FAMCOORD_CORS_ORIGINS" envSeparator:","`
}

type CalendarConfig struct {
	GoogleCredentialsFile string `toml:"google_credentials_file" env:"FAMCOORD_GOOGLE_CREDENTIALS_FILE"`
	GoogleTokenFile       string `toml:"google_token_file" env:"FAMCOORD_GOOGLE_TOKEN_FILE"`
	GoogleCalendarID      string `toml:"google_calendar_id" env:"FAMCOORD_GOOGLE_CALENDAR_ID"`
	Days                  int    `toml:"days" env:"FAMCOORD_CALENDAR_DAYS"`

	CalDAVURL      string `toml:"caldav_url" env:"FAMCOORD_CALDAV_URL"`
	CalDAVUser     string `toml:"caldav_user" env:"FAMCOORD_CALDAV_USER"`
	CalDAVPassword string `toml:"-" env:"FAMCOORD_CALDAV_PASSWORD"`
	CalDAVCalendar string `toml:"caldav_calendar" env:"FAMCOORD_CALDAV_CALENDAR"`
}

// Config is the full application configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Defaults DefaultsConfig `toml:"defaults"`
	Features FeatureFlags   `toml:"features"`
	Server   ServerConfig   `toml:"server"`
	Calendar CalendarConfig `toml:"calendar"`
	LLM      llm.LLMConfig  `toml:"llm"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		App: AppConfig{
			DBPath:   defaultDBPath(),
			LogLevel: "info",
			Timezone: "Local",
		},
		Defaults: DefaultsConfig{
			Type:        string(domain.TypePickUp),
			Assignee:    string(domain.AssigneeMom),
			Time:        "12:00",
			DurationMin: domain.DefaultDurationMin,
		},
		Features: FeatureFlags{
			NaturalLanguage: true,
			PrepTasks:       true,
			Recommendations: true,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Calendar: CalendarConfig{
			GoogleCalendarID: "primary",
			Days:             30,
		},
		LLM: llm.DefaultConfig(),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".famcoord", "famcoord.db")
	}
	return filepath.Join(home, ".famcoord", "famcoord.db")
}

// Load builds the configuration from defaults, then the TOML file named by
// FAMCOORD_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(PathEnv)); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays a TOML file onto c. Keys absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays FAMCOORD_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	sections := []any{&c.App, &c.Defaults, &c.Features, &c.Server, &c.Calendar}
	for _, s := range sections {
		if err := env.Parse(s); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return c.LLM.ApplyEnv()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.App.DBPath) == "" {
		errs = append(errs, errors.New("app.db_path is required"))
	}
	if _, err := parseLevel(c.App.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.InterpreterDefaults(); err != nil {
		errs = append(errs, err)
	}
	if c.Defaults.DurationMin <= 0 {
		errs = append(errs, fmt.Errorf("defaults.duration_min must be positive, got %d", c.Defaults.DurationMin))
	}
	if c.Calendar.Days <= 0 {
		errs = append(errs, fmt.Errorf("calendar.days must be positive, got %d", c.Calendar.Days))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries))
	}
	return errors.Join(errs...)
}

// InterpreterDefaults converts the configured defaults to canonical values.
func (c Config) InterpreterDefaults() (intelligence.Defaults, error) {
	typ, ok := domain.ParseActivityType(c.Defaults.Type)
	if !ok {
		return intelligence.Defaults{}, fmt.Errorf("defaults.type %q is not a known activity type", c.Defaults.Type)
	}
	assignee, ok := domain.ParseAssignee(c.Defaults.Assignee)
	if !ok {
		return intelligence.Defaults{}, fmt.Errorf("defaults.assignee %q is not a known assignee", c.Defaults.Assignee)
	}
	clock, ok := intelligence.NormalizeTime(c.Defaults.Time)
	if !ok {
		return intelligence.Defaults{}, fmt.Errorf("defaults.time %q is not a time of day", c.Defaults.Time)
	}
	return intelligence.Defaults{Type: typ, Assignee: assignee, Time: clock}, nil
}

// Location returns the household timezone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.App.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}
	return loc, nil
}

// NewLogger returns a text slog.Logger at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.App.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("app.log_level: %w", err)
	}
	return level, nil
}
