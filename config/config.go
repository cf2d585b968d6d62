package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"compliment-deck/app"
	"compliment-deck/model"
	"compliment-deck/store"
)

const envPrefix = "COMPLIMENTS_"

// Config holds every tunable of the deck.
type Config struct {
	DataDir  string         `yaml:"data_dir" validate:"required"`
	Store    string         `yaml:"store" validate:"required,oneof=file sqlite memory"`
	LogLevel string         `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	Deck     DeckConfig     `yaml:"deck"`
	Progress ProgressConfig `yaml:"progress"`
}

type DeckConfig struct {
	DrawThreshold     int `yaml:"draw_threshold" validate:"gt=0"`
	DailyDrawLimit    int `yaml:"daily_draw_limit" validate:"gt=0"`
	SecretUnlockDraws int `yaml:"secret_unlock_draws" validate:"gt=0"`
	ScanBoundFactor   int `yaml:"scan_bound_factor" validate:"gte=1,lte=10"`
}

type ProgressConfig struct {
	LoveMax         int            `yaml:"love_max" validate:"gt=0"`
	PointsPerDraw   int            `yaml:"points_per_draw" validate:"gte=0"`
	PointsPerReason int            `yaml:"points_per_reason" validate:"gte=0"`
	Themes          map[string]int `yaml:"themes" validate:"required,dive,keys,oneof=lavender night sunset,endkeys,gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Store:    "file",
		LogLevel: "info",
		Deck: DeckConfig{
			DrawThreshold:     app.DefaultDrawThreshold,
			DailyDrawLimit:    app.DefaultDailyDrawLimit,
			SecretUnlockDraws: app.DefaultSecretUnlockDraws,
			ScanBoundFactor:   app.DefaultScanBoundFactor,
		},
		Progress: ProgressConfig{
			LoveMax:         app.DefaultLoveMax,
			PointsPerDraw:   1,
			PointsPerReason: 5,
			Themes: map[string]int{
				string(model.ThemeLavender): 10,
				string(model.ThemeNight):    25,
				string(model.ThemeSunset):   50,
			},
		},
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".compliment-deck"
	}
	return filepath.Join(dir, "compliment-deck")
}

// Load layers defaults, a .env file in the working directory, the YAML file at
// path and COMPLIMENTS_* environment variables, then validates the result.
// An empty or missing path keeps the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v, ok := lookupEnv("DATA_DIR"); ok {
		c.DataDir = v
	}
	if v, ok := lookupEnv("STORE"); ok {
		c.Store = strings.ToLower(v)
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"DRAW_THRESHOLD", &c.Deck.DrawThreshold},
		{"DAILY_DRAW_LIMIT", &c.Deck.DailyDrawLimit},
		{"SECRET_UNLOCK_DRAWS", &c.Deck.SecretUnlockDraws},
		{"SCAN_BOUND_FACTOR", &c.Deck.ScanBoundFactor},
		{"LOVE_MAX", &c.Progress.LoveMax},
		{"POINTS_PER_DRAW", &c.Progress.PointsPerDraw},
		{"POINTS_PER_REASON", &c.Progress.PointsPerReason},
	}
	for _, o := range ints {
		v, ok := lookupEnv(o.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", envPrefix, o.name, v, err)
		}
		*o.dst = n
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Backend() store.Backend { return store.Backend(c.Store) }

// DeckOptions maps the deck section onto engine options.
func (c *Config) DeckOptions() app.DeckOptions {
	return app.DeckOptions{
		DrawThreshold:     c.Deck.DrawThreshold,
		DailyDrawLimit:    c.Deck.DailyDrawLimit,
		SecretUnlockDraws: c.Deck.SecretUnlockDraws,
		ScanBoundFactor:   c.Deck.ScanBoundFactor,
	}
}

// ServiceOptions builds the Service options, with milestones in ascending
// reason order.
func (c *Config) ServiceOptions() app.Options {
	milestones := make([]app.Milestone, 0, len(c.Progress.Themes))
	for _, t := range model.Themes {
		if n, ok := c.Progress.Themes[string(t)]; ok {
			milestones = append(milestones, app.Milestone{Theme: t, Reasons: n})
		}
	}
	slices.SortStableFunc(milestones, func(a, b app.Milestone) int { return a.Reasons - b.Reasons })

	return app.Options{
		Deck: c.DeckOptions(),
		Progress: app.ProgressOptions{
			LoveMax:    c.Progress.LoveMax,
			Milestones: milestones,
		},
		LovePointsPerDraw:   c.Progress.PointsPerDraw,
		LovePointsPerReason: c.Progress.PointsPerReason,
	}
}
