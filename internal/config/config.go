package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/plx/internal/parallax"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type FeedConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	MaxItems    int           `mapstructure:"max_items"`
}

// LayoutConfig tunes the parallax list. Heights are measured in virtual
// pixels; CellHeight converts terminal rows into pixels.
type LayoutConfig struct {
	FullViewFraction      float64       `mapstructure:"full_view_fraction"`
	CollapsedViewFraction float64       `mapstructure:"collapsed_view_fraction"`
	OverlayMaxAlpha       int           `mapstructure:"overlay_max_alpha"`
	BottomSlack           int           `mapstructure:"bottom_slack"`
	CellHeight            int           `mapstructure:"cell_height"`
	ScrollStep            int           `mapstructure:"scroll_step"`
	SmoothScrollFrames    int           `mapstructure:"smooth_scroll_frames"`
	FrameInterval         time.Duration `mapstructure:"frame_interval"`
}

type UIConfig struct {
	Colors  UIColors `mapstructure:"colors"`
	Palette []string `mapstructure:"palette"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit        string `mapstructure:"quit"`
	Search      string `mapstructure:"search"`
	Top         string `mapstructure:"top"`
	Bottom      string `mapstructure:"bottom"`
	TapSentinel string `mapstructure:"tap_sentinel"`
	OpenImage   string `mapstructure:"open_image"`
	Details     string `mapstructure:"details"`
	Back        string `mapstructure:"back"`
	Help        string `mapstructure:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".plx.db")
	searchIndexPath := filepath.Join(homeDir, ".plx", "index.bleve")

	opts := parallax.DefaultOptions()

	return &Config{
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		Feed: FeedConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "plx/1.0 (https://github.com/pders01/plx)",
			MaxItems:    200,
		},
		Layout: LayoutConfig{
			FullViewFraction:      opts.FullViewFraction,
			CollapsedViewFraction: opts.CollapsedViewFraction,
			OverlayMaxAlpha:       opts.OverlayMaxAlpha,
			BottomSlack:           opts.BottomSlack,
			CellHeight:            24,
			ScrollStep:            48,
			SmoothScrollFrames:    12,
			FrameInterval:         16 * time.Millisecond,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Palette: []string{"#E07A5F", "#3D405B", "#81B29A", "#F2CC8F", "#6D597A", "#457B9D"},
		},
		Media: MediaConfig{
			Darwin:        []string{"preview", "open"},
			Linux:         []string{"sxiv", "feh", "eog", "xdg-open"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:        "q",
				Search:      "/",
				Top:         "g",
				Bottom:      "G",
				TapSentinel: "t",
				OpenImage:   "o",
				Details:     "i",
				Back:        "esc",
				Help:        "?",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Options converts the layout section into engine options.
func (c LayoutConfig) Options() parallax.Options {
	return parallax.Options{
		FullViewFraction:      c.FullViewFraction,
		CollapsedViewFraction: c.CollapsedViewFraction,
		OverlayMaxAlpha:       c.OverlayMaxAlpha,
		BottomSlack:           c.BottomSlack,
	}
}

// Validate checks the values the gallery cannot run without.
func (c *Config) Validate() error {
	if err := c.Layout.Options().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if c.Layout.CellHeight <= 0 {
		return fmt.Errorf("layout: cell height must be positive, got %d", c.Layout.CellHeight)
	}
	if c.Layout.ScrollStep <= 0 {
		return fmt.Errorf("layout: scroll step must be positive, got %d", c.Layout.ScrollStep)
	}
	if c.Layout.SmoothScrollFrames <= 0 {
		return fmt.Errorf("layout: smooth scroll frames must be positive, got %d", c.Layout.SmoothScrollFrames)
	}
	return nil
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("feed", cfg.Feed)
	v.SetDefault("layout", cfg.Layout)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "plx")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PLX")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decode over the defaults so a partially written section keeps the
	// defaults of the keys it omits.
	config := defaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings so the TOML stays readable.
	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	feedCfg := map[string]interface{}{
		"http_timeout": config.Feed.HTTPTimeout.String(),
		"user_agent":   config.Feed.UserAgent,
		"max_items":    config.Feed.MaxItems,
	}

	layoutCfg := map[string]interface{}{
		"full_view_fraction":      config.Layout.FullViewFraction,
		"collapsed_view_fraction": config.Layout.CollapsedViewFraction,
		"overlay_max_alpha":       config.Layout.OverlayMaxAlpha,
		"bottom_slack":            config.Layout.BottomSlack,
		"cell_height":             config.Layout.CellHeight,
		"scroll_step":             config.Layout.ScrollStep,
		"smooth_scroll_frames":    config.Layout.SmoothScrollFrames,
		"frame_interval":          config.Layout.FrameInterval.String(),
	}

	c := config.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
		},
		"palette": config.UI.Palette,
	}

	mediaCfg := map[string]interface{}{
		"darwin":         config.Media.Darwin,
		"linux":          config.Media.Linux,
		"windows":        config.Media.Windows,
		"default_opener": config.Media.DefaultOpener,
	}

	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"bindings": map[string]interface{}{
			"quit":         b.Quit,
			"search":       b.Search,
			"top":          b.Top,
			"bottom":       b.Bottom,
			"tap_sentinel": b.TapSentinel,
			"open_image":   b.OpenImage,
			"details":      b.Details,
			"back":         b.Back,
			"help":         b.Help,
		},
	}

	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	v.Set("database", dbCfg)
	v.Set("feed", feedCfg)
	v.Set("layout", layoutCfg)
	v.Set("ui", uiCfg)
	v.Set("media", mediaCfg)
	v.Set("keys", keysCfg)
	v.Set("log", logCfg)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
