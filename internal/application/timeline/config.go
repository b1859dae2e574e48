package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/penwyp/go-pm-timeline/internal/core/coords"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
)

// ErrInvalidConfig is wrapped by every configuration contract violation.
var ErrInvalidConfig = errors.New("invalid timeline config")

// EnvPrefix is the prefix of environment overrides, e.g. PMTL_ROWHEIGHT.
const EnvPrefix = "PMTL"

// Config contains configuration for a timeline view
type Config struct {
	// Geometry
	RowHeight         float64 `mapstructure:"rowHeight" yaml:"rowHeight"`
	ItemHeight        float64 `mapstructure:"itemHeight" yaml:"itemHeight"`
	ItemPadding       float64 `mapstructure:"itemPadding" yaml:"itemPadding"`
	MilestoneSize     float64 `mapstructure:"milestoneSize" yaml:"milestoneSize"`
	PixelsPerDay      float64 `mapstructure:"pixelsPerDay" yaml:"pixelsPerDay"`
	HeaderHeight      float64 `mapstructure:"headerHeight" yaml:"headerHeight"`
	HorizontalPadding float64 `mapstructure:"horizontalPadding" yaml:"horizontalPadding"`

	// Zoom
	MinZoomLevel float64       `mapstructure:"minZoomLevel" yaml:"minZoomLevel"`
	MaxZoomLevel float64       `mapstructure:"maxZoomLevel" yaml:"maxZoomLevel"`
	ZoomStep     float64       `mapstructure:"zoomStep" yaml:"zoomStep"`
	ZoomSettle   time.Duration `mapstructure:"zoomSettle" yaml:"zoomSettle"`

	// Features
	EnableAutoScroll  bool `mapstructure:"enableAutoScroll" yaml:"enableAutoScroll"`
	EnableCurrentDate bool `mapstructure:"enableCurrentDate" yaml:"enableCurrentDate"`
	EnableGrid        bool `mapstructure:"enableGrid" yaml:"enableGrid"`
	Loading           bool `mapstructure:"loading" yaml:"loading"`

	// Timing
	ResizeDebounce    time.Duration `mapstructure:"resizeDebounce" yaml:"resizeDebounce"`
	ReloadDebounce    time.Duration `mapstructure:"reloadDebounce" yaml:"reloadDebounce"`
	AutoScrollDelay   time.Duration `mapstructure:"autoScrollDelay" yaml:"autoScrollDelay"`
	AnimationDuration time.Duration `mapstructure:"animationDuration" yaml:"animationDuration"`
	FrameInterval     time.Duration `mapstructure:"frameInterval" yaml:"frameInterval"`

	// Layout workers
	LayoutTimeout   time.Duration `mapstructure:"layoutTimeout" yaml:"layoutTimeout"`
	WorkerThreshold int           `mapstructure:"workerThreshold" yaml:"workerThreshold"`
	Workers         int           `mapstructure:"workers" yaml:"workers"`

	// Display
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RowHeight:         40,
		ItemHeight:        24,
		ItemPadding:       8,
		MilestoneSize:     16,
		PixelsPerDay:      8,
		HeaderHeight:      32,
		HorizontalPadding: 24,
		MinZoomLevel:      interaction.DefaultMinZoom,
		MaxZoomLevel:      interaction.DefaultMaxZoom,
		ZoomStep:          interaction.DefaultZoomStep,
		ZoomSettle:        200 * time.Millisecond,
		EnableAutoScroll:  true,
		EnableCurrentDate: true,
		EnableGrid:        true,
		ResizeDebounce:    100 * time.Millisecond,
		ReloadDebounce:    250 * time.Millisecond,
		AutoScrollDelay:   interaction.DefaultAutoScrollDelay,
		AnimationDuration: 600 * time.Millisecond,
		FrameInterval:     16 * time.Millisecond,
		LayoutTimeout:     60 * time.Second,
		WorkerThreshold:   500,
		Timezone:          "Local",
	}
}

// Validate fills zero values with defaults and rejects contract violations.
// Boolean switches and the paddings, where zero is a legal value, are left
// untouched.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.RowHeight == 0 {
		c.RowHeight = d.RowHeight
	}
	if c.ItemHeight == 0 {
		c.ItemHeight = d.ItemHeight
	}
	if c.MilestoneSize == 0 {
		c.MilestoneSize = d.MilestoneSize
	}
	if c.PixelsPerDay == 0 {
		c.PixelsPerDay = d.PixelsPerDay
	}
	if c.HeaderHeight == 0 {
		c.HeaderHeight = d.HeaderHeight
	}
	if c.MinZoomLevel == 0 {
		c.MinZoomLevel = d.MinZoomLevel
	}
	if c.MaxZoomLevel == 0 {
		c.MaxZoomLevel = d.MaxZoomLevel
	}
	if c.ZoomStep == 0 {
		c.ZoomStep = d.ZoomStep
	}
	if c.ZoomSettle == 0 {
		c.ZoomSettle = d.ZoomSettle
	}
	if c.ResizeDebounce == 0 {
		c.ResizeDebounce = d.ResizeDebounce
	}
	if c.ReloadDebounce == 0 {
		c.ReloadDebounce = d.ReloadDebounce
	}
	if c.AutoScrollDelay == 0 {
		c.AutoScrollDelay = d.AutoScrollDelay
	}
	if c.AnimationDuration == 0 {
		c.AnimationDuration = d.AnimationDuration
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.LayoutTimeout == 0 {
		c.LayoutTimeout = d.LayoutTimeout
	}
	if c.WorkerThreshold == 0 {
		c.WorkerThreshold = d.WorkerThreshold
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}

	for name, v := range map[string]float64{
		"rowHeight":         c.RowHeight,
		"itemHeight":        c.ItemHeight,
		"itemPadding":       c.ItemPadding,
		"milestoneSize":     c.MilestoneSize,
		"pixelsPerDay":      c.PixelsPerDay,
		"headerHeight":      c.HeaderHeight,
		"horizontalPadding": c.HorizontalPadding,
		"minZoomLevel":      c.MinZoomLevel,
		"maxZoomLevel":      c.MaxZoomLevel,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidConfig, name, v)
		}
	}
	for name, v := range map[string]time.Duration{
		"zoomSettle":        c.ZoomSettle,
		"resizeDebounce":    c.ResizeDebounce,
		"reloadDebounce":    c.ReloadDebounce,
		"autoScrollDelay":   c.AutoScrollDelay,
		"animationDuration": c.AnimationDuration,
		"frameInterval":     c.FrameInterval,
		"layoutTimeout":     c.LayoutTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidConfig, name, v)
		}
	}
	if c.MinZoomLevel > c.MaxZoomLevel {
		return fmt.Errorf("%w: minZoomLevel %g exceeds maxZoomLevel %g", ErrInvalidConfig, c.MinZoomLevel, c.MaxZoomLevel)
	}
	if c.ItemHeight+c.ItemPadding > c.RowHeight {
		return fmt.Errorf("%w: itemHeight %g plus itemPadding %g exceeds rowHeight %g",
			ErrInvalidConfig, c.ItemHeight, c.ItemPadding, c.RowHeight)
	}
	if c.ZoomStep <= 1 {
		return fmt.Errorf("%w: zoomStep must be greater than 1, got %g", ErrInvalidConfig, c.ZoomStep)
	}
	if c.WorkerThreshold < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: worker settings must not be negative", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return nil
}

// Rows returns the vertical grid described by the config.
func (c Config) Rows() coords.Rows {
	return coords.Rows{
		RowHeight:     c.RowHeight,
		ItemHeight:    c.ItemHeight,
		ItemPadding:   c.ItemPadding,
		MilestoneSize: c.MilestoneSize,
	}
}

// LoadConfig reads an optional config file (YAML, TOML or JSON by extension)
// on top of DefaultConfig, then applies PMTL_* environment overrides. An
// empty path only applies defaults and the environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	for key, value := range map[string]any{
		"rowHeight":         defaults.RowHeight,
		"itemHeight":        defaults.ItemHeight,
		"itemPadding":       defaults.ItemPadding,
		"milestoneSize":     defaults.MilestoneSize,
		"pixelsPerDay":      defaults.PixelsPerDay,
		"headerHeight":      defaults.HeaderHeight,
		"horizontalPadding": defaults.HorizontalPadding,
		"minZoomLevel":      defaults.MinZoomLevel,
		"maxZoomLevel":      defaults.MaxZoomLevel,
		"zoomStep":          defaults.ZoomStep,
		"zoomSettle":        defaults.ZoomSettle,
		"enableAutoScroll":  defaults.EnableAutoScroll,
		"enableCurrentDate": defaults.EnableCurrentDate,
		"enableGrid":        defaults.EnableGrid,
		"loading":           defaults.Loading,
		"resizeDebounce":    defaults.ResizeDebounce,
		"reloadDebounce":    defaults.ReloadDebounce,
		"autoScrollDelay":   defaults.AutoScrollDelay,
		"animationDuration": defaults.AnimationDuration,
		"frameInterval":     defaults.FrameInterval,
		"layoutTimeout":     defaults.LayoutTimeout,
		"workerThreshold":   defaults.WorkerThreshold,
		"workers":           defaults.Workers,
		"timezone":          defaults.Timezone,
	} {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
