package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_FillsDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	want := DefaultConfig()
	want.EnableAutoScroll = false
	want.EnableCurrentDate = false
	want.EnableGrid = false
	want.ItemPadding = 0
	want.HorizontalPadding = 0
	assert.Equal(t, want, cfg)
}

func TestConfigValidate_ZeroPaddingIsKept(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RowHeight, cfg.ItemHeight, cfg.ItemPadding = 24, 24, 0
	cfg.HorizontalPadding = 0
	require.NoError(t, cfg.Validate())

	assert.Zero(t, cfg.ItemPadding)
	assert.Zero(t, cfg.HorizontalPadding)
	assert.Equal(t, 24.0, cfg.ItemHeight)
}

func TestConfigValidate_KeepsExplicitValues(t *testing.T) {
	cfg := Config{RowHeight: 60, ItemHeight: 30, PixelsPerDay: 3, ZoomSettle: time.Second, Timezone: "UTC"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60.0, cfg.RowHeight)
	assert.Equal(t, 30.0, cfg.ItemHeight)
	assert.Equal(t, 3.0, cfg.PixelsPerDay)
	assert.Equal(t, time.Second, cfg.ZoomSettle)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestConfigValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative_row_height", mutate: func(c *Config) { c.RowHeight = -1 }},
		{name: "negative_pixels_per_day", mutate: func(c *Config) { c.PixelsPerDay = -2 }},
		{name: "min_zoom_above_max", mutate: func(c *Config) { c.MinZoomLevel, c.MaxZoomLevel = 3, 2 }},
		{name: "item_taller_than_row", mutate: func(c *Config) { c.ItemHeight = 40 }},
		{name: "zoom_step_not_growing", mutate: func(c *Config) { c.ZoomStep = 0.9 }},
		{name: "negative_duration", mutate: func(c *Config) { c.ZoomSettle = -time.Millisecond }},
		{name: "negative_reload_debounce", mutate: func(c *Config) { c.ReloadDebounce = -time.Second }},
		{name: "negative_workers", mutate: func(c *Config) { c.Workers = -1 }},
		{name: "unknown_timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigRows(t *testing.T) {
	rows := DefaultConfig().Rows()
	assert.Equal(t, 40.0, rows.RowHeight)
	assert.Equal(t, 24.0, rows.ItemHeight)
	assert.Equal(t, 8.0, rows.ItemPadding)
	assert.Equal(t, 16.0, rows.MilestoneSize)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults_without_file", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml_file_and_env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timeline.yaml")
		content := `rowHeight: 50
itemHeight: 30
enableGrid: false
zoomSettle: 250ms
reloadDebounce: 1s
maxZoomLevel: 8
timezone: UTC
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		t.Setenv("PMTL_PIXELSPERDAY", "12")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 50.0, cfg.RowHeight)
		assert.Equal(t, 30.0, cfg.ItemHeight)
		assert.False(t, cfg.EnableGrid)
		assert.True(t, cfg.EnableAutoScroll)
		assert.Equal(t, 250*time.Millisecond, cfg.ZoomSettle)
		assert.Equal(t, time.Second, cfg.ReloadDebounce)
		assert.Equal(t, 100*time.Millisecond, cfg.ResizeDebounce)
		assert.Equal(t, 8.0, cfg.MaxZoomLevel)
		assert.Equal(t, 12.0, cfg.PixelsPerDay)
		assert.Equal(t, "UTC", cfg.Timezone)
	})

	t.Run("json_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timeline.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"headerHeight": 20, "enableCurrentDate": false}`), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 20.0, cfg.HeaderHeight)
		assert.False(t, cfg.EnableCurrentDate)
	})

	t.Run("explicit_zero_padding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tight.yaml")
		content := `rowHeight: 24
itemHeight: 24
itemPadding: 0
horizontalPadding: 0
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 24.0, cfg.RowHeight)
		assert.Zero(t, cfg.ItemPadding)
		assert.Zero(t, cfg.HorizontalPadding)
	})

	t.Run("omitted_padding_uses_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rowHeight: 48\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 8.0, cfg.ItemPadding)
		assert.Equal(t, 24.0, cfg.HorizontalPadding)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("contract_violation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("minZoomLevel: 5\n"), 0o644))

		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
