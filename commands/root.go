package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-pm-timeline/internal/application/timeline"
	dates "github.com/penwyp/go-pm-timeline/internal/core/timeline"
	"github.com/penwyp/go-pm-timeline/internal/data/cache"
	"github.com/penwyp/go-pm-timeline/internal/data/parser"
	"github.com/penwyp/go-pm-timeline/internal/data/scanner"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

var (
	// Logging related
	debug    bool
	logLevel string
	logFile  string

	// Input related
	configPath  string
	inputFormat string
	timezone    string
	todayFlag   string

	// Cache related
	cacheDir   string
	noCache    bool
	resetCache bool

	// Loaded in PersistentPreRunE
	cfg timeline.Config

	rootCmd = &cobra.Command{
		Use:   "go-pm-timeline",
		Short: "Project timeline layout and rendering tool",
		Long: `go-pm-timeline lays out project work items on a time axis and renders them.

Records are read from JSON, JSON Lines, YAML or CSV files, or from every such file
below a directory. Each record needs an id and a
start/due date range or a creation date; records without either are skipped.

Examples:
  go-pm-timeline layout items.json                   # Print rows as a table
  go-pm-timeline layout items.csv -o json            # Print rows as JSON
  go-pm-timeline render items.yaml --out plan.svg    # Draw the timeline to SVG
  go-pm-timeline view items.json --watch             # Interactive terminal view`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

const (
	defaultLogFile  = "~/.go-pm-timeline/logs/app.log"
	defaultCacheDir = "~/.go-pm-timeline/cache"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode (debug logs mirrored to stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVarP(&inputFormat, "format", "f", "auto",
		"Input format (auto, json, jsonl, yaml, csv)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone deciding the current day (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().StringVar(&todayFlag, "today", "",
		"Pin the current day (YYYY-MM-DD) for reproducible output")

	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCacheDir,
		"Directory of the parsed records cache")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false,
		"Parse every input file without consulting the cache")
	rootCmd.PersistentFlags().BoolVar(&resetCache, "reset", false,
		"Clear the parsed records cache before loading")
}

func setup(cmd *cobra.Command, args []string) error {
	level := logLevel
	if debug {
		level = "debug"
	}
	path := expandPath(logFile)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(level, path, debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	loaded, err := timeline.LoadConfig(expandConfigPath(configPath))
	if err != nil {
		return err
	}
	if timezone != "" {
		loaded.Timezone = timezone
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newDataLoader(files []string) (*timeline.DataLoader, error) {
	format, err := parser.ParseFormat(inputFormat)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = expandPath(f)
	}
	paths, err = scanner.Expand(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	loader, err := timeline.NewDataLoader(paths, format, runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if noCache {
		return loader, nil
	}

	fc, err := cache.NewFileCache(expandPath(cacheDir))
	if err != nil {
		util.LogWarnf("Records cache disabled: %v", err)
		return loader, nil
	}
	if resetCache {
		if err := fc.Clear(); err != nil {
			return nil, fmt.Errorf("failed to reset cache: %w", err)
		}
		util.LogInfof("Cache cleared: %s", cacheDir)
	}
	loader.UseStore(fc)
	return loader, nil
}

// currentDay returns the provider of the current calendar day: the pinned
// --today value or today in the configured timezone.
func currentDay() (func() time.Time, error) {
	if todayFlag != "" {
		day, ok := dates.ParseDate(todayFlag)
		if !ok {
			return nil, fmt.Errorf("invalid --today %q: want YYYY-MM-DD", todayFlag)
		}
		return func() time.Time { return day }, nil
	}
	tp, err := util.NewTimeProvider(cfg.Timezone, nil)
	if err != nil {
		return nil, err
	}
	return tp.Today, nil
}

// Helper functions

func expandConfigPath(path string) string {
	if path == "" {
		return ""
	}
	return expandPath(path)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
