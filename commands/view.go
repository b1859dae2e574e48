package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-pm-timeline/internal/application/timeline"
	"github.com/penwyp/go-pm-timeline/internal/presentation/display"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
)

var viewWatch bool

var viewCmd = &cobra.Command{
	Use:   "view <file>...",
	Short: "Browse the timeline interactively in the terminal",
	Long: `Draws the timeline on the terminal and follows keyboard input.

Keys:
  + / -      zoom in / out around the view centre
  0          reset zoom
  h / l      scroll left / right (arrow keys work too)
  t          scroll to today
  n / p      hover next / previous item
  enter      open the hovered item
  ?          help
  q / esc    quit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false,
		"Reload when the input files change")
}

func runView(cmd *cobra.Command, args []string) error {
	if !display.IsTerminal() {
		return errors.New("view needs an interactive terminal; use render or layout instead")
	}

	loader, err := newDataLoader(args)
	if err != nil {
		return err
	}
	today, err := currentDay()
	if err != nil {
		return err
	}

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return err
	}
	deps := timeline.OrchestratorDeps{
		Source:   loader,
		Display:  display.NewTerminalDisplay(os.Stdout),
		Keyboard: keyboard,
		Sizer:    display.NewSizer(timeline.DefaultCellWidth, timeline.DefaultCellHeight),
	}
	if viewWatch {
		watcher, err := timeline.NewRecordWatcher(loader.Files())
		if err != nil {
			keyboard.Close()
			return err
		}
		deps.Watcher = watcher
	}

	orch, err := timeline.NewOrchestrator(cfg, deps, timeline.WithToday(today))
	if err != nil {
		keyboard.Close()
		if deps.Watcher != nil {
			deps.Watcher.Close()
		}
		return err
	}
	defer orch.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return orch.Run(ctx)
}
