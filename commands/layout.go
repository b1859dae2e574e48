package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-pm-timeline/internal/core/layout"
	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/core/normalize"
	"github.com/penwyp/go-pm-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

var (
	layoutOutput    string
	layoutSort      string
	layoutDesc      bool
	layoutNameWidth int
)

var layoutCmd = &cobra.Command{
	Use:   "layout <file>...",
	Short: "Print the row assignment of every timeline item",
	Long: `Normalizes the records, packs them into rows and prints one line per item.

Ranges that overlap in time never share a row. Milestones occupy their marked day.
Records without an id or usable dates are skipped and counted in the summary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringVarP(&layoutOutput, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	layoutCmd.Flags().StringVar(&layoutSort, "sort", "row",
		"Sort field (row, start, name, late)")
	layoutCmd.Flags().BoolVar(&layoutDesc, "desc", false,
		"Sort in descending order")
	layoutCmd.Flags().IntVar(&layoutNameWidth, "name-width", 0,
		"Truncate names in the table to this display width")
}

func runLayout(cmd *cobra.Command, args []string) error {
	loader, err := newDataLoader(args)
	if err != nil {
		return err
	}
	raws, err := loader.Load()
	if err != nil {
		return err
	}
	today, err := currentDay()
	if err != nil {
		return err
	}

	res := normalize.All(raws, today())
	for _, d := range res.Dropped {
		util.LogDebugf("Skipped record %d (%s): %s", d.Index, d.ID, d.Reason)
	}
	entries, err := layoutEntries(cmd.Context(), res.Entries)
	if err != nil {
		return err
	}

	sorter := interaction.NewEntrySorter()
	sorter.SetField(interaction.ParseSortField(layoutSort))
	if layoutDesc {
		sorter.SetOrder(interaction.SortDescending)
	}
	sorter.Sort(entries)

	f, err := formatter.New(layoutOutput, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if tf, ok := f.(*formatter.TableFormatter); ok && layoutNameWidth > 0 {
		tf.SetNameWidth(layoutNameWidth)
	}
	return f.Format(formatter.FromLayout(entries))
}

// layoutEntries packs entries into rows, on the worker pool for large sets.
func layoutEntries(ctx context.Context, entries []model.Entry) ([]model.LayoutEntry, error) {
	if len(entries) <= cfg.WorkerThreshold {
		return layout.Assign(entries), nil
	}
	pool := layout.NewPool(cfg.Workers, cfg.LayoutTimeout)
	defer pool.Close()
	return pool.Layout(ctx, entries)
}
