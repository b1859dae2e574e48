package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// DefaultNameWidth caps the Name column.
const DefaultNameWidth = 40

type TableFormatter struct {
	w         io.Writer
	headers   []string
	nameWidth int
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		w: w,
		headers: []string{
			"Row", "ID", "Name", "Kind", "Status", "Start", "End", "Days", "Late",
		},
		nameWidth: DefaultNameWidth,
	}
}

// SetNameWidth limits the Name column, e.g. to fit the terminal.
func (f *TableFormatter) SetNameWidth(width int) {
	if width > 4 {
		f.nameWidth = width
	}
}

func (f *TableFormatter) Format(rows []Row) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, f.values(r))
	}

	widths := f.calculateColumnWidths(cells)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	lastRow := -1
	for i, r := range rows {
		if i > 0 && r.Row != lastRow {
			f.printBorder(widths, "middle")
		}
		f.printRow(cells[i], widths)
		lastRow = r.Row
	}
	if len(rows) == 0 {
		empty := make([]string, len(widths))
		empty[2] = "No timeline items"
		f.printRow(empty, widths)
	}

	f.printBorder(widths, "bottom")
	return nil
}

func (f *TableFormatter) values(r Row) []string {
	status := r.Status
	if status == "" {
		status = "-"
	}
	return []string{
		strconv.Itoa(r.Row),
		r.ID,
		util.TruncateToWidth(r.Name, f.nameWidth),
		r.Kind,
		status,
		r.Start,
		r.End,
		strconv.Itoa(r.Duration),
		util.FormatLateTime(r.LateTime),
	}
}

// calculateColumnWidths determines optimal width for each column based on content
func (f *TableFormatter) calculateColumnWidths(cells [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range cells {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if len(cells) == 0 && widths[2] < len("No timeline items") {
		widths[2] = len("No timeline items")
	}
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	fmt.Fprintln(f.w, sb.String())
}

// printRow prints a row; Row and Days are right-aligned.
func (f *TableFormatter) printRow(values []string, widths []int) {
	var sb strings.Builder
	sb.WriteString("│")
	for i, value := range values {
		sb.WriteByte(' ')
		sb.WriteString(util.PadString(value, widths[i], i != 0 && i != 7))
		sb.WriteString(" │")
	}
	fmt.Fprintln(f.w, sb.String())
}
