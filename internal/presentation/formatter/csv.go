package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Format(rows []Row) error {
	w := csv.NewWriter(f.w)

	headers := []string{
		"row", "id", "name", "issueKey", "kind", "status",
		"start", "end", "resolved", "duration", "lateTime", "progress",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, r := range rows {
		late := ""
		if r.LateTime != nil {
			late = strconv.Itoa(*r.LateTime)
		}
		record := []string{
			strconv.Itoa(r.Row),
			r.ID,
			r.Name,
			r.IssueKey,
			r.Kind,
			r.Status,
			r.Start,
			r.End,
			r.Resolved,
			strconv.Itoa(r.Duration),
			late,
			strconv.FormatFloat(r.Progress, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
