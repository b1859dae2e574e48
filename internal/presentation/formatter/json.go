package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Format(rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.w.Write(data)
	return err
}
