package util

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// ConsoleOutput writes logs to a writer, normally stderr
type ConsoleOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewConsoleOutput creates a new console output
func NewConsoleOutput(writer io.Writer, format LogFormat) Output {
	return &ConsoleOutput{
		writer: writer,
		format: format,
	}
}

// Write writes a log entry to console
func (c *ConsoleOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, c.format)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintln(c.writer, line)
	return err
}

// Close is a no-op for console output
func (c *ConsoleOutput) Close() error {
	return nil
}

// FileOutput appends logs to a file
type FileOutput struct {
	file   *os.File
	format LogFormat
	mu     sync.Mutex
}

// NewFileOutput creates a new file output
func NewFileOutput(path string, format LogFormat) (Output, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &FileOutput{
		file:   file,
		format: format,
	}, nil
}

// Write writes a log entry to file
func (f *FileOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, f.format)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, err = fmt.Fprintln(f.file, line)
	return err
}

// Close closes the file
func (f *FileOutput) Close() error {
	return f.file.Close()
}

// formatEntry renders an entry as one line. Text fields are sorted by key so
// lines are stable across runs.
func formatEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var sb strings.Builder
	sb.WriteString(entry.Timestamp.Format("2006/01/02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(entry.Level)
	sb.WriteString("] ")
	if entry.Component != "" {
		sb.WriteString(entry.Component)
		sb.WriteString(": ")
	}
	sb.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, entry.Fields[k])
		}
	}
	return sb.String(), nil
}
