package timeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/data/parser"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// DataLoader reads raw records from one or more input files.
type DataLoader struct {
	files  []string
	format parser.Format
	parser *parser.Parser
}

// NewDataLoader creates a loader for files, all read with format.
func NewDataLoader(files []string, format parser.Format, concurrency int) (*DataLoader, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}
	abs := make([]string, len(files))
	for i, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		abs[i] = p
	}
	return &DataLoader{
		files:  abs,
		format: format,
		parser: parser.NewParser(concurrency),
	}, nil
}

// Files returns the absolute input paths.
func (dl *DataLoader) Files() []string {
	files := make([]string, len(dl.files))
	copy(files, dl.files)
	return files
}

// Load parses every file and concatenates the records in file order. Any
// unreadable or malformed file fails the whole load.
func (dl *DataLoader) Load() ([]model.RawRecord, error) {
	byFile := make(map[string][]model.RawRecord, len(dl.files))
	var errs []error
	for res := range dl.parser.ParseFiles(dl.files, dl.format) {
		if res.Error != nil {
			errs = append(errs, res.Error)
			continue
		}
		byFile[res.File] = res.Records
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load records: %w", errors.Join(errs...))
	}

	var records []model.RawRecord
	for _, f := range dl.files {
		records = append(records, byFile[f]...)
	}
	util.LogInfof("Loaded %d records from %d files", len(records), len(dl.files))
	return records, nil
}

// UseStore makes the loader reuse records persisted by store across runs.
func (dl *DataLoader) UseStore(store parser.RecordStore) {
	dl.parser.SetStore(store)
}

// Invalidate forgets the cached parse of path so the next Load rereads it.
func (dl *DataLoader) Invalidate(path string) {
	dl.parser.Invalidate(path)
}
