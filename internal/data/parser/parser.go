package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Format is an input file encoding.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatJSONL
	FormatYAML
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJSONL:
		return "jsonl"
	case FormatYAML:
		return "yaml"
	case FormatCSV:
		return "csv"
	default:
		return "auto"
	}
}

// ParseFormat maps a flag value to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatAuto, fmt.Errorf("unknown input format %q", name)
	}
}

// DetectFormat picks a format from the file extension, falling back to the
// first non-blank byte of the content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	switch trimmed[0] {
	case '[':
		return FormatJSON
	case '{':
		if firstLine, _, found := bytes.Cut(trimmed, []byte("\n")); found && bytes.HasSuffix(bytes.TrimSpace(firstLine), []byte("}")) {
			return FormatJSONL
		}
		return FormatJSON
	case '-':
		return FormatYAML
	}
	if bytes.Contains(bytes.SplitN(trimmed, []byte("\n"), 2)[0], []byte(",")) {
		return FormatCSV
	}
	return FormatYAML
}

// RecordStore persists parsed records across runs.
type RecordStore interface {
	Lookup(path string) ([]model.RawRecord, bool)
	Set(path string, records []model.RawRecord) error
}

// Parser loads raw timeline records from files.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cacheEntry
	store       RecordStore
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	records []model.RawRecord
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Records []model.RawRecord
	Error   error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cacheEntry),
	}
}

// SetStore attaches a persistent store consulted before decoding a file.
func (p *Parser) SetStore(store RecordStore) {
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()
}

// ParseFile parses the file at path. Results are cached until the file's
// size or modification time changes.
func (p *Parser) ParseFile(path string, format Format) ([]model.RawRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		p.mu.Unlock()
		return cached.records, nil
	}
	store := p.store
	p.mu.Unlock()

	if store != nil {
		if records, ok := store.Lookup(path); ok {
			util.LogDebugf("Loaded %d records for %s from store", len(records), path)
			p.remember(path, info, records)
			return records, nil
		}
	}

	util.LogDebugf("Start parsing file: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = DetectFormat(path, data)
	}

	records, err := Parse(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	util.LogDebugf("Parsed %d records from %s as %s", len(records), path, format)

	p.remember(path, info, records)
	if store != nil {
		if err := store.Set(path, records); err != nil {
			util.LogWarnf("Failed to store records for %s: %v", path, err)
		}
	}

	return records, nil
}

func (p *Parser) remember(path string, info os.FileInfo, records []model.RawRecord) {
	p.mu.Lock()
	p.cache[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), records: records}
	p.mu.Unlock()
}

// Invalidate drops any cached result for path.
func (p *Parser) Invalidate(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string, format Format) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			records, err := p.ParseFile(f, format)
			if err != nil {
				util.LogDebugf("File parsing failed: %s - %v", f, err)
			}
			results <- ParseResult{File: f, Records: records, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Concurrent parsing finished, total duration: %v", time.Since(start))
	}()

	return results
}

// Parse decodes records from r in the given format. FormatAuto sniffs the
// content.
func Parse(r io.Reader, format Format) ([]model.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = DetectFormat("", data)
	}

	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatJSONL:
		return parseJSONL(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatCSV:
		return parseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// envelope is the object form of a record document.
type envelope struct {
	Items []model.RawRecord `json:"items" yaml:"items"`
}

func parseJSON(data []byte) ([]model.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := sonic.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		return env.Items, nil
	}
	var records []model.RawRecord
	if err := sonic.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// parseJSONL decodes one record per line, skipping blank and malformed
// lines.
func parseJSONL(data []byte) ([]model.RawRecord, error) {
	var records []model.RawRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec model.RawRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			util.LogDebugf("Skip invalid JSON line %d - %v", lineCount, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseYAML(data []byte) ([]model.RawRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.MappingNode {
		var env envelope
		if err := doc.Decode(&env); err != nil {
			return nil, err
		}
		return env.Items, nil
	}
	var records []model.RawRecord
	if err := doc.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// csvColumns maps accepted header spellings to record fields.
var csvColumns = map[string]func(*model.RawRecord, string){
	"id":            func(r *model.RawRecord, v string) { r.ID = model.FlexString(v) },
	"name":          func(r *model.RawRecord, v string) { r.Name = v },
	"title":         func(r *model.RawRecord, v string) { r.Name = v },
	"issuekey":      func(r *model.RawRecord, v string) { r.IssueKey = v },
	"key":           func(r *model.RawRecord, v string) { r.IssueKey = v },
	"status":        func(r *model.RawRecord, v string) { r.Status = v },
	"startdate":     func(r *model.RawRecord, v string) { r.StartDate = v },
	"start":         func(r *model.RawRecord, v string) { r.StartDate = v },
	"duedate":       func(r *model.RawRecord, v string) { r.DueDate = v },
	"due":           func(r *model.RawRecord, v string) { r.DueDate = v },
	"end":           func(r *model.RawRecord, v string) { r.DueDate = v },
	"resolveddate":  func(r *model.RawRecord, v string) { r.ResolvedDate = v },
	"resolved":      func(r *model.RawRecord, v string) { r.ResolvedDate = v },
	"createddate":   func(r *model.RawRecord, v string) { r.CreatedDate = v },
	"created":       func(r *model.RawRecord, v string) { r.CreatedDate = v },
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(h)
}

// parseCSV decodes a CSV with a header row. Unknown columns are ignored.
func parseCSV(data []byte) ([]model.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	setters := make([]func(*model.RawRecord, string), len(header))
	known := 0
	for i, h := range header {
		if set, ok := csvColumns[normalizeHeader(h)]; ok {
			setters[i] = set
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("csv header has no known columns: %v", header)
	}

	var records []model.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var rec model.RawRecord
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, strings.TrimSpace(value))
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
