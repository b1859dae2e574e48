package fixtures

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
)

const dateLayout = "2006-01-02"

// RecordGenerator writes raw timeline records for tests.
type RecordGenerator struct {
	baseDir string
	rng     *rand.Rand
}

// NewRecordGenerator creates a generator writing below baseDir. The seed
// makes Random reproducible.
func NewRecordGenerator(baseDir string, seed int64) *RecordGenerator {
	return &RecordGenerator{
		baseDir: baseDir,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// GetBaseDir returns the output directory.
func (g *RecordGenerator) GetBaseDir() string {
	return g.baseDir
}

// SampleProject returns a small project: overlapping ranges, a resolved late
// task, an early one, a milestone, a reclassified zero-length range and two
// invalid records.
func SampleProject() []model.RawRecord {
	return []model.RawRecord{
		{ID: "1", Name: "Requirements", IssueKey: "PM-1", Status: "Done", StartDate: "2024-01-02", DueDate: "2024-01-12", ResolvedDate: "2024-01-10"},
		{ID: "2", Name: "Design", IssueKey: "PM-2", Status: "Done", StartDate: "2024-01-08", DueDate: "2024-01-26", ResolvedDate: "2024-01-31"},
		{ID: "3", Name: "Backend API", IssueKey: "PM-3", Status: "In Progress", StartDate: "2024-01-29", DueDate: "2024-03-01"},
		{ID: "4", Name: "Frontend", IssueKey: "PM-4", Status: "In Review", StartDate: "2024-02-05", DueDate: "2024-03-08"},
		{ID: "5", Name: "Beta release", IssueKey: "PM-5", Status: "Open", CreatedDate: "2024-03-15"},
		{ID: "6", Name: "Load testing", IssueKey: "PM-6", Status: "Blocked", StartDate: "2024-03-04", DueDate: "2024-03-04", CreatedDate: "2024-03-04"},
		{ID: "7", Name: "Launch", IssueKey: "PM-7", Status: "To Do", StartDate: "2024-03-18", DueDate: "2024-03-29"},
		{ID: "", Name: "No id"},
		{ID: "9", Name: "No dates", Status: "Open"},
	}
}

// Random returns n valid range records starting within days of start.
func (g *RecordGenerator) Random(n int, start string, days int) []model.RawRecord {
	base, err := parseDay(start)
	if err != nil {
		panic(err)
	}
	statuses := []string{"To Do", "In Progress", "In Review", "Done", "Blocked"}
	records := make([]model.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		s := base.AddDate(0, 0, g.rng.Intn(max(1, days)))
		e := s.AddDate(0, 0, 1+g.rng.Intn(30))
		records = append(records, model.RawRecord{
			ID:        model.FlexString(fmt.Sprintf("R-%d", i+1)),
			Name:      fmt.Sprintf("Task %d", i+1),
			Status:    statuses[g.rng.Intn(len(statuses))],
			StartDate: s.Format(dateLayout),
			DueDate:   e.Format(dateLayout),
		})
	}
	return records
}

// WriteJSON writes records as a JSON array.
func (g *RecordGenerator) WriteJSON(filename string, records []model.RawRecord) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return g.write(filename, data)
}

// WriteJSONL writes one record per line.
func (g *RecordGenerator) WriteJSONL(filename string, records []model.RawRecord) (string, error) {
	var data []byte
	for _, r := range records {
		line, err := sonic.Marshal(r)
		if err != nil {
			return "", err
		}
		data = append(append(data, line...), '\n')
	}
	return g.write(filename, data)
}

// WriteYAML writes records as a YAML list.
func (g *RecordGenerator) WriteYAML(filename string, records []model.RawRecord) (string, error) {
	data, err := yaml.Marshal(records)
	if err != nil {
		return "", err
	}
	return g.write(filename, data)
}

// WriteCSV writes records with a header row.
func (g *RecordGenerator) WriteCSV(filename string, records []model.RawRecord) (string, error) {
	path, err := g.path(filename)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"id", "name", "issueKey", "status", "startDate", "dueDate", "resolvedDate", "createdDate"})
	for _, r := range records {
		_ = w.Write([]string{r.ID.String(), r.Name, r.IssueKey, r.Status, r.StartDate, r.DueDate, r.ResolvedDate, r.CreatedDate})
	}
	w.Flush()
	return path, w.Error()
}

// WriteRaw writes arbitrary content, e.g. malformed input.
func (g *RecordGenerator) WriteRaw(filename, content string) (string, error) {
	return g.write(filename, []byte(content))
}

// CleanupTestData removes the output directory.
func (g *RecordGenerator) CleanupTestData() error {
	return os.RemoveAll(g.baseDir)
}

func (g *RecordGenerator) write(filename string, data []byte) (string, error) {
	path, err := g.path(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (g *RecordGenerator) path(filename string) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}
