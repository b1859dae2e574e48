package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// DefaultExtensions are the record file types picked up from directories.
var DefaultExtensions = []string{".json", ".jsonl", ".yaml", ".yml", ".csv"}

// FileScanner finds record files below a directory.
type FileScanner struct {
	baseDir    string
	extensions []string
}

// NewFileScanner creates a scanner for baseDir matching DefaultExtensions.
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir:    baseDir,
		extensions: DefaultExtensions,
	}
}

// WithExtensions restricts the scan to the given extensions (with dot).
func (s *FileScanner) WithExtensions(exts ...string) *FileScanner {
	s.extensions = make([]string, len(exts))
	for i, ext := range exts {
		s.extensions[i] = strings.ToLower(ext)
	}
	return s
}

// Scan walks the directory and returns matching files in lexical order.
// Hidden files and directories are skipped; unreadable entries are logged
// and skipped.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.baseDir {
				return err
			}
			util.LogDebugf("Skip file (error): %s - %v", path, err)
			return nil
		}

		hidden := path != s.baseDir && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			dirCount++
			return nil
		}

		totalCount++
		if !hidden && slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})

	util.LogDebugf("File scan completed: duration %v, scanned %d directories, %d files, found %d record files",
		time.Since(start), dirCount, totalCount, len(files))

	slices.Sort(files)
	return files, err
}

// Expand replaces every directory in paths by the record files below it.
// Plain files are kept in place, whatever their extension.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files surface when they are parsed.
			out = append(out, p)
			continue
		}
		files, err := NewFileScanner(p).Scan()
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
