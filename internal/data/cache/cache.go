package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
	MissReasonNotFound
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonError:
		return "error"
	case MissReasonSize:
		return "size"
	case MissReasonModTime:
		return "modtime"
	case MissReasonFingerprint:
		return "fingerprint"
	case MissReasonNotFound:
		return "not found"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// fingerprintWindow is how long after its last change a file's content is
// still hashed on validation. Older files are trusted on size and mtime.
const fingerprintWindow = 48 * time.Hour

// fingerprintBytes bounds how much of a file is hashed.
const fingerprintBytes = 64 << 10

type CacheResult struct {
	Records    []model.RawRecord
	Found      bool
	MissReason CacheMissReason
}

// entry is the on-disk form of one parsed input file.
type entry struct {
	FilePath           string            `json:"filePath"`
	FileSize           int64             `json:"fileSize"`
	LastModified       int64             `json:"lastModified"`
	ContentFingerprint string            `json:"contentFingerprint,omitempty"`
	Records            []model.RawRecord `json:"records"`
}

// FileCache keeps parsed records of input files on disk, so repeated runs
// over large exports skip decoding. Entries are validated against the
// source file's size, mtime and, for recent files, a content hash.
type FileCache struct {
	baseDir     string
	mu          sync.RWMutex
	memoryCache map[string]*entry
}

func NewFileCache(baseDir string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &FileCache{
		baseDir:     baseDir,
		memoryCache: make(map[string]*entry),
	}, nil
}

// cacheKey names the cache file of a source path.
func cacheKey(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:12])
}

// Get returns the cached records of path when they are still valid.
func (c *FileCache) Get(path string) CacheResult {
	key := cacheKey(path)

	c.mu.RLock()
	mem, exists := c.memoryCache[key]
	c.mu.RUnlock()
	if exists {
		if reason := validate(mem); reason == MissReasonNone {
			return CacheResult{Records: mem.Records, Found: true}
		}
		c.mu.Lock()
		delete(c.memoryCache, key)
		c.mu.Unlock()
	}

	return c.getFromFile(key, path)
}

// Lookup is Get reduced to records and a hit flag.
func (c *FileCache) Lookup(path string) ([]model.RawRecord, bool) {
	res := c.Get(path)
	if !res.Found && res.MissReason != MissReasonNotFound {
		util.LogDebugf("Cache miss for %s: %s", path, res.MissReason)
	}
	return res.Records, res.Found
}

func (c *FileCache) getFromFile(key, path string) CacheResult {
	data, err := os.ReadFile(filepath.Join(c.baseDir, key+".json"))
	if err != nil {
		return CacheResult{MissReason: MissReasonNotFound}
	}

	var e entry
	if err := sonic.Unmarshal(data, &e); err != nil || e.FilePath != path {
		return CacheResult{MissReason: MissReasonError}
	}
	if reason := validate(&e); reason != MissReasonNone {
		return CacheResult{MissReason: reason}
	}

	c.mu.Lock()
	c.memoryCache[key] = &e
	c.mu.Unlock()

	return CacheResult{Records: e.Records, Found: true}
}

func validate(e *entry) CacheMissReason {
	info, err := os.Stat(e.FilePath)
	if err != nil {
		util.LogDebugf("Cache validation failed for %s: %v", e.FilePath, err)
		return MissReasonError
	}
	if info.Size() != e.FileSize {
		util.LogDebugf("Cache invalidated for %s: size changed (cached: %d, current: %d)",
			e.FilePath, e.FileSize, info.Size())
		return MissReasonSize
	}
	if info.ModTime().UnixNano() != e.LastModified {
		util.LogDebugf("Cache invalidated for %s: modtime changed", e.FilePath)
		return MissReasonModTime
	}

	if time.Since(info.ModTime()) > fingerprintWindow {
		return MissReasonNone
	}
	fingerprint, err := fileFingerprint(e.FilePath)
	if err != nil || e.ContentFingerprint == "" || fingerprint != e.ContentFingerprint {
		util.LogDebugf("Cache invalidated for %s: fingerprint mismatch", e.FilePath)
		return MissReasonFingerprint
	}
	return MissReasonNone
}

// fileFingerprint hashes the head of the file and its size.
func fileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.CopyN(h, f, fingerprintBytes)
	if err != nil && err != io.EOF {
		return "", err
	}
	fmt.Fprintf(h, ":%d", n)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Set stores the records parsed from path.
func (c *FileCache) Set(path string, records []model.RawRecord) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	e := &entry{
		FilePath:     path,
		FileSize:     info.Size(),
		LastModified: info.ModTime().UnixNano(),
		Records:      records,
	}
	if fingerprint, err := fileFingerprint(path); err == nil {
		e.ContentFingerprint = fingerprint
	}

	data, err := sonic.Marshal(e)
	if err != nil {
		return err
	}

	key := cacheKey(path)
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp := filepath.Join(c.baseDir, key+".json.tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(c.baseDir, key+".json")); err != nil {
		return err
	}
	c.memoryCache[key] = e
	return nil
}

// Clear removes every cache entry.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memoryCache = make(map[string]*entry)

	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, de := range entries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".json") {
			if err := os.Remove(filepath.Join(c.baseDir, de.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetCacheStats returns the number of entries in memory and on disk.
func (c *FileCache) GetCacheStats() (memoryCount, fileCount int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	memoryCount = len(c.memoryCache)
	entries, _ := os.ReadDir(c.baseDir)
	for _, de := range entries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".json") {
			fileCount++
		}
	}
	return memoryCount, fileCount
}
