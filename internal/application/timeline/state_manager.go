package timeline

import (
	"sync"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/core/normalize"
)

// Snapshot is a consistent copy of the derived timeline data.
type Snapshot struct {
	Entries        []model.LayoutEntry
	Dropped        []normalize.Dropped
	RowCount       int
	Loading        bool
	LoadingMessage string
	UpdatedAt      time.Time
}

// StateManager manages timeline data in a thread-safe manner. The view loop
// writes it; status lines and commands read copies.
type StateManager struct {
	mu sync.RWMutex

	entries  []model.LayoutEntry
	previous []model.LayoutEntry // kept while a reload is in flight
	dropped  []normalize.Dropped
	rowCount int

	isLoading      bool
	loadingMessage string

	lastDataUpdate time.Time
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{
		entries:  make([]model.LayoutEntry, 0),
		previous: make([]model.LayoutEntry, 0),
	}
}

// SetLayout replaces the current layout and remembers the old one.
func (sm *StateManager) SetLayout(entries []model.LayoutEntry, dropped []normalize.Dropped, rowCount int, at time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.entries) > 0 {
		sm.previous = sm.entries
	}
	sm.entries = entries
	sm.dropped = dropped
	sm.rowCount = rowCount
	sm.lastDataUpdate = at
}

// Entries returns a copy of the current layout.
func (sm *StateManager) Entries() []model.LayoutEntry {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entries := make([]model.LayoutEntry, len(sm.entries))
	copy(entries, sm.entries)
	return entries
}

// PreviousEntries returns the layout that was replaced last.
func (sm *StateManager) PreviousEntries() []model.LayoutEntry {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entries := make([]model.LayoutEntry, len(sm.previous))
	copy(entries, sm.previous)
	return entries
}

// SetLoadingState updates loading state and message
func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = isLoading
	sm.loadingMessage = message
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isLoading, sm.loadingMessage
}

// Snapshot returns a copy of everything at once.
func (sm *StateManager) Snapshot() Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s := Snapshot{
		Entries:        make([]model.LayoutEntry, len(sm.entries)),
		Dropped:        make([]normalize.Dropped, len(sm.dropped)),
		RowCount:       sm.rowCount,
		Loading:        sm.isLoading,
		LoadingMessage: sm.loadingMessage,
		UpdatedAt:      sm.lastDataUpdate,
	}
	copy(s.Entries, sm.entries)
	copy(s.Dropped, sm.dropped)
	return s
}
