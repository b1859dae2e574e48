package timeline

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// FileEvent reports a change to a watched input file.
type FileEvent struct {
	Path      string
	Operation string
}

// RecordWatcher watches input files for changes. It watches their parent
// directories so editors that replace files by rename are still seen.
type RecordWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	events  chan FileEvent
	done    chan struct{}
}

// NewRecordWatcher starts watching the given files.
func NewRecordWatcher(files []string) (*RecordWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	rw := &RecordWatcher{
		watcher: watcher,
		files:   make(map[string]struct{}, len(files)),
		events:  make(chan FileEvent, 100),
		done:    make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		rw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go rw.processEvents()

	return rw, nil
}

func (rw *RecordWatcher) processEvents() {
	defer close(rw.done)
	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, watched := rw.files[path]; !watched {
				continue
			}
			select {
			case rw.events <- FileEvent{Path: path, Operation: event.Op.String()}:
			default:
				util.LogDebugf("record watcher: dropping event for %s, queue full", path)
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarnf("File monitoring error: %v", err)
		}
	}
}

// Events returns the channel of file change events.
func (rw *RecordWatcher) Events() <-chan FileEvent {
	return rw.events
}

// Close stops watching.
func (rw *RecordWatcher) Close() error {
	err := rw.watcher.Close()
	<-rw.done
	return err
}
