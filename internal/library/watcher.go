package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/workout"
)

const DefaultDebounce = 500 * time.Millisecond

// ImportResult reports one re-import triggered by a file change
type ImportResult struct {
	Path     string
	Workouts []*workout.Workout
	Err      error
}

// Watcher re-imports workout files in a directory when they change.
// Editors often write a file in several steps, so changes are collected
// and imported once the directory has been quiet for the debounce delay.
type Watcher struct {
	dir      string
	importer *Importer
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *log.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}

	importEvent *events.CallbackEvent[ImportResult]

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWatcher(dir string, importer *Importer, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if importer == nil {
		panic("Watcher: importer cannot be nil")
	}
	if logger == nil {
		panic("Watcher: logger cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:         dir,
		importer:    importer,
		debounce:    debounce,
		fsw:         fsw,
		logger:      logger,
		pending:     make(map[string]struct{}),
		importEvent: events.NewCallbackEvent[ImportResult](false),
	}, nil
}

// ListenToImports registers a callback run on the watcher goroutine after each import
func (w *Watcher) ListenToImports(callback func(ImportResult)) func() {
	return w.importEvent.Listen(callback)
}

// Start watches the directory until ctx is done or Close is called
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go_func_utils.SafeGo(w.logger, func() { w.processEvents(ctx) })
	w.logger.Infof("Watcher: watching %s", w.dir)
	return nil
}

// Close stops watching and waits for the event goroutine to exit
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	quiet := time.NewTimer(w.debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !IsWorkoutFile(event.Name) || !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = struct{}{}
			w.pendingMu.Unlock()
			quiet.Reset(w.debounce)
			w.logger.Debugf("Watcher: %s %s", event.Op, filepath.Base(event.Name))

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher: %v", err)

		case <-quiet.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()
	sort.Strings(paths)

	for _, path := range paths {
		// removed again before the quiet period ended
		if _, err := os.Stat(path); err != nil {
			continue
		}
		saved, err := w.importer.ImportFile(ctx, path)
		if err != nil {
			w.logger.Warnf("Watcher: importing %s: %v", filepath.Base(path), err)
		}
		w.importEvent.Notify(ImportResult{Path: path, Workouts: saved, Err: err})
	}
}
