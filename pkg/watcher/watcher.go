package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FileWatcher calls a function whenever one file is written, created or
// replaced. The parent directory is watched rather than the file, because
// editors usually save by renaming a temporary file over the original.
type FileWatcher struct {
	path     string
	onChange func(path string)
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebouncer replaces the default debouncer.
func WithDebouncer(d *Debouncer) Option {
	return func(w *FileWatcher) { w.debounce = d }
}

// WithLogger sets where watch errors are logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *FileWatcher) { w.log = log }
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, onChange func(path string), opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &FileWatcher{
		path:     abs,
		onChange: onChange,
		watcher:  fw,
		debounce: NewDebouncer(0),
		log:      logrus.StandardLogger(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string { return w.path }

// Start begins watching.
func (w *FileWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	go w.loop()
	return nil
}

// Stop ends watching and drops any pending notification. It is safe to
// call more than once.
func (w *FileWatcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		w.debounce.Cancel()
		w.watcher.Close()
	})
}

// Done is closed once the event loop has exited.
func (w *FileWatcher) Done() <-chan struct{} { return w.done }

func (w *FileWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce.Trigger(func() {
				if w.ctx.Err() == nil {
					w.onChange(w.path)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).WithField("path", w.path).Warn("watch error")
		}
	}
}
