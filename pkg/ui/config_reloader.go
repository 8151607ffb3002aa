package ui

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/watcher"
)

// ReloaderState is the lifecycle state of a ConfigReloader.
type ReloaderState int

const (
	ReloaderIdle ReloaderState = iota
	ReloaderLoading
	ReloaderStopped
)

// ReloadError records a failed reload.
type ReloadError struct {
	Cause   error
	Time    time.Time
	Retries int
}

func (e ReloadError) Error() string {
	return fmt.Sprintf("reload failed: %v (retries: %d)", e.Cause, e.Retries)
}

func (e ReloadError) Unwrap() error { return e.Cause }

// Sender delivers messages to the running program; *tea.Program satisfies
// it.
type Sender interface {
	Send(msg tea.Msg)
}

// ConfigReloader re-reads the configuration file when it changes and hands
// the result to the UI as a ConfigReloadedMsg. Changes arriving while a
// reload is running are coalesced into one more reload.
type ConfigReloader struct {
	path   string
	sender Sender
	log    logrus.FieldLogger

	mu         sync.Mutex
	state      ReloaderState
	dirty      bool
	started    bool
	lastHash   string
	lastError  *ReloadError
	errorCount int

	watcher *watcher.FileWatcher
}

// ReloaderConfig configures a ConfigReloader.
type ReloaderConfig struct {
	Path     string
	Sender   Sender
	Logger   logrus.FieldLogger
	Debounce time.Duration
}

// NewConfigReloader creates a reloader for cfg.Path. An empty path yields a
// reloader that never fires.
func NewConfigReloader(cfg ReloaderConfig) (*ConfigReloader, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &ConfigReloader{path: cfg.Path, sender: cfg.Sender, log: log}
	if cfg.Path == "" {
		return r, nil
	}
	if data, err := os.ReadFile(cfg.Path); err == nil {
		r.lastHash = contentHash(data)
	}
	fw, err := watcher.New(cfg.Path, func(string) { r.process() },
		watcher.WithDebouncer(watcher.NewDebouncer(cfg.Debounce)),
		watcher.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	r.watcher = fw
	return r, nil
}

// Start begins watching. It is idempotent.
func (r *ConfigReloader) Start() error {
	r.mu.Lock()
	if r.started || r.state == ReloaderStopped {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.mu.Unlock()

	if r.watcher == nil {
		return nil
	}
	return r.watcher.Start()
}

// Stop ends watching. It is idempotent.
func (r *ConfigReloader) Stop() {
	r.mu.Lock()
	if r.state == ReloaderStopped {
		r.mu.Unlock()
		return
	}
	r.state = ReloaderStopped
	r.mu.Unlock()

	if r.watcher != nil {
		r.watcher.Stop()
	}
}

// TriggerReload reloads in the background as if the file had changed.
func (r *ConfigReloader) TriggerReload() {
	go r.process()
}

// State returns the current state.
func (r *ConfigReloader) State() ReloaderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastError returns the most recent failure, nil after a success.
func (r *ConfigReloader) LastError() *ReloadError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

func (r *ConfigReloader) process() {
	r.mu.Lock()
	if r.state != ReloaderIdle {
		if r.state == ReloaderLoading {
			r.dirty = true
		}
		r.mu.Unlock()
		return
	}
	r.state = ReloaderLoading
	r.dirty = false
	r.mu.Unlock()

	msg, changed := r.load()

	r.mu.Lock()
	if r.state == ReloaderStopped {
		r.mu.Unlock()
		return
	}
	again := r.dirty
	r.state = ReloaderIdle
	r.mu.Unlock()

	if changed && r.sender != nil {
		r.sender.Send(msg)
	}
	if again {
		go r.process()
	}
}

// load reads the file. changed is false when the content is identical to
// the last successful read.
func (r *ConfigReloader) load() (msg ConfigReloadedMsg, changed bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return r.fail(err), true
	}
	hash := contentHash(data)
	r.mu.Lock()
	same := hash == r.lastHash
	r.mu.Unlock()
	if same {
		return ConfigReloadedMsg{}, false
	}

	var cfg config.Config
	if err := safeLoad(func() error {
		var err error
		cfg, err = config.Load(r.path)
		return err
	}); err != nil {
		return r.fail(err), true
	}

	r.mu.Lock()
	r.lastHash = hash
	r.lastError = nil
	r.errorCount = 0
	r.mu.Unlock()
	r.log.WithFields(logrus.Fields{"path": r.path, "hash": hash[:12]}).Info("configuration reloaded")
	return ConfigReloadedMsg{Config: cfg}, true
}

func (r *ConfigReloader) fail(err error) ConfigReloadedMsg {
	r.mu.Lock()
	r.errorCount++
	r.lastError = &ReloadError{Cause: err, Time: time.Now(), Retries: r.errorCount}
	r.mu.Unlock()
	r.log.WithError(err).WithField("path", r.path).Warn("configuration reload failed")
	return ConfigReloadedMsg{Err: err}
}

// safeLoad runs fn and turns a panic into an error.
func safeLoad(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return fn()
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
