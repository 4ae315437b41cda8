package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dyike/MoneyScope/internal/logger"
)

// Manager owns a config file and the Config decoded from it. Updates go
// through Validate before they are written; edits made to the file by hand
// are picked up by Watch.
type Manager struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	cfg      Config
	onChange func(Config)
	watching bool
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
	debounce      time.Duration
}

type ManagerOption func(*managerOptions)

// NewManager opens the config file, creating it from the initial config (or
// the defaults) when it does not exist yet.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	o := managerOptions{debounce: 300 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.configPath
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg, err := ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		cfg = *DefaultConfigWithRoot("")
		if o.initialConfig != nil {
			cfg = *o.initialConfig
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := WriteFile(path, cfg); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &Manager{path: path, debounce: o.debounce, cfg: cfg}, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) UpdateFromJSON(jsonStr string) error {
	cfg := m.Get()
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Update validates and persists cfg, then notifies the watcher callback. An
// unchanged config is a no-op. Switching llm_provider resets the model,
// endpoint and key that still belong to the previous provider.
func (m *Manager) Update(cfg Config) error {
	current := m.Get()
	cfg.followProvider(current)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if current == cfg {
		return nil
	}
	if err := WriteFile(m.path, cfg); err != nil {
		return err
	}
	m.apply(cfg)
	return nil
}

// Watch calls onChange with every valid configuration that reaches the file
// until ctx is done. Invalid edits are logged and ignored. Only one watch
// runs per Manager; a second call replaces the callback.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// editors replace the file, so the directory is watched
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	go m.watch(ctx, watcher)
	return nil
}

func (m *Manager) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if m.touchesConfig(evt) {
				settle = time.After(m.debounce)
			}
		case <-settle:
			settle = nil
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warnf("config watcher error: %v", err)
		}
	}
}

func (m *Manager) touchesConfig(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != filepath.Clean(m.path) {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename) || evt.Has(fsnotify.Remove)
}

// reload reads the file after it settled. A removed file is written back from
// the current config.
func (m *Manager) reload() {
	cfg, err := ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := WriteFile(m.path, m.Get()); err != nil {
			logger.Log.Errorf("config recreate failed: %v", err)
		}
		return
	}
	if err != nil {
		logger.Log.Errorf("config reload ignored: %v", err)
		return
	}
	if cfg == m.Get() {
		return
	}
	logger.Log.Infof("config reloaded from %s", m.path)
	m.apply(cfg)
}

func (m *Manager) apply(cfg Config) {
	m.mu.Lock()
	m.cfg = cfg
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(cfg)
	}
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir != "" {
			o.configPath = filepath.Join(dir, configFileName)
		}
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithInitialConfig seeds a config file that does not exist yet.
func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}
