package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/logger"
)

// ReloadEvent describes one engine rebuild. Err is set when the rebuild
// failed and the previous engine stays in use.
type ReloadEvent struct {
	Version uint64
	BuiltAt time.Time
	Err     error
}

type EngineBuilder func(context.Context, config.Config) (*Engine, error)

type Option func(*Runtime)

func WithBuilder(build EngineBuilder) Option {
	return func(r *Runtime) {
		if build != nil {
			r.build = build
		}
	}
}

// WithReloadHook is called after every rebuild attempt, the initial one
// included.
func WithReloadHook(fn func(ReloadEvent)) Option {
	return func(r *Runtime) {
		r.hook = fn
	}
}

// Runtime owns the current Engine and rebuilds it whenever the config file
// changes. A failed rebuild keeps the previous engine.
type Runtime struct {
	mgr     *config.Manager
	current atomic.Pointer[Engine]
	build   EngineBuilder
	hook    func(ReloadEvent)
	stop    context.CancelFunc
}

func NewRuntime(ctx context.Context, mgr *config.Manager, opts ...Option) (*Runtime, error) {
	if mgr == nil {
		return nil, errors.New("config manager is required")
	}

	rt := &Runtime{mgr: mgr, build: BuildEngine}
	for _, opt := range opts {
		opt(rt)
	}

	if err := rt.rebuild(ctx, mgr.Get()); err != nil {
		return nil, err
	}

	watchCtx, stop := context.WithCancel(ctx)
	rt.stop = stop
	err := mgr.Watch(watchCtx, func(cfg config.Config) {
		if err := rt.rebuild(watchCtx, cfg); err != nil {
			logger.Log.Errorf("engine reload failed: %v", err)
		}
	})
	if err != nil {
		stop()
		_ = rt.current.Swap(nil).Close()
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.current.Load()
}

func (r *Runtime) Config() config.Config {
	return r.mgr.Get()
}

func (r *Runtime) ConfigPath() string {
	return r.mgr.Path()
}

// Close stops watching and releases the current engine.
func (r *Runtime) Close() error {
	if r.stop != nil {
		r.stop()
	}
	return r.current.Swap(nil).Close()
}

// UpdateConfig persists cfg. The engine is rebuilt through the manager's
// change callback; a failed rebuild reaches the reload hook.
func (r *Runtime) UpdateConfig(cfg config.Config) error {
	return r.mgr.Update(cfg)
}

func (r *Runtime) UpdateConfigJSON(jsonStr string) error {
	return r.mgr.UpdateFromJSON(jsonStr)
}

func (r *Runtime) rebuild(ctx context.Context, cfg config.Config) error {
	engine, err := r.build(ctx, cfg)
	if err != nil {
		r.report(ReloadEvent{Err: err})
		return err
	}
	if old := r.current.Swap(engine); old != nil {
		// the old service waits for its in-flight runs before closing
		go func() {
			if err := old.Close(); err != nil {
				logger.Log.Warnf("close engine v%d: %v", old.Version, err)
			}
		}()
	}
	logger.Log.Debugf("engine v%d ready", engine.Version)
	r.report(ReloadEvent{Version: engine.Version, BuiltAt: engine.BuiltAt})
	return nil
}

func (r *Runtime) report(evt ReloadEvent) {
	if r.hook != nil {
		r.hook(evt)
	}
}
