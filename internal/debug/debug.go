// Package debug starts the eino visual debugger and a small health endpoint
// next to it.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/logger"
)

type Debugger struct {
	enabled bool
	port    int
	server  *http.Server
	// init starts the devops server on a port; swapped in tests.
	init func(ctx context.Context, port int) error
}

func New(cfg *config.Config) *Debugger {
	return &Debugger{
		enabled: cfg.EinoDebugEnabled,
		port:    cfg.EinoDebugPort,
		init:    initDevops,
	}
}

func initDevops(ctx context.Context, port int) error {
	return devops.Init(ctx, devops.WithDevServerPort(strconv.Itoa(port)))
}

func (d *Debugger) Enabled() bool {
	return d.enabled
}

// Start registers the debug plugin before any graph is compiled and serves
// /health on the port after the debugger's. It is a no-op when disabled.
func (d *Debugger) Start(ctx context.Context) error {
	if !d.enabled {
		return nil
	}

	logger.Log.Infof("initializing eino debug plugin on port %d", d.port)
	if err := d.init(ctx, d.port); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	logger.Log.Infof("eino debug server at %s", d.URL())

	d.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", d.port+1),
		Handler:      healthHandler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Warnf("debug health server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		d.Stop()
	}()
	return nil
}

func (d *Debugger) Stop() {
	if d.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = d.server.Shutdown(ctx)
}

// URL is the debugger address, or "" when disabled.
func (d *Debugger) URL() string {
	if !d.enabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.port)
}

func healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("MoneyScope debug server is running"))
	})
	return mux
}
