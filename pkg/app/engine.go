package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/service"
)

// Engine is one generation of the analysis service, built from a single
// configuration snapshot.
type Engine struct {
	Config  config.Config
	Service *service.Service
	BuiltAt time.Time
	Version uint64
}

var engineSeq atomic.Uint64

func BuildEngine(ctx context.Context, cfg config.Config) (*Engine, error) {
	svc, err := service.New(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, svc), nil
}

// NewEngine wraps an already built service as the next engine generation.
func NewEngine(cfg config.Config, svc *service.Service) *Engine {
	return &Engine{
		Config:  cfg,
		Service: svc,
		BuiltAt: time.Now(),
		Version: engineSeq.Add(1),
	}
}

func (e *Engine) Close() error {
	if e == nil || e.Service == nil {
		return nil
	}
	return e.Service.Close()
}
