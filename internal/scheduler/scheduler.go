package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
)

// AnalyzeFunc runs one analysis for pair.
type AnalyzeFunc func(ctx context.Context, pair models.CurrencyPair) error

// Scheduler runs analyses for a fixed list of pairs on a cron schedule. Each
// tick runs the pairs one after another; a failing pair does not stop the rest.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	analyze AnalyzeFunc
	pairs   []models.CurrencyPair

	// ticks do not overlap
	mu sync.Mutex
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New validates spec and pairs. Specs take five fields, an optional leading
// seconds field, or a descriptor such as @daily.
func New(ctx context.Context, spec string, pairs []string, analyze AnalyzeFunc) (*Scheduler, error) {
	if analyze == nil {
		return nil, errors.New("analyze func is required")
	}
	if len(pairs) == 0 {
		return nil, errors.New("at least one currency pair is required")
	}
	parsed := make([]models.CurrencyPair, 0, len(pairs))
	for _, p := range pairs {
		cp, err := models.ParsePair(p)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, cp)
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		ctx:     ctx,
		analyze: analyze,
		pairs:   parsed,
	}
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return nil, fmt.Errorf("register schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Infof("scheduler started for %d pair(s)", len(s.pairs))
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

// RunNow executes one tick synchronously.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pair := range s.pairs {
		if s.ctx.Err() != nil {
			return
		}
		log := logger.Log.WithField("pair", pair.String())
		if err := s.analyze(s.ctx, pair); err != nil {
			log.Errorf("scheduled analysis failed: %v", err)
			continue
		}
		log.Info("scheduled analysis finished")
	}
}
