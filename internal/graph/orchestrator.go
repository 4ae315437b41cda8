package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/dyike/MoneyScope/internal/dataflows"
	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
)

// Analyst produces the analysis delta from a state holding the collected data.
type Analyst interface {
	Analyze(ctx context.Context, state models.AnalysisState) (models.Delta, error)
}

// ReportWriter produces the final report delta from an analysed state.
type ReportWriter interface {
	Report(ctx context.Context, state models.AnalysisState) (models.Delta, error)
}

// Observer receives stage events in execution order. It is called on the
// goroutine running the stage and must not block for long.
type Observer func(models.StageEvent)

type Deps struct {
	Rates    dataflows.RateFetcher
	News     dataflows.NewsFetcher
	Trends   dataflows.TrendAnalyzer
	Analyst  Analyst
	Reporter ReportWriter

	// Optional.
	Now       func() time.Time
	Observer  Observer
	Callbacks []callbacks.Handler
}

// Pipeline runs the five analysis stages over one state value. A compiled
// Pipeline is safe for concurrent runs; runs share nothing.
type Pipeline struct {
	runnable  compose.Runnable[models.AnalysisState, models.AnalysisState]
	now       func() time.Time
	observer  Observer
	callbacks []callbacks.Handler
}

func New(ctx context.Context, deps Deps) (*Pipeline, error) {
	var missing []error
	if deps.Rates == nil {
		missing = append(missing, errors.New("rate fetcher"))
	}
	if deps.News == nil {
		missing = append(missing, errors.New("news fetcher"))
	}
	if deps.Trends == nil {
		missing = append(missing, errors.New("trend analyzer"))
	}
	if deps.Analyst == nil {
		missing = append(missing, errors.New("analyst"))
	}
	if deps.Reporter == nil {
		missing = append(missing, errors.New("reporter"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("pipeline dependencies missing: %w", errors.Join(missing...))
	}

	nodes := []stageNode{
		{stage: models.StageExchangeRate, run: func(ctx context.Context, s models.AnalysisState) (models.Delta, error) {
			return models.RateDelta(deps.Rates.FetchRate(ctx, s.Pair)), nil
		}},
		{stage: models.StageNews, run: func(ctx context.Context, s models.AnalysisState) (models.Delta, error) {
			return models.NewsDelta(deps.News.FetchNews(ctx, s.Pair)), nil
		}},
		{stage: models.StageTrend, run: func(ctx context.Context, s models.AnalysisState) (models.Delta, error) {
			return models.TrendDelta(deps.Trends.AnalyzeTrend(ctx, s.Pair)), nil
		}},
		{stage: models.StageAnalysis, run: deps.Analyst.Analyze},
		{stage: models.StageReport, run: deps.Reporter.Report},
	}

	runnable, err := buildGraph(ctx, nodes)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		runnable:  runnable,
		now:       now,
		observer:  deps.Observer,
		callbacks: deps.Callbacks,
	}, nil
}

type RunOption func(*runContext)

// WithObserver adds an observer for a single run.
func WithObserver(o Observer) RunOption {
	return func(rc *runContext) {
		if o != nil {
			rc.observers = append(rc.observers, o)
		}
	}
}

// Run validates pair, then executes every stage. Invalid pairs fail before
// any network call. On error no partial report is returned.
func (p *Pipeline) Run(ctx context.Context, pair string, opts ...RunOption) (models.AnalysisState, error) {
	cp, err := models.ParsePair(pair)
	if err != nil {
		return models.AnalysisState{}, err
	}
	return p.RunPair(ctx, cp, opts...)
}

func (p *Pipeline) RunPair(ctx context.Context, pair models.CurrencyPair, opts ...RunOption) (models.AnalysisState, error) {
	rc := &runContext{now: p.now}
	if p.observer != nil {
		rc.observers = append(rc.observers, p.observer)
	}
	for _, opt := range opts {
		opt(rc)
	}

	initial := models.NewAnalysisState(pair, p.now())
	log := logger.Log.WithField("pair", pair.String())
	log.Info("analysis started")

	var invokeOpts []compose.Option
	if len(p.callbacks) > 0 {
		invokeOpts = append(invokeOpts, compose.WithCallbacks(p.callbacks...))
	}

	final, err := p.runnable.Invoke(withRun(ctx, rc), initial, invokeOpts...)
	if err != nil {
		if stageErr := rc.failure(); stageErr != nil {
			err = stageErr
		}
		log.Errorf("analysis failed: %v", err)
		return models.AnalysisState{}, err
	}
	if !final.Done() {
		return models.AnalysisState{}, fmt.Errorf("%w: pipeline stopped after %s", models.ErrStageOrder, final.Stage)
	}

	log.WithField("elapsed", p.now().Sub(initial.StartedAt).Round(time.Millisecond)).Info("analysis finished")
	return final, nil
}

// AnalyzeCurrencyPair runs the pipeline and returns only the report.
func (p *Pipeline) AnalyzeCurrencyPair(ctx context.Context, pair string) (string, error) {
	state, err := p.Run(ctx, pair)
	if err != nil {
		return "", err
	}
	return state.Report, nil
}

type runContext struct {
	now       func() time.Time
	observers []Observer

	mu  sync.Mutex
	err error
}

func (rc *runContext) notify(stage models.Stage, status string, err error) {
	if rc == nil {
		return
	}
	evt := models.StageEvent{Stage: stage, Status: status, Err: err, At: rc.now()}
	for _, o := range rc.observers {
		o(evt)
	}
}

func (rc *runContext) fail(err error) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.err == nil {
		rc.err = err
	}
}

func (rc *runContext) failure() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.err
}

type runKey struct{}

func withRun(ctx context.Context, rc *runContext) context.Context {
	return context.WithValue(ctx, runKey{}, rc)
}

func runFrom(ctx context.Context) *runContext {
	rc, _ := ctx.Value(runKey{}).(*runContext)
	return rc
}
