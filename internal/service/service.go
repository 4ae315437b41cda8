package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/agents"
	"github.com/dyike/MoneyScope/internal/dataflows"
	"github.com/dyike/MoneyScope/internal/graph"
	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/notifier"
	"github.com/dyike/MoneyScope/internal/storage"
	"github.com/dyike/MoneyScope/pkg/utils"
)

var (
	ErrMissingKeys     = errors.New("missing required API keys")
	ErrHistoryDisabled = errors.New("run history is disabled")
	ErrClosed          = errors.New("service is closed")
)

// AnalysisResult describes a finished run and the report written for it.
type AnalysisResult struct {
	ID          string
	Pair        models.CurrencyPair
	Report      string
	State       models.AnalysisState
	GeneratedAt time.Time
	FilePath    string
}

type Option func(*Service)

// WithChatModel replaces the model built from the configuration.
func WithChatModel(cm model.BaseChatModel) Option {
	return func(s *Service) { s.chatModel = cm }
}

func WithRateFetcher(f dataflows.RateFetcher) Option {
	return func(s *Service) { s.rates = f }
}

func WithNewsFetcher(f dataflows.NewsFetcher) Option {
	return func(s *Service) { s.news = f }
}

func WithTrendAnalyzer(a dataflows.TrendAnalyzer) Option {
	return func(s *Service) { s.trends = a }
}

func WithStore(st *storage.Store) Option {
	return func(s *Service) { s.store = st }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is the entry point the CLI and scheduler use: it checks
// credentials, runs the pipeline and handles the produced report.
type Service struct {
	cfg       config.Config
	chatModel model.BaseChatModel
	rates     dataflows.RateFetcher
	news      dataflows.NewsFetcher
	trends    dataflows.TrendAnalyzer
	store     *storage.Store
	ownStore  bool
	notifier  notifier.Notifier
	now       func() time.Time

	mu       sync.Mutex
	pipeline *graph.Pipeline

	// runs counts calls still using the store; Close waits for them.
	closeMu sync.Mutex
	closed  bool
	runs    sync.WaitGroup
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{cfg: *cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.rates == nil {
		s.rates = dataflows.NewRateFetcher(cfg)
	}
	if s.news == nil {
		s.news = dataflows.NewNewsFetcher(cfg)
	}
	if s.trends == nil {
		s.trends = dataflows.NewRandomTrendSampler()
	}
	if s.store == nil && cfg.HistoryEnabled {
		st, err := storage.NewStore(ctx, cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		s.store = st
		s.ownStore = true
	}
	if s.notifier == nil {
		n, err := newNotifier(cfg)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.notifier = n
	}
	return s, nil
}

func newNotifier(cfg *config.Config) (notifier.Notifier, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return notifier.Noop{}, nil
	}
	return notifier.NewTelegram(notifier.TelegramConfig{
		Token:       cfg.TelegramBotToken,
		ChatID:      cfg.TelegramChatID,
		HTTPTimeout: cfg.HTTPTimeout,
	})
}

func (s *Service) Config() config.Config {
	return s.cfg
}

// Close waits for running analyses to finish, then releases the history
// store. Later calls fail with ErrClosed.
func (s *Service) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	s.runs.Wait()
	if s.ownStore {
		return s.store.Close()
	}
	return nil
}

func (s *Service) begin() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.runs.Add(1)
	return nil
}

// CheckKeys reports the credentials an analysis still needs.
func (s *Service) CheckKeys() error {
	if missing := s.cfg.MissingKeys(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ", "))
	}
	return nil
}

// ensurePipeline builds the pipeline on first use so a run with missing keys
// never constructs a model client.
func (s *Service) ensurePipeline(ctx context.Context) (*graph.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline != nil {
		return s.pipeline, nil
	}

	cm := s.chatModel
	if cm == nil {
		var err error
		cm, err = agents.NewChatModel(ctx, &s.cfg)
		if err != nil {
			return nil, err
		}
	}
	analyst, err := agents.NewAnalyzer(ctx, cm, agents.WithClock(s.now), agents.WithTemperature(s.cfg.AnalystTemperature))
	if err != nil {
		return nil, err
	}
	reporter, err := agents.NewReporter(ctx, cm, agents.WithClock(s.now), agents.WithTemperature(s.cfg.ReporterTemperature))
	if err != nil {
		return nil, err
	}

	p, err := graph.New(ctx, graph.Deps{
		Rates:     s.rates,
		News:      s.news,
		Trends:    s.trends,
		Analyst:   analyst,
		Reporter:  reporter,
		Now:       s.now,
		Callbacks: []callbacks.Handler{graph.NewLoggerCallback()},
	})
	if err != nil {
		return nil, err
	}
	s.pipeline = p
	return p, nil
}

// Analyze runs the pipeline for pair, writes the report file, records the run
// and hands the report to the notifier.
func (s *Service) Analyze(ctx context.Context, pair string, opts ...graph.RunOption) (*AnalysisResult, error) {
	if err := s.CheckKeys(); err != nil {
		return nil, err
	}
	cp, err := models.ParsePair(pair)
	if err != nil {
		return nil, err
	}
	return s.AnalyzePair(ctx, cp, opts...)
}

func (s *Service) AnalyzePair(ctx context.Context, pair models.CurrencyPair, opts ...graph.RunOption) (*AnalysisResult, error) {
	if err := s.CheckKeys(); err != nil {
		return nil, err
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.runs.Done()
	p, err := s.ensurePipeline(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := logger.Log.WithFields(logrus.Fields{"run_id": id, "pair": pair.String()})

	state, err := p.RunPair(ctx, pair, opts...)
	if err != nil {
		s.record(ctx, storage.RunRecord{ID: id, Pair: pair.String(), Status: storage.StatusError, Error: err.Error(), CreatedAt: s.now()})
		return nil, err
	}

	res := &AnalysisResult{
		ID:          id,
		Pair:        pair,
		Report:      state.Report,
		State:       state,
		GeneratedAt: s.now(),
	}

	meta := utils.ReportMeta{RunID: id, Pair: pair.String(), GeneratedAt: res.GeneratedAt, Model: s.cfg.LLMModel}
	if state.ExchangeRate.OK() {
		meta.Rate = state.ExchangeRate.Rate.Rate
	}
	content, err := utils.RenderReport(meta, state.Report)
	if err != nil {
		return nil, err
	}
	fileName := utils.ReportFileName(pair.FileTag(), res.GeneratedAt)
	res.FilePath, err = utils.WriteMarkdown(s.cfg.ResultsDir, fileName, content)
	if err != nil {
		s.record(ctx, storage.RunRecord{ID: id, Pair: pair.String(), Status: storage.StatusError, Error: err.Error(), CreatedAt: res.GeneratedAt})
		return nil, err
	}
	log.Infof("report written to %s", res.FilePath)

	s.record(ctx, storage.RunRecord{
		ID:         id,
		Pair:       pair.String(),
		Status:     storage.StatusDone,
		Rate:       meta.Rate,
		ReportPath: res.FilePath,
		CreatedAt:  res.GeneratedAt,
	})

	if err := s.notifier.Notify(ctx, notifier.Report{Pair: pair.String(), FileName: fileName, Content: content}); err != nil {
		log.Warnf("report delivery failed: %v", err)
	}
	return res, nil
}

// record never fails a run; history is best effort.
func (s *Service) record(ctx context.Context, rec storage.RunRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.Record(ctx, rec); err != nil {
		logger.Log.WithField("run_id", rec.ID).Warnf("record run: %v", err)
	}
}

// History lists recorded runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.runs.Done()
	return s.store.List(ctx, limit)
}
