package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrStageOrder = errors.New("stage applied out of order")

// AnalysisState is the value threaded through the pipeline. Fields are filled
// strictly in stage order and a stage never mutates the state it receives.
type AnalysisState struct {
	Pair         CurrencyPair  `json:"currency_pair"`
	ExchangeRate RateResult    `json:"exchange_rate_data"`
	News         NewsResult    `json:"news_data"`
	Trend        TrendSnapshot `json:"trend_data"`
	Analysis     string        `json:"data_analysis"`
	Report       string        `json:"final_report"`

	Stage     Stage     `json:"stage"`
	StartedAt time.Time `json:"started_at"`
}

func NewAnalysisState(pair CurrencyPair, now time.Time) AnalysisState {
	return AnalysisState{
		Pair:      pair,
		Stage:     StageInit,
		StartedAt: now,
	}
}

func (s AnalysisState) HasExchangeRate() bool { return s.Stage >= StageExchangeRate }
func (s AnalysisState) HasNews() bool { return s.Stage >= StageNews }
func (s AnalysisState) HasTrend() bool { return s.Stage >= StageTrend }
func (s AnalysisState) HasAnalysis() bool { return s.Stage >= StageAnalysis }
func (s AnalysisState) Done() bool { return s.Stage == StageReport }

// Delta is the single field a stage contributes. Only the payload matching
// Stage is read.
type Delta struct {
	Stage        Stage
	ExchangeRate *RateResult
	News         *NewsResult
	Trend        *TrendSnapshot
	Analysis     *string
	Report       *string
}

func RateDelta(r RateResult) Delta { return Delta{Stage: StageExchangeRate, ExchangeRate: &r} }
func NewsDelta(r NewsResult) Delta { return Delta{Stage: StageNews, News: &r} }
func TrendDelta(t TrendSnapshot) Delta { return Delta{Stage: StageTrend, Trend: &t} }
func AnalysisDelta(text string) Delta { return Delta{Stage: StageAnalysis, Analysis: &text} }
func ReportDelta(text string) Delta { return Delta{Stage: StageReport, Report: &text} }

// Apply returns a new state with d merged in. The receiver is left untouched
// and the result shares no slice backing arrays with it or with d.
func (s AnalysisState) Apply(d Delta) (AnalysisState, error) {
	if d.Stage != s.Stage.Next() || s.Stage == StageReport {
		return s, fmt.Errorf("%w: %s after %s", ErrStageOrder, d.Stage, s.Stage)
	}

	next := s
	next.News.Articles = slices.Clone(s.News.Articles)

	switch d.Stage {
	case StageExchangeRate:
		if d.ExchangeRate == nil {
			return s, missingPayload(d.Stage)
		}
		next.ExchangeRate = *d.ExchangeRate
	case StageNews:
		if d.News == nil {
			return s, missingPayload(d.Stage)
		}
		next.News = *d.News
		next.News.Articles = slices.Clone(d.News.Articles)
	case StageTrend:
		if d.Trend == nil {
			return s, missingPayload(d.Stage)
		}
		next.Trend = *d.Trend
	case StageAnalysis:
		if d.Analysis == nil {
			return s, missingPayload(d.Stage)
		}
		next.Analysis = *d.Analysis
	case StageReport:
		if d.Report == nil {
			return s, missingPayload(d.Stage)
		}
		next.Report = *d.Report
	}
	next.Stage = d.Stage
	return next, nil
}

func missingPayload(stage Stage) error {
	return fmt.Errorf("%w: %s delta carries no payload", ErrStageOrder, stage)
}
