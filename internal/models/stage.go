package models

import "github.com/dyike/MoneyScope/consts"

// Stage is the last pipeline step whose output a state holds.
type Stage int

const (
	StageInit Stage = iota
	StageExchangeRate
	StageNews
	StageTrend
	StageAnalysis
	StageReport
)

// Stages lists the executable stages in pipeline order.
var Stages = []Stage{StageExchangeRate, StageNews, StageTrend, StageAnalysis, StageReport}

func (s Stage) Next() Stage {
	if s >= StageReport {
		return StageReport
	}
	return s + 1
}

// String returns the graph node key of the stage.
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageExchangeRate:
		return consts.CollectExchangeRate
	case StageNews:
		return consts.CollectNews
	case StageTrend:
		return consts.CollectTrends
	case StageAnalysis:
		return consts.AnalyzeData
	case StageReport:
		return consts.GenerateReport
	default:
		return "unknown"
	}
}

func (s Stage) Title() string {
	switch s {
	case StageExchangeRate:
		return consts.Step_ExchangeRate
	case StageNews:
		return consts.Step_News
	case StageTrend:
		return consts.Step_Trends
	case StageAnalysis:
		return consts.Step_Analysis
	case StageReport:
		return consts.Step_Report
	default:
		return ""
	}
}
