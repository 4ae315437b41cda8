package consts

// Pipeline node keys, in execution order.
const (
	CollectExchangeRate = "collect_exchange_rate"
	CollectNews         = "collect_news"
	CollectTrends       = "collect_trends"
	AnalyzeData         = "analyze_data"
	GenerateReport      = "generate_report"
)

const GraphName = "MoneyScope-ForexAnalysis"
