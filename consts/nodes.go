package consts

// Node keys of the per-ticker analysis graph, in execution order.
const (
	NodeMarketMood    = "market_mood"
	NodeTickerNews    = "ticker_news"
	NodeNewsGrade     = "news_grade"
	NodeMarketData    = "market_data"
	NodeTechAnalysis  = "tech_analysis"
	NodeFundamentals  = "fundamentals"
	NodeFinalAnalysis = "final_analysis"
)

const GraphName = "portfolio_analysis"
