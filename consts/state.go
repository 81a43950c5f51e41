package consts

// Operation names used by the performance monitor. Every instrumented
// collaborator call reports under one of these.
const (
	OpDeepSeek   = "deepseek"
	OpMoexData   = "moex_data"
	OpMoexPrice  = "moex_price"
	OpTickerNews = "pulse_news"
	OpMarketNews = "market_news"
	OpIfrsReport = "ifrs_report"
)
