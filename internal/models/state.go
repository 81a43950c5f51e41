package models

// AnalysisState is the per-ticker accumulator threaded through the seven
// pipeline stages. Each stage fills exactly one field via a StageUpdate
// merged by the graph driver, so no stage touches another stage's output.
// A state is owned by a single pipeline run and never shared.
type AnalysisState struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"quantity"`

	MarketNews       string   `json:"market_news"`        // stage 1: market-wide mood
	News             []string `json:"news"`               // stage 2: raw ticker news items
	Semantic         string   `json:"semantic"`           // stage 3: graded ticker news
	MoexData         string   `json:"moex_data"`          // stage 4: rendered candle table
	MoexDataAnalysis string   `json:"moex_data_analysis"` // stage 5: technical summary
	IfrsData         string   `json:"ifrs_data"`          // stage 6: fundamentals summary
	FinalData        string   `json:"final_data"`         // stage 7: final verdict text
}

// StageUpdate is the partial result a single stage hands back. Only non-nil
// fields are merged; a degraded stage still publishes its placeholder this
// way without clobbering anything else. News uses non-nil (possibly empty)
// to mean "set": an empty item list is a valid stage outcome.
type StageUpdate struct {
	MarketNews       *string
	News             []string
	Semantic         *string
	MoexData         *string
	MoexDataAnalysis *string
	IfrsData         *string
	FinalData        *string
}

func NewAnalysisState(ticker string, quantity int) *AnalysisState {
	return &AnalysisState{
		Ticker:   ticker,
		Quantity: quantity,
		News:     []string{},
	}
}

// Merge applies a stage's partial update to the state.
func (s *AnalysisState) Merge(u *StageUpdate) {
	if u == nil {
		return
	}
	if u.MarketNews != nil {
		s.MarketNews = *u.MarketNews
	}
	if u.News != nil {
		s.News = u.News
	}
	if u.Semantic != nil {
		s.Semantic = *u.Semantic
	}
	if u.MoexData != nil {
		s.MoexData = *u.MoexData
	}
	if u.MoexDataAnalysis != nil {
		s.MoexDataAnalysis = *u.MoexDataAnalysis
	}
	if u.IfrsData != nil {
		s.IfrsData = *u.IfrsData
	}
	if u.FinalData != nil {
		s.FinalData = *u.FinalData
	}
}
