package blotter

import "encoding/json"

// FileSource records the provenance of a registry entry: uploaded directly in
// this session, or hydrated from the durable per-user record.
type FileSource string

const (
	SourceLocal FileSource = "local"
	SourceCloud FileSource = "cloud"
)

// FileStatus is the explicit per-file lifecycle status. A missing analysis
// result alone cannot distinguish "still processing" from "failed", so the
// status is tracked alongside the results map.
type FileStatus string

const (
	StatusPending   FileStatus = "pending"
	StatusSucceeded FileStatus = "succeeded"
	StatusFailed    FileStatus = "failed"
)

// File is one blotter known to a session. Name is the primary key within the
// registry; re-uploading a file with the same name overwrites its entry.
type File struct {
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	Source     FileSource `json:"source"`
	Status     FileStatus `json:"status"`
	UploadedAt string     `json:"uploadedAt,omitempty"`
}

// TradingInsight is a per-symbol recommendation from the analysis pipeline.
type TradingInsight struct {
	Symbol         string          `json:"symbol"`
	Recommendation string          `json:"recommendation"`
	Confidence     float64         `json:"confidence"`
	Summary        string          `json:"summary"`
	YieldRate      *float64        `json:"yield_rate,omitempty"`
	FinalSellPrice *float64        `json:"final_sell_price,omitempty"`
	SupportingData SupportingData  `json:"supporting_data"`
}

// SupportingData carries the evidence behind an insight. The pipeline's shape
// here is loose, so the fields stay raw.
type SupportingData struct {
	PriceData json.RawMessage   `json:"price_data,omitempty"`
	News      []json.RawMessage `json:"news,omitempty"`
	Sentiment json.RawMessage   `json:"sentiment,omitempty"`
}

// TradePerformance is one point of the portfolio PnL time series.
type TradePerformance struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

// PortfolioSummary aggregates the blotter's trade statistics.
type PortfolioSummary struct {
	TotalTrades      int                `json:"total_trades"`
	BuyTrades        int                `json:"buy_trades"`
	SellTrades       int                `json:"sell_trades"`
	TotalVolume      float64            `json:"total_volume"`
	Positions        map[string]float64 `json:"positions"`
	PnL              float64            `json:"pnl"`
	ProfitMargin     float64            `json:"profit_margin"`
	TradePerformance []TradePerformance `json:"trade_performance"`
}

// KeyRisk is one titled risk surfaced by the pipeline.
type KeyRisk struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Observation is one prioritized AI recommendation.
type Observation struct {
	Title          string `json:"title"`
	Priority       string `json:"priority"`
	Description    string `json:"description"`
	ExpectedImpact string `json:"expected_impact"`
}

// StylePattern describes a recurring behavioral pattern in the trader's
// history.
type StylePattern struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Frequency   float64 `json:"frequency"`
	Suggestion  string  `json:"suggestion"`
}

// StyleOpportunity is a missed or upcoming trade opportunity derived from the
// trader's style.
type StyleOpportunity struct {
	Symbol           string   `json:"symbol"`
	Action           string   `json:"action"`
	ExpiryDate       string   `json:"expiry_date"`
	ProfitPotential  float64  `json:"profit_potential"`
	ProfitPercentage float64  `json:"profit_percentage"`
	ExecutedPrice    *float64 `json:"executed_price,omitempty"`
	OptimalPrice     float64  `json:"optimal_price"`
	OptimalTiming    string   `json:"optimal_timing"`
	Reason           string   `json:"reason"`
}

// TradingStyle bundles behavioral patterns and trade opportunities.
type TradingStyle struct {
	Patterns      []StylePattern     `json:"patterns"`
	Opportunities []StyleOpportunity `json:"opportunities"`
}

// AnalysisResult is the opaque output of the external analysis pipeline,
// scoped 1:1 to a registry file by name. Once stored it is treated as an
// immutable value: a new result replaces the old one wholesale.
type AnalysisResult struct {
	PortfolioSummary PortfolioSummary `json:"portfolio_summary"`
	TradingInsights  []TradingInsight `json:"trading_insights"`
	KeyRisks         []KeyRisk        `json:"key_risks"`
	AIObservations   []Observation    `json:"ai_observations"`
	TradingStyle     TradingStyle     `json:"trading_style"`
}

// CloudRecord is the durable "latest analysis" document stored per user.
type CloudRecord struct {
	FileName   string          `json:"fileName"`
	Analysis   *AnalysisResult `json:"analysis"`
	FileSize   int64           `json:"fileSize"`
	UploadedAt string          `json:"uploadedAt,omitempty"`
}
