package models

import "time"

const (
	CountryKR = "kr"
	CountryUS = "us"

	// PriceNA replaces the price when no numeric close is available.
	PriceNA = "N/A"
)

// StockSummary is one row of a stock table. Built per fetch cycle and never patched.
// Ticker and Name are never empty; Name falls back to Ticker.
type StockSummary struct {
	Ticker     string   `json:"ticker"`
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	ChangeRate float64  `json:"changeRate"`
	LogoURL    string   `json:"logoUrl"`
	Country    string   `json:"country"`
	RawPrice   *float64 `json:"rawPrice,omitempty"`
	// OK is false for placeholder rows built after a failed fetch.
	OK bool `json:"ok"`
}

// SearchResult is one hit of the stock host's free-text search.
type SearchResult struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// RecommendItem is one entry of /recommend/<country>.
type RecommendItem struct {
	Ticker    string `json:"ticker"`
	StockName string `json:"stock_name"`
}

// ChangeRate is the /changerate/<country>/<ticker> payload.
// Pointers distinguish a missing or non-numeric field from zero.
type ChangeRate struct {
	YesterdayClose *float64 `json:"yesterday_close"`
	ChangeRate     *float64 `json:"change_rate"`
	StockName      string   `json:"stock_name"`
}

// BulkChange is one entry of /get_ch_all/<country>.
type BulkChange struct {
	Ticker     string     `json:"ticker"`
	ChangeRate ChangeRate `json:"changerate"`
}

// TableView is one page of the recommendation table plus the change ranking.
type TableView struct {
	Country    string         `json:"country"`
	Page       int            `json:"page"`
	Pages      int            `json:"pages"`
	Total      int            `json:"total"`
	Sort       string         `json:"sort"`
	Rows       []StockSummary `json:"rows"`
	ChangeRank []StockSummary `json:"changeRank"`
	BuiltAt    time.Time      `json:"builtAt"`
}

// StockView is the per-instrument page: detail, chart and optional sections.
// A failed optional section carries its error text instead of data.
type StockView struct {
	Summary       StockSummary    `json:"summary"`
	ChartURL      string          `json:"chartUrl"`
	News          *NewsResult     `json:"news,omitempty"`
	NewsError     string          `json:"newsError,omitempty"`
	Analysis      *AnalysisResult `json:"analysis,omitempty"`
	AnalysisError string          `json:"analysisError,omitempty"`
}

// HomeView is the landing page: market news and both countries' movers.
type HomeView struct {
	MainNews      []MainNewsItem `json:"mainNews"`
	MainNewsError string         `json:"mainNewsError,omitempty"`
	KR            []StockSummary `json:"kr"`
	KRError       string         `json:"krError,omitempty"`
	US            []StockSummary `json:"us"`
	USError       string         `json:"usError,omitempty"`
}
