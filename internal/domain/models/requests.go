package models

// Requests for the HTTP API. Defaults and validation follow the tags.

type SearchRequest struct {
	Q string `query:"q" json:"q" validate:"required,max=100"`
}

type TableRequest struct {
	Country string `param:"country" validate:"required,country"`
	Page    int    `query:"page" default:"1"`
	Sort    string `query:"sort" default:"initial" validate:"oneof=initial gainers losers"`
	Refresh bool   `query:"refresh"`
}

type DetailsRequest struct {
	Country string   `param:"country" validate:"required,country"`
	Tickers []string `json:"tickers" validate:"required,min=1,max=100,dive,required,ticker"`
}

type StockRequest struct {
	Country  string `param:"country" validate:"required,country"`
	Ticker   string `param:"ticker" validate:"required,ticker"`
	Name     string `query:"name"`
	News     bool   `query:"news"`
	Analysis string `query:"analysis" validate:"omitempty,oneof=price consolidated"`
	Refresh  bool   `query:"refresh"`
}

type ChartRequest struct {
	Country string `param:"country" validate:"required,country"`
	Ticker  string `param:"ticker" validate:"required,ticker"`
	Start   string `query:"start" validate:"omitempty,yyyymmdd"`
	End     string `query:"end" validate:"omitempty,yyyymmdd"`
}

type NewsRequest struct {
	Country string `param:"country" validate:"required,country"`
	Ticker  string `param:"ticker" validate:"required,ticker"`
	Name    string `query:"name"`
	Refresh bool   `query:"refresh"`
}

type AnalysisRequest struct {
	Kind    string `param:"kind" validate:"required,oneof=price consolidated"`
	Country string `param:"country" validate:"required,country"`
	Ticker  string `param:"ticker" validate:"required,ticker"`
}

type HistoryRequest struct {
	Country string `param:"country" validate:"required,country"`
	Ticker  string `param:"ticker" validate:"required,ticker"`
	Limit   int    `query:"limit" default:"20" validate:"gte=1,lte=200"`
}

type LoginRequest struct {
	Code string `json:"code" validate:"required"`
}

type WatchRequest struct {
	StockCode string `json:"stock_code" validate:"required,ticker"`
}

type RefreshRequest struct {
	Country string `param:"country" validate:"required,country"`
}
