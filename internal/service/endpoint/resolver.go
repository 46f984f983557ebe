// Package endpoint maps request intents to upstream URLs. It performs no I/O
// and never fails: bad input yields a well-typed but useless URL.
package endpoint

import (
	"net/url"
	"strings"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/pkg/config"
	xutil "StockDash/pkg/util"
)

// Hosts are the configured upstream base URLs, without trailing slashes.
type Hosts struct {
	Stock    string
	External string
	Auth     string
	Chart    string
}

// Resolver builds upstream URLs.
type Resolver struct {
	h Hosts
}

// New creates a Resolver. Chart falls back to Stock.
func New(h Hosts) *Resolver {
	h.Stock = strings.TrimRight(h.Stock, "/")
	h.External = strings.TrimRight(h.External, "/")
	h.Auth = strings.TrimRight(h.Auth, "/")
	h.Chart = strings.TrimRight(h.Chart, "/")
	if h.Chart == "" {
		h.Chart = h.Stock
	}
	if h.Auth == "" {
		h.Auth = h.Stock
	}
	return &Resolver{h: h}
}

// FromConfig creates a Resolver from the upstream section.
func FromConfig(cfg *config.Config) *Resolver {
	return New(Hosts{
		Stock:    cfg.Upstream.StockHost,
		External: cfg.Upstream.ExternalHost,
		Auth:     cfg.Upstream.AuthHost,
		Chart:    cfg.Upstream.ChartHost,
	})
}

func seg(s string) string { return url.PathEscape(s) }

func (r *Resolver) Search(q string) string {
	return r.h.Stock + "/search?q=" + url.QueryEscape(q)
}

func (r *Resolver) Recommend(country string) string {
	return r.h.Stock + "/recommend/" + seg(country)
}

// Detail is the per-ticker change rate record.
func (r *Resolver) Detail(country, ticker string) string {
	return r.h.Stock + "/changerate/" + seg(country) + "/" + seg(ticker)
}

func (r *Resolver) AllChanges(country string) string {
	return r.h.Stock + "/get_ch_all/" + seg(country)
}

// Logo returns the logo image URL; an empty ticker selects the default logo.
func (r *Resolver) Logo(country, ticker string) string {
	if ticker == "" {
		ticker = "default"
	}
	return r.h.Stock + "/logo/" + seg(country) + "/" + seg(ticker)
}

func (r *Resolver) DefaultLogo(country string) string {
	return r.Logo(country, "")
}

func (r *Resolver) KrName(ticker string) string {
	return r.h.Stock + "/get_kr_name/" + seg(ticker)
}

// StockData is the raw price series between two dates.
func (r *Resolver) StockData(country, ticker string, from, to time.Time) string {
	return r.h.Stock + "/" + seg(country) + "/" + seg(ticker) + "/" + xutil.FormatYMD(from) + "/" + xutil.FormatYMD(to)
}

func (r *Resolver) MainNews() string {
	return r.h.Stock + "/get_main_news"
}

// Crawler lists article references for a display name.
func (r *Resolver) Crawler(name string) string {
	return r.h.External + "/crawler/" + seg(name)
}

// ArticleRef resolves a crawler reference. Absolute refs are returned unchanged;
// relative ones are joined onto the external host, which already carries its path prefix.
func (r *Resolver) ArticleRef(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return r.h.External + "/" + strings.TrimLeft(ref, "/")
}

// Chart is the iframe source; start and end are YYYYMMDD.
func (r *Resolver) Chart(country, ticker, start, end string) string {
	return r.h.Chart + "/chart/" + seg(country) + "/" + seg(ticker) + "/" + seg(start) + "/" + seg(end)
}

func (r *Resolver) AnalyzePrice(country, ticker string) string {
	return r.h.Auth + "/api/analyze-price/" + seg(country) + "/" + seg(ticker)
}

func (r *Resolver) AnalyzeConsolidated(country, ticker string) string {
	return r.h.Auth + "/api/analyze/" + seg(country) + "/" + seg(ticker)
}

// Analyze picks the requester URL by kind; unknown kinds resolve to the consolidated one.
func (r *Resolver) Analyze(kind models.AnalysisKind, country, ticker string) string {
	if kind == models.AnalysisPrice {
		return r.AnalyzePrice(country, ticker)
	}
	return r.AnalyzeConsolidated(country, ticker)
}

func (r *Resolver) Login() string {
	return r.h.Auth + "/login"
}

func (r *Resolver) Verify() string {
	return r.h.Auth + "/verify"
}

// CountryOf maps a search-result source to a country code:
// a case-insensitive "US" prefix is "us", anything else (including empty) is "kr".
func CountryOf(source string) string {
	if len(source) >= 2 && strings.EqualFold(source[:2], "us") {
		return models.CountryUS
	}
	return models.CountryKR
}
