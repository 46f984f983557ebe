package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxNewsSummaries caps one NewsSummary batch.
const MaxNewsSummaries = 5

type SentinelType string

const (
	SentinelNoNews       SentinelType = "no_news"
	SentinelEmptySummary SentinelType = "empty_summary"
)

var sentinelMessages = map[SentinelType]string{
	SentinelNoNews:       "요약할 뉴스가 없습니다.",
	SentinelEmptySummary: "뉴스 요약 정보를 가져왔으나 내용이 없습니다.",
}

// NewsSummary is one summarised article.
type NewsSummary struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Issue          string   `json:"issue"`
	Impact         string   `json:"impact"`
	Link           string   `json:"link"`
	RelatedTickers []string `json:"related_tickers"`
}

// Empty reports whether the summary carries no displayable field.
func (n NewsSummary) Empty() bool {
	return strings.TrimSpace(n.Title) == "" &&
		strings.TrimSpace(n.Issue) == "" &&
		strings.TrimSpace(n.Impact) == "" &&
		strings.TrimSpace(n.Link) == ""
}

// SentinelNews stands in for a news list with no usable article.
type SentinelNews struct {
	Type    SentinelType `json:"type"`
	Message string       `json:"message"`
}

// NewSentinel builds the sentinel with its fixed display message.
func NewSentinel(t SentinelType) *SentinelNews {
	return &SentinelNews{Type: t, Message: sentinelMessages[t]}
}

// NewsResult holds exactly one of Summaries (non-empty) or Sentinel.
// On the wire it is a JSON array of summaries, or a one-element array holding the sentinel.
type NewsResult struct {
	Summaries []NewsSummary
	Sentinel  *SentinelNews
}

// SummariesResult wraps a non-empty list.
func SummariesResult(s []NewsSummary) NewsResult {
	return NewsResult{Summaries: s}
}

// SentinelResult wraps a sentinel.
func SentinelResult(t SentinelType) NewsResult {
	return NewsResult{Sentinel: NewSentinel(t)}
}

// IsSentinel reports whether the result is the sentinel variant.
func (r NewsResult) IsSentinel() bool { return r.Sentinel != nil }

func (r NewsResult) MarshalJSON() ([]byte, error) {
	if r.Sentinel != nil {
		return json.Marshal([]*SentinelNews{r.Sentinel})
	}
	if len(r.Summaries) == 0 {
		return nil, errors.New("news result: neither summaries nor sentinel set")
	}
	return json.Marshal(r.Summaries)
}

func (r *NewsResult) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("news result: %w", err)
	}
	if len(raw) == 1 {
		var head struct {
			Type SentinelType `json:"type"`
		}
		if err := json.Unmarshal(raw[0], &head); err == nil && head.Type != "" {
			var s SentinelNews
			if err := json.Unmarshal(raw[0], &s); err != nil {
				return err
			}
			*r = NewsResult{Sentinel: &s}
			return nil
		}
	}
	var list []NewsSummary
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("news result: %w", err)
	}
	if len(list) == 0 {
		return errors.New("news result: empty list")
	}
	*r = NewsResult{Summaries: list}
	return nil
}

// MainNewsItem is one headline of /get_main_news.
type MainNewsItem struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link"`
}
