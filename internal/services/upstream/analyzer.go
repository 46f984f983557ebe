package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"StockDash/internal/domain/models"
	domsvc "StockDash/internal/domain/service"
	xhttp "StockDash/pkg/http"
)

const analysisStatusError = "error"

// AnalysisError is a failed analysis with a message fit for display.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string { return e.Message }

func (e *AnalysisError) Unwrap() error { return e.Err }

type analysisResponse struct {
	Status   string `json:"status"`
	Analysis string `json:"analysis"`
}

// AnalysisClient calls the price and consolidated analysis endpoints.
type AnalysisClient struct{ base *HTTPServiceBase }

func NewAnalysisClient(base *HTTPServiceBase) *AnalysisClient { return &AnalysisClient{base: base} }

// Analyze makes one GET; there is no retry.
func (a *AnalysisClient) Analyze(ctx context.Context, kind models.AnalysisKind, country, ticker, token string) (string, error) {
	url := a.base.urls.Analyze(kind, country, ticker)
	name := "analyze_" + string(kind)

	var resp analysisResponse
	if err := a.base.getJSON(ctx, name, url, token, &resp); err != nil {
		return "", &AnalysisError{Message: displayMessage(err), Err: err}
	}
	if resp.Status == analysisStatusError {
		msg := strings.TrimSpace(resp.Analysis)
		if msg == "" {
			msg = "분석 중 오류가 발생했습니다."
		}
		return "", &AnalysisError{Message: msg, Err: xhttp.NewShapeError(name, url, errors.New("status error"))}
	}
	if strings.TrimSpace(resp.Analysis) == "" {
		err := xhttp.NewShapeError(name, url, errors.New("empty analysis"))
		return "", &AnalysisError{Message: err.Error(), Err: err}
	}
	return resp.Analysis, nil
}

// displayMessage prefers the upstream's own analysis text carried in an error body.
func displayMessage(err error) string {
	ue, ok := xhttp.AsUpstream(err)
	if !ok || ue.Kind != xhttp.KindStatus || ue.Body == "" {
		return err.Error()
	}
	var body analysisResponse
	if jerr := json.Unmarshal([]byte(ue.Body), &body); jerr == nil && strings.TrimSpace(body.Analysis) != "" {
		return body.Analysis
	}
	return err.Error()
}

var _ domsvc.Analyzer = (*AnalysisClient)(nil)
