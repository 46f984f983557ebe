package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type tickerRequest struct {
	Country string `param:"country" validate:"required,country"`
	Ticker  string `param:"ticker" validate:"required,ticker"`
	Start   string `query:"start" validate:"omitempty,yyyymmdd"`
	Page    int    `query:"page" default:"1"`
}

func bindTicker(target, country, ticker string) (*tickerRequest, []ValidationError) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	c.SetParamNames("country", "ticker")
	c.SetParamValues(country, ticker)
	req := &tickerRequest{}
	return req, ReadAndValidateRequest(c, req)
}

func TestReadAndValidateAppliesDefaults(t *testing.T) {
	req, errs := bindTicker("/x", "us", "BRK.B")
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if req.Page != 1 {
		t.Fatalf("page default: got %d", req.Page)
	}
}

func TestReadAndValidateReportsClientFieldNames(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		country string
		ticker  string
		field   string
		code    string
	}{
		{"country", "/x", "jp", "005930", "country", "ERR_COUNTRY"},
		{"ticker", "/x", "kr", "00/59", "ticker", "ERR_TICKER"},
		{"date", "/x?start=20241340", "kr", "005930", "start", "ERR_YYYYMMDD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := bindTicker(tc.target, tc.country, tc.ticker)
			if len(errs) != 1 {
				t.Fatalf("want 1 error, got %+v", errs)
			}
			if errs[0].Field != tc.field || errs[0].Code != tc.code {
				t.Fatalf("got field=%q code=%q", errs[0].Field, errs[0].Code)
			}
		})
	}
}
