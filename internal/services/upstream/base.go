// Package upstream holds HTTP clients for the stock, external (crawler) and
// auth hosts. URLs come from the endpoint resolver; failures are *xhttp.UpstreamError.
package upstream

import (
	"context"

	"StockDash/internal/service/endpoint"
	xhttp "StockDash/pkg/http"
)

// HTTPServiceBase is the shared foundation of the upstream clients.
type HTTPServiceBase struct {
	urls   *endpoint.Resolver
	client *xhttp.Client
}

// NewHTTPServiceBase binds a resolver to an HTTP client.
func NewHTTPServiceBase(urls *endpoint.Resolver, client *xhttp.Client) *HTTPServiceBase {
	return &HTTPServiceBase{urls: urls, client: client}
}

func (b *HTTPServiceBase) getJSON(ctx context.Context, name, url, token string, dest interface{}) error {
	if b == nil || b.client == nil {
		return xhttp.ErrNilClient
	}
	return b.client.GetJSON(ctx, name, url, token, dest)
}

func (b *HTTPServiceBase) getWithQuery(ctx context.Context, name, url string, q map[string][]string, dest interface{}) error {
	if b == nil || b.client == nil {
		return xhttp.ErrNilClient
	}
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Name:        name,
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: q,
	}, dest)
}

func (b *HTTPServiceBase) postJSON(ctx context.Context, name, url string, payload, dest interface{}) error {
	if b == nil || b.client == nil {
		return xhttp.ErrNilClient
	}
	return b.client.PostJSON(ctx, name, url, "", payload, dest)
}
