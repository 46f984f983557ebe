package upstream

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"StockDash/internal/domain/models"
	domsvc "StockDash/internal/domain/service"
	xhttp "StockDash/pkg/http"
)

// ParseCrawlerResponse accepts {"success":[...]} and the legacy map-of-arrays,
// where the lexicographically first key holding an array carries the refs.
// Anything else yields ShapeUnknown with no refs.
func ParseCrawlerResponse(raw []byte) models.CrawlerRefs {
	unknown := models.CrawlerRefs{Shape: models.ShapeUnknown}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return unknown
	}

	if v, ok := obj["success"]; ok {
		refs, isArray := stringArray(v)
		if !isArray {
			return unknown
		}
		return models.CrawlerRefs{Shape: models.ShapeLatest, Refs: refs}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if refs, isArray := stringArray(obj[k]); isArray {
			return models.CrawlerRefs{Shape: models.ShapeLegacy, Refs: refs}
		}
	}
	return unknown
}

// stringArray maps a JSON array to refs position by position. Elements that are
// not non-blank strings become "" so they still count toward the article cap.
func stringArray(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err != nil {
			s = ""
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, true
}

// NewsClient talks to the external host.
type NewsClient struct{ base *HTTPServiceBase }

func NewNewsClient(base *HTTPServiceBase) *NewsClient { return &NewsClient{base: base} }

// References fetches the crawler list. Transport and status errors are returned;
// an unrecognised body is not an error, it parses to ShapeUnknown.
func (n *NewsClient) References(ctx context.Context, name string) (models.CrawlerRefs, error) {
	var raw []byte
	if err := n.base.getJSON(ctx, "crawler", n.base.urls.Crawler(name), "", &raw); err != nil {
		return models.CrawlerRefs{}, err
	}
	return ParseCrawlerResponse(raw), nil
}

// Article fetches one summary.
func (n *NewsClient) Article(ctx context.Context, ref string) (*models.NewsSummary, error) {
	url := n.base.urls.ArticleRef(ref)
	var raw []byte
	if err := n.base.getJSON(ctx, "article", url, "", &raw); err != nil {
		return nil, err
	}
	var s models.NewsSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, xhttp.NewShapeError("article", url, err)
	}
	return &s, nil
}

var _ domsvc.NewsSource = (*NewsClient)(nil)
