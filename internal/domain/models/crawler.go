package models

// CrawlerShape tags which wire variant a crawler response used.
type CrawlerShape string

const (
	// ShapeLatest is {"success":[ref,...]}.
	ShapeLatest CrawlerShape = "latest"
	// ShapeLegacy is a map whose first array value holds the refs.
	ShapeLegacy CrawlerShape = "legacy"
	// ShapeUnknown is anything else; it carries no refs.
	ShapeUnknown CrawlerShape = "unknown"
)

// CrawlerRefs is the parsed crawler response. Refs keeps the upstream
// positions; an invalid element is an empty string.
type CrawlerRefs struct {
	Shape CrawlerShape
	Refs  []string
}
