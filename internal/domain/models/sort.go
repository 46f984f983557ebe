package models

// SortMode orders the change ranking.
type SortMode string

const (
	// SortInitial orders by absolute change, largest first.
	SortInitial SortMode = "initial"
	SortGainers SortMode = "gainers"
	SortLosers  SortMode = "losers"
)

// IsValidSortMode returns true if m is a supported mode.
func IsValidSortMode(m SortMode) bool {
	switch m {
	case SortInitial, SortGainers, SortLosers:
		return true
	default:
		return false
	}
}

// NormalizeSortMode converts raw string to a valid mode (or initial).
func NormalizeSortMode(s string) SortMode {
	m := SortMode(s)
	if IsValidSortMode(m) {
		return m
	}
	return SortInitial
}
