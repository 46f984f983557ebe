package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParseBool treats 1/true/yes/on (any case) as true.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// NormalizeTicker trims and upper-cases a ticker; numeric KR codes are unchanged.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
