package http

import (
	"time"

	xutil "StockDash/pkg/util"

	"github.com/labstack/echo/v4"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time { return xutil.ParseTimeDefault(s, def) }

// QueryBool reads a boolean query flag (1/true/yes/on).
func QueryBool(c echo.Context, name string) bool { return xutil.ParseBool(c.QueryParam(name)) }
