package http

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream failures.
type ErrorKind int

const (
	// KindNetwork: no response was obtained.
	KindNetwork ErrorKind = iota + 1
	// KindStatus: a response arrived with a non-2xx status.
	KindStatus
	// KindShape: a response arrived but its body did not decode as expected.
	KindShape
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// UpstreamError is returned by Client for every failed upstream call.
type UpstreamError struct {
	Kind       ErrorKind
	Name       string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Name, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: %s failure: %v", e.Name, e.Kind, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewShapeError builds a shape error for bodies that decoded but made no sense.
func NewShapeError(name, url string, err error) *UpstreamError {
	return &UpstreamError{Kind: KindShape, Name: name, URL: url, Err: err}
}

// AsUpstream extracts an *UpstreamError from err.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func IsNetworkFailure(err error) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.Kind == KindNetwork
}

func IsShapeError(err error) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.Kind == KindShape
}

// IsStatus reports whether err is an upstream status error with the given code.
func IsStatus(err error, code int) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.Kind == KindStatus && ue.StatusCode == code
}
