package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the query and download steps.
type ErrorKind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown ErrorKind = iota

	// KindNetwork covers connection, DNS, TLS and timeout failures.
	KindNetwork

	// KindStatus is a non-success HTTP status code.
	KindStatus

	// KindIO covers local file system failures and truncated bodies.
	KindIO

	// KindParse is a malformed or unexpected response document.
	KindParse

	// KindCanceled means the run's context was cancelled.
	KindCanceled
)

// String returns the lower-case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is a classified failure of one operation against one URL or path.
type Error struct {
	Kind       ErrorKind
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	target := e.URL
	switch {
	case e.Kind == KindStatus && e.Err != nil:
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Op, target, e.StatusCode, e.Err)
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s %s: HTTP %d", e.Op, target, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s error: %v", e.Op, target, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s error", e.Op, target, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error, turning context cancellation into KindCanceled.
func NewError(kind ErrorKind, op, url string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Op: op, URL: url, Err: err}
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
