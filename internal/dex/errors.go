package dex

import (
	"errors"
	"fmt"
)

// Kind classifies build failures.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindUnsupportedVenue Kind = "unsupported_venue"
	KindVenueQuote       Kind = "venue_quote"
	KindCompile          Kind = "compile"
	KindTransientNetwork Kind = "transient_network"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrValidation       = errors.New("validation error")
	ErrUnsupportedVenue = errors.New("unsupported venue")
	ErrVenueQuote       = errors.New("venue quote error")
	ErrCompile          = errors.New("compile error")
	ErrTransientNetwork = errors.New("transient network error")
)

var kindSentinels = map[Kind]error{
	KindValidation:       ErrValidation,
	KindUnsupportedVenue: ErrUnsupportedVenue,
	KindVenueQuote:       ErrVenueQuote,
	KindCompile:          ErrCompile,
	KindTransientNetwork: ErrTransientNetwork,
}

// Error is the structured failure returned by the build pipeline.
type Error struct {
	Kind  Kind
	Venue Venue
	Op    string
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Venue != "" {
		msg += " [" + string(e.Venue) + "]"
	}
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel, so errors.Is(err, ErrVenueQuote) works on wrapped errors.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

func NewUnsupportedVenueError(token string, side Side) error {
	return &Error{Kind: KindUnsupportedVenue, Err: fmt.Errorf("no venue can %s token %s", side, token)}
}

func NewVenueQuoteError(venue Venue, op string, err error) error {
	return &Error{Kind: KindVenueQuote, Venue: venue, Op: op, Err: err}
}

func NewCompileError(op string, err error) error {
	return &Error{Kind: KindCompile, Op: op, Err: err}
}

func NewTransientNetworkError(op string, err error) error {
	return &Error{Kind: KindTransientNetwork, Op: op, Err: err}
}
