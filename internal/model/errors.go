package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure absorbed somewhere below the aggregation driver
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport_error" // Network failure or timeout
	KindUnsupported    ErrorKind = "unsupported"     // Publisher host has no extraction rule
	KindNotFound       ErrorKind = "not_found"       // Rule matched but container absent
	KindMalformedEntry ErrorKind = "malformed_entry" // Citation missing required fields
	KindPairFailure    ErrorKind = "pair_failure"    // Whole listing page could not be processed
)

// ErrNoReference is returned when the query embedding could not be computed
var ErrNoReference = errors.New("reference embedding unavailable")

// PairError describes why a (venue, year) pair contributed nothing
type PairError struct {
	Kind  ErrorKind
	Venue string
	Year  int
	Err   error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s %d: %s: %v", e.Venue, e.Year, e.Kind, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a PairError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var pe *PairError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// AbstractStatus is the outcome of an abstract retrieval
type AbstractStatus int

const (
	AbstractFound AbstractStatus = iota
	AbstractNotFound
	AbstractUnsupported
	AbstractTransportError
)

func (s AbstractStatus) String() string {
	switch s {
	case AbstractFound:
		return "found"
	case AbstractNotFound:
		return "not_found"
	case AbstractUnsupported:
		return "unsupported"
	case AbstractTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Kind maps a non-found status onto the error taxonomy
func (s AbstractStatus) Kind() ErrorKind {
	switch s {
	case AbstractUnsupported:
		return KindUnsupported
	case AbstractTransportError:
		return KindTransport
	case AbstractNotFound:
		return KindNotFound
	default:
		return ""
	}
}

// Sentinel texts carried by non-found abstracts
const (
	AbstractNotFoundText    = "Abstract not found"
	AbstractUnsupportedText = "Unsupported DOI domain"
)

// Abstract is the retriever's result
type Abstract struct {
	Text   string         `json:"text"`
	Status AbstractStatus `json:"status"`
}

// OK reports whether the text is a real abstract
func (a Abstract) OK() bool {
	return a.Status == AbstractFound
}
