package services

import (
	"errors"
	"fmt"
)

// Kind classifies failures so handlers can map them to a status in one place.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidFormat
	KindUnauthorized
	KindNotFound
	KindStorageUnavailable
	KindInvalidRepositoryURL
	KindReadmeUnavailable
	KindLLMUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidFormat:
		return "invalid_format"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindInvalidRepositoryURL:
		return "invalid_repository_url"
	case KindReadmeUnavailable:
		return "readme_unavailable"
	case KindLLMUnavailable:
		return "llm_unavailable"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns KindUnknown for errors that did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the client-safe message of a kinded error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
