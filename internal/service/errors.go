package service

import (
	"context"
	"errors"

	"github.com/logshare/backend/internal/encoding"
	"github.com/logshare/backend/internal/logid"
	"github.com/logshare/backend/internal/storage"
)

// Kind classifies an error into the vocabulary of the external surfaces.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// KindOf maps err to its Kind. Validation and not-found take precedence over
// unavailability, so a typed storage error is never reported as an outage.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, logid.ErrInvalidFormat),
		errors.Is(err, storage.ErrEmpty),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrTooManyLines),
		errors.Is(err, encoding.ErrUnsupported),
		errors.Is(err, encoding.ErrLimitExceeded):
		return KindValidation
	case errors.Is(err, storage.ErrNotFound):
		return KindNotFound
	case errors.Is(err, storage.ErrExhausted),
		errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	default:
		return KindInternal
	}
}
