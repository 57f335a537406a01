package contentapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types
var (
	// ErrNotFound indicates the requested resource does not exist or is not
	// visible to the caller
	ErrNotFound = errors.New("resource not found")

	// ErrGone indicates the resource existed but has been archived
	ErrGone = errors.New("resource gone")

	// ErrUnprocessable indicates a required query value was missing or blank
	ErrUnprocessable = errors.New("unprocessable request")

	// ErrUnauthorised indicates an explicit edition was requested without
	// any authentication
	ErrUnauthorised = errors.New("authentication required")

	// ErrForbidden indicates the caller lacks the unpublished-access grant
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a downstream collaborator failed or timed out
	ErrUnavailable = errors.New("backend unavailable")

	// ErrInvalidPage indicates a page number outside the result set
	ErrInvalidPage = errors.New("invalid page")

	// ErrTagNotFound is returned by stores when no tag matches
	ErrTagNotFound = errors.New("tag not found")

	// ErrItemNotFound is returned by stores when no content item matches
	ErrItemNotFound = errors.New("content item not found")
)

// ResolutionError records which resolution step failed and for what subject.
type ResolutionError struct {
	Op      string
	Subject string
	Message string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func notFound(op, subject string) error {
	return &ResolutionError{Op: op, Subject: subject, Err: ErrNotFound}
}

func gone(op, subject string) error {
	return &ResolutionError{Op: op, Subject: subject, Err: ErrGone}
}

// Kind classifies an error for the response envelope.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindGone
	KindUnprocessable
	KindUnauthorised
	KindForbidden
	KindUnavailable
)

// KindOf maps err onto the error taxonomy. Store-level not-found errors and
// invalid pages are reported as KindNotFound.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrTagNotFound), errors.Is(err, ErrItemNotFound):
		return KindNotFound
	case errors.Is(err, ErrGone):
		return KindGone
	case errors.Is(err, ErrUnprocessable):
		return KindUnprocessable
	case errors.Is(err, ErrUnauthorised):
		return KindUnauthorised
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindGone:
		return http.StatusGone
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindUnauthorised:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Keyword returns the machine-readable status used in _response_info.status.
func (k Kind) Keyword() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindGone:
		return "gone"
	case KindUnprocessable:
		return "unprocessable"
	case KindUnauthorised:
		return "unauthorised"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}

// DefaultMessage returns the human-readable status message for the kind.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindNotFound:
		return "Resource not found"
	case KindGone:
		return "This item is no longer available"
	case KindUnprocessable:
		return "The request could not be processed"
	case KindUnauthorised:
		return "Edition parameter requires authentication"
	case KindForbidden:
		return "You must be authorized to use the edition parameter"
	case KindUnavailable:
		return "A necessary backend process was unavailable. Please try again soon."
	default:
		return "An internal error occurred"
	}
}

// MessageOf returns the most specific human-readable message carried by err.
func MessageOf(err error) string {
	var re *ResolutionError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return KindOf(err).DefaultMessage()
}
