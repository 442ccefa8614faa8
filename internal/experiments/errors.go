package experiments

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the request could not be opened or sent.
	ErrTransport = errors.New("transport error")
	// ErrHTTPStatus means the endpoint answered with a status other than 200.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrMalformed means a configuration document or enabled-set payload
	// could not be decoded.
	ErrMalformed = errors.New("malformed response")
	// ErrQuery means the host could not answer the enabled-set request.
	ErrQuery = errors.New("enabled experiments query failed")
	// ErrStorage means the host row store rejected a write.
	ErrStorage = errors.New("row storage failed")
)

// FetchError describes a failed configuration fetch.
type FetchError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == ErrHTTPStatus:
		return fmt.Sprintf("request to %s returned status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.URL)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
