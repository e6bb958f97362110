package crawler

import "errors"

var (
	// ErrUnsupportedScheme is returned for data: and other non-fetchable URIs
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrBadStatus is returned when an asset fetch gets a non-success status
	ErrBadStatus = errors.New("non-success response status")
	// ErrAlreadyFailed is returned for URLs whose fetch failed earlier in the run
	ErrAlreadyFailed = errors.New("fetch already failed for this URL")
	// ErrNoFetcher is returned when the crawler is constructed without a fetch capability
	ErrNoFetcher = errors.New("no fetch capability configured")
	// ErrNoRenderer is returned when the crawler is constructed without a render capability
	ErrNoRenderer = errors.New("no render capability configured")
)
