package config

import "errors"

var (
	// ErrNoStartURL is returned when no start URL is provided
	ErrNoStartURL = errors.New("no start URL provided")
	// ErrInvalidStartURL is returned when the start URL cannot be parsed or is not http(s)
	ErrInvalidStartURL = errors.New("start URL must be a valid http or https URL")
	// ErrInvalidRenderTimeout is returned when render timeout is not greater than 0
	ErrInvalidRenderTimeout = errors.New("render_timeout must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrEmptyOutputDir is returned when the output directory is empty
	ErrEmptyOutputDir = errors.New("output_dir cannot be empty")
	// ErrInvalidPageLimit is returned when max_pages is negative
	ErrInvalidPageLimit = errors.New("max_pages cannot be negative")
)
