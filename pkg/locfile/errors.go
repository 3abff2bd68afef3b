package locfile

import "errors"

var (
	// ErrResourceNotFound means neither the requested-language file nor the
	// default-language file could be loaded. Construction never produces a
	// store alongside this error.
	ErrResourceNotFound = errors.New("resource file not found")

	// ErrMalformedResource means a located file violates the section/key
	// contract, e.g. a non-integer key under [error_codes]. During
	// construction a malformed file is treated as missing; Lint surfaces it
	// directly.
	ErrMalformedResource = errors.New("malformed resource file")

	// ErrUnknownErrorCode means the looked-up code has no entry.
	ErrUnknownErrorCode = errors.New("unknown error code")

	// ErrUnknownMessageKey means the looked-up message key has no entry.
	ErrUnknownMessageKey = errors.New("unknown message key")
)
