package cache

import "errors"

// Sentinel errors surfaced by the engine, grouped by failure kind: invalid
// configuration, adoption failure, constructor failure or contract
// violation, and use after Close.
// Every failure is reported through an ordinary Go error so callers can
// errors.Is/errors.As instead of special-casing a nil return.
var (
	// ErrNilDescriptor is returned by New when called with a nil descriptor.
	ErrNilDescriptor = errors.New("subcache: nil family descriptor")

	// ErrIncompleteDescriptor is returned by New when one of the required
	// descriptor callbacks is nil.
	ErrIncompleteDescriptor = errors.New("subcache: descriptor is missing a required callback")

	// ErrInvalidBuckets is returned by New when the configured bucket count
	// is not positive. WithBuckets ignores non-positive requests and keeps
	// the default, so the options in this package never produce it.
	ErrInvalidBuckets = errors.New("subcache: bucket count must be > 0")

	// ErrAdoptFailed is returned by Get when the family's Adopt callback
	// reports failure for the staged key.
	ErrAdoptFailed = errors.New("subcache: key adoption failed")

	// ErrConstructFailed is returned by Get when the family's Construct
	// callback returns a non-nil error.
	ErrConstructFailed = errors.New("subcache: constructor failed")

	// ErrZeroSize indicates a family's Construct callback returned a
	// strictly-non-positive size without the cache being configured to
	// tolerate zero-weight entries for that family. The entry is torn down
	// and Get fails rather than silently admitting an unaccounted entry.
	ErrZeroSize = errors.New("subcache: constructor returned non-positive size")

	// ErrClientClosed is returned by Get when called with a client that has
	// already been destroyed.
	ErrClientClosed = errors.New("subcache: client is closed")

	// ErrCacheClosed is returned by Get and NewClient after Close has run.
	// Trim and Empty on a closed cache do nothing.
	ErrCacheClosed = errors.New("subcache: cache is closed")
)
