package fmp4

import "errors"

// Decode errors for malformed or unsupported fragment records. All of them
// are returned as values; a bad record never aborts the process, the caller
// decides whether to skip the enclosing fragment or give up on the file.
var (
	// ErrConflictingFlags is returned when a track run sets both
	// first-sample-flags-present and sample-flags-present. The format
	// defines these as mutually exclusive: the override applies to sample
	// 0 only, all later samples must fall back to the tfhd/trex defaults.
	ErrConflictingFlags = errors.New("sample-flags-present and first-sample-flags-present are both set")

	// ErrFirstSampleFlagsUnsupported is returned for any run that carries
	// first-sample-flags. Decoding such runs is not implemented; failing
	// here beats silently ignoring the override and corrupting sync-sample
	// detection downstream.
	ErrFirstSampleFlagsUnsupported = errors.New("track runs with first-sample-flags are not supported")

	// ErrSampleCountLimit is returned when a run declares more samples
	// than its payload can hold, or more than the configured maximum. The
	// count comes straight from the stream and must not drive allocation.
	ErrSampleCountLimit = errors.New("sample count exceeds limit")
)
