package entity

import "errors"

// Sentinel errors for the taxonomy described in spec.md §7. Each maps to a
// synchronous HTTP status at the C7 boundary, or to an Error callback once a
// job has started executing.
var (
	// ErrValidation marks an unrecognized ref or ill-formed request; surfaced
	// synchronously as 400 "validation_failed".
	ErrValidation = errors.New("validation failed")

	// ErrQueueFull marks back-pressure rejection; surfaced synchronously as
	// 429 "queue_full".
	ErrQueueFull = errors.New("queue full")

	// ErrAuthRejected marks that every credential scheme in the fallback
	// chain was rejected by the hosting platform.
	ErrAuthRejected = errors.New("all authentication methods rejected")

	// ErrFetch marks a network/HTTP/extraction failure while resolving or
	// downloading a repository archive.
	ErrFetch = errors.New("fetch failed")

	// ErrRuleCompile marks a rule whose pattern failed to compile; the rule
	// is dropped, not fatal to the catalog load.
	ErrRuleCompile = errors.New("rule pattern failed to compile")

	// ErrNoCredentials marks that an auth method has no usable credentials
	// configured and should be skipped rather than attempted.
	ErrNoCredentials = errors.New("no credentials configured for this auth method")
)
