package domain

import "time"

// OutcomeKind classifies the result of resolving one account.
type OutcomeKind int

const (
	// OutcomeCreated means the account was newly provisioned.
	OutcomeCreated OutcomeKind = iota

	// OutcomeAlreadyExists means upstream reported the address as taken.
	// Treated as success: the identity exists, which is the goal.
	OutcomeAlreadyExists

	// OutcomeRateLimited means upstream throttled the request. Retryable.
	OutcomeRateLimited

	// OutcomeTransient means a network or 5xx class failure. Retryable.
	OutcomeTransient

	// OutcomePermanent means a non-retryable failure.
	OutcomePermanent
)

// String returns the snake_case name used in logs and reports.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTransient:
		return "transient_error"
	case OutcomePermanent:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one account resolution.
// Exactly one kind holds; the remaining fields qualify it.
type Outcome struct {
	Kind OutcomeKind

	// UpstreamID is the identifier assigned by the service, when returned.
	// Set only for OutcomeCreated.
	UpstreamID string

	// RetryAfter is the upstream wait hint, when present.
	// Set only for OutcomeRateLimited.
	RetryAfter time.Duration

	// Diagnostic captures status and body detail for failures.
	Diagnostic string
}

// Created returns a success outcome for a newly provisioned account.
func Created(upstreamID string) Outcome {
	return Outcome{Kind: OutcomeCreated, UpstreamID: upstreamID}
}

// AlreadyExists returns the idempotent-duplicate outcome.
func AlreadyExists() Outcome {
	return Outcome{Kind: OutcomeAlreadyExists}
}

// RateLimited returns a throttled outcome with an optional wait hint.
func RateLimited(retryAfter time.Duration) Outcome {
	return Outcome{Kind: OutcomeRateLimited, RetryAfter: retryAfter}
}

// Transient returns a retryable network/server failure outcome.
func Transient(diagnostic string) Outcome {
	return Outcome{Kind: OutcomeTransient, Diagnostic: diagnostic}
}

// Permanent returns a non-retryable failure outcome.
func Permanent(diagnostic string) Outcome {
	return Outcome{Kind: OutcomePermanent, Diagnostic: diagnostic}
}

// Success reports whether the identity exists upstream after this outcome.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeCreated || o.Kind == OutcomeAlreadyExists
}

// Retryable reports whether another attempt could change the outcome.
func (o Outcome) Retryable() bool {
	return o.Kind == OutcomeRateLimited || o.Kind == OutcomeTransient
}
