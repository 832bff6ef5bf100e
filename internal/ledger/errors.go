// Package ledger owns the lifecycle of device sessions: creation,
// time extensions, member additions, headcount settlement, completion
// and deletion.  Every price it folds into a session comes from the
// pricing package, always classified at the session's start time.
package ledger

import "errors"

// Sentinel errors form the failure taxonomy of the ledger.  Handlers
// compare with errors.Is and translate to HTTP status codes: not-found
// to 404, invalid-state to 409, validation to 400, the domain guards
// to 409/422.
var (
	// ErrSessionNotFound is returned for operations on unknown
	// session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidState is returned when an operation is not legal in
	// the session's current status, e.g. completing twice.
	ErrInvalidState = errors.New("session is not active")

	// ErrValidation wraps malformed or out-of-range input: negative
	// minutes, non-positive headcounts, unknown device kinds, unit
	// numbers outside the configured limits.
	ErrValidation = errors.New("invalid input")

	// ErrDeviceConflict is returned when a requested device unit is
	// already claimed by another active session.
	ErrDeviceConflict = errors.New("device unit already occupied")

	// ErrNoUnpaidHeads guards settlement division: a session whose
	// heads are all settled cannot be settled again.
	ErrNoUnpaidHeads = errors.New("no unpaid heads remain")

	// ErrTooManyHeads rejects settling more heads than remain
	// unpaid, which would push paidPeople past peopleCount.
	ErrTooManyHeads = errors.New("paying heads exceed unpaid heads")
)
