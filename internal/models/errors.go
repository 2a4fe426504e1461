package models

import "errors"

// Error taxonomy for the orchestration layer. Every intent handler
// resolves to exactly one of these; nothing else escapes to callers.
var (
	// ErrValidation marks missing or malformed local input. Raised before
	// any network call is made.
	ErrValidation = errors.New("validation failed")

	// ErrAccountNotFound marks an expected remote account that does not
	// exist yet. Callers interpret it as "bootstrap needed", not as a
	// fatal failure.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMintResolution marks a failed token mint lookup.
	ErrMintResolution = errors.New("mint resolution failed")

	// ErrAuthorization marks an intent attempted without the required
	// role (no connected wallet, or not the lottery authority).
	ErrAuthorization = errors.New("not authorized")

	// ErrSubmission marks a transaction that was rejected by the ledger
	// or failed to confirm.
	ErrSubmission = errors.New("submission failed")

	// ErrNotEligible marks a prize claim without a winning ticket.
	ErrNotEligible = errors.New("not eligible to claim")
)
