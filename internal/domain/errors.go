package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Resolution errors
	ErrCountryNotFound = errors.New("country not found")
	ErrNoSelection     = errors.New("no region selected")

	// Configuration errors (fatal to a generation run)
	ErrSerialOverflow    = errors.New("serial digits do not fit in the local part")
	ErrInvalidPolicy     = errors.New("invalid serial policy")
	ErrInvalidRequest    = errors.New("invalid generation request")
	ErrUnrealisticLength = errors.New("local-part length is not a possible length for region")

	// Per-candidate rejections (never surfaced by the generator)
	ErrInvalidNumber   = errors.New("number is not valid for region")
	ErrDuplicateNumber = errors.New("number already generated")

	// Export errors
	ErrNothingToExport = errors.New("no valid numbers generated")
	ErrColumnMissing   = errors.New("column not found in CSV header")
	ErrUnknownFormat   = errors.New("unknown export format")
)
