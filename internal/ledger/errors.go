package ledger

import "errors"

// Validation errors are checked before any storage access and are never
// partially applied.
var (
	// ErrInvalidLength occurs when a signup requests an unsupported seed
	// phrase length.
	ErrInvalidLength = errors.New("seed phrase length must be 12, 16 or 24")

	// ErrInvalidAmount occurs when an operation names a non-positive amount,
	// or a purchase too small to buy any coin units.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidPrice occurs when a coin quote is zero or negative.
	ErrInvalidPrice = errors.New("coin price must be positive")

	// ErrInvalidPassword occurs when a rotation supplies an empty password.
	ErrInvalidPassword = errors.New("password must not be empty")

	// ErrUnknownCurrency occurs when a deposit names a fiat currency the
	// wallet does not support.
	ErrUnknownCurrency = errors.New("unknown fiat currency")
)

// Expected, recoverable outcomes surfaced to the caller for retry or
// redirect; not logged as faults.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrCredentialNotFound = errors.New("credentials not found")
	ErrSeedNotFound       = errors.New("seed phrase not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrNoPendingTransfer  = errors.New("no pending transfer staged")
)

// ErrStorageTimeout occurs when a storage round-trip exceeds its bounded
// timeout. The operation is guaranteed to have made no partial write and is
// safe to retry.
var ErrStorageTimeout = errors.New("storage operation timed out")
