package reservation

import "errors"

var (
	// ErrSlotContended is returned when the reservation lock could not be
	// acquired. Retryable: the caller should re-query availability.
	ErrSlotContended = errors.New("slot contended")

	// ErrSlotNoLongerAvailable is returned when re-validation under the lock
	// finds the slot taken. Retryable the same way.
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")

	// ErrTransactionFailed is returned when the storage commit fails.
	// Retryable with the same idempotency key.
	ErrTransactionFailed = errors.New("booking transaction failed")

	// ErrFingerprintMismatch is returned when the supplied fingerprint does
	// not match the slot coordinates. Caller error, never retried.
	ErrFingerprintMismatch = errors.New("slot fingerprint mismatch")

	// ErrBookingStarted is returned when a cancellation arrives at or after
	// the booking's start time.
	ErrBookingStarted = errors.New("booking already started")
)
