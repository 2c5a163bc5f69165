package payments

import "errors"

var (
	// ErrAuthentication rejects a delivery whose signature does not
	// match the raw body. No state is touched.
	ErrAuthentication = errors.New("webhook signature verification failed")
	// ErrBadPayload rejects payloads that cannot be decoded or whose
	// notes metadata fails strict parsing.
	ErrBadPayload = errors.New("malformed webhook payload")
	// ErrNotFound means the booking or tour referenced by the event
	// does not exist. Flagged for manual review, never retried.
	ErrNotFound = errors.New("record not found")
	// ErrAmountMismatch means the captured amount does not equal the
	// expected charge. The booking stays pending; no money moves.
	ErrAmountMismatch = errors.New("captured amount does not match expected amount")
	// ErrOverbooked means the tour ran out of seats at confirmation
	// time. The booking transitions to failed.
	ErrOverbooked = errors.New("insufficient remaining occupancy")
	// ErrNotPayable means the booking was canceled before the payment
	// arrived; money moved for a dead booking needs an operator.
	ErrNotPayable = errors.New("booking is no longer payable")
	// ErrAlreadyPaid means the booking is paid under a different
	// provider transaction id. Data integrity problem, surfaced as a
	// conflict.
	ErrAlreadyPaid = errors.New("booking already paid with another transaction")
)
