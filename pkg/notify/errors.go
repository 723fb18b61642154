package notify

import "errors"

var (
	// ErrResolveRecipients is returned when a relationship query fails;
	// the whole fan-out for that trigger is aborted.
	ErrResolveRecipients = errors.New("notify: failed to resolve recipient candidates")

	// ErrFetchPreferences is returned when the batched preference fetch
	// fails; the whole fan-out for that trigger is aborted.
	ErrFetchPreferences = errors.New("notify: failed to fetch notification preferences")

	// ErrWriteNotifications is returned when the batched insert fails.
	// The engine never retries; the records for that trigger are lost.
	ErrWriteNotifications = errors.New("notify: failed to write notifications")

	// ErrUnknownClaimStatus is returned for a claim decision that is
	// neither approved nor rejected.
	ErrUnknownClaimStatus = errors.New("notify: unknown claim status")
)
