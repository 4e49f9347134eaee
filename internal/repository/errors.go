// Package repository defines the data access layer and the sentinel error
// values reused across it. These sentinels allow higher layers such as
// handlers to distinguish between different failure scenarios and map each
// one to a stable error kind in the HTTP response, without leaking raw
// store errors to callers.
package repository

import "errors"

// ErrSessionNotFound is returned when the referenced ordering session does
// not exist. Handlers translate this into HTTP 404.
var ErrSessionNotFound = errors.New("session not found")

// ErrItemNotFound is returned when a submitted item id does not resolve to
// a catalog entry. Handlers translate this into HTTP 400.
var ErrItemNotFound = errors.New("menu item not found")

// ErrSelectionNotFound is returned when a member has no selection for the
// session. Read paths treat this as "no data" rather than a failure.
var ErrSelectionNotFound = errors.New("selection not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not control, such as closing someone else's session or
// reading a session of another group. Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSessionNotActive is returned when a state transition or a submission
// is attempted against a session that is no longer ACTIVE. Handlers
// translate this into HTTP 409 with the invalid_state kind.
var ErrSessionNotActive = errors.New("session is not active")

// ErrActiveSessionExists is returned when creating a session while the
// group already has an ACTIVE one. The condition is enforced by the
// unique index on (group_id, active), so two concurrent creators cannot
// both succeed. Handlers translate this into HTTP 409 with the conflict
// kind.
var ErrActiveSessionExists = errors.New("group already has an active session")

// ErrDeadlinePassed is returned when a selection is submitted after the
// session deadline. Handlers translate this into HTTP 410.
var ErrDeadlinePassed = errors.New("session deadline has passed")
