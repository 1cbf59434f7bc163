// Package repository defines the error kinds shared across repositories.
// Handlers translate these into HTTP responses: ErrNotFound becomes 404,
// ErrConflict 409 and ErrInvalidOperation 400. Note that ErrNotFound also
// covers "exists but not yours": every mutating query is scoped by
// (id, owner_id), so an unauthorized id is indistinguishable from a
// missing one and never leaks existence to non-owners.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entity is absent or the caller has no
// visibility into its existence.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on uniqueness violations: duplicate email, tag
// label, public token or (note, recipient) share pair.
var ErrConflict = errors.New("conflict")

// ErrInvalidOperation is returned for semantically disallowed requests,
// such as sharing a note with its own owner.
var ErrInvalidOperation = errors.New("invalid operation")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). Unique constraints are the final arbiter for races, so
// several repositories map this onto ErrConflict or an internal retry.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
