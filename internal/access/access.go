// Package access holds the pure visibility and permission rules for notes.
// It has no dependencies so that both the storage layer and tests can use
// it without dragging in database handles.
package access

// Visibility is the declared access tier of a note. It must always agree
// with the note's live share and public-link rows; the repositories keep it
// in sync by calling Recompute inside the same transaction that mutates
// those rows.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityShared  Visibility = "SHARED"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Valid reports whether v is one of the three known tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}

// Recompute derives the visibility tier a note must carry given its live
// share and public-link state. Both the share manager and the link manager
// call this after their mutation instead of duplicating the fallback rule.
func Recompute(hasActiveShares, hasActivePublicLink bool) Visibility {
	if hasActivePublicLink {
		return VisibilityPublic
	}
	if hasActiveShares {
		return VisibilityShared
	}
	return VisibilityPrivate
}

// Principal is the actor behind a request: an authenticated user or an
// anonymous holder of a public link token.
type Principal struct {
	UserID    uint64
	Anonymous bool
}

// CanRead reports whether the principal may read a note owned by ownerID.
// hasShare must be true when an active share row grants the principal
// access; viaActiveLink must be true only when the request arrived through
// a token already proven to resolve to this very note.
func CanRead(ownerID uint64, p Principal, hasShare, viaActiveLink bool) bool {
	if p.Anonymous {
		return viaActiveLink
	}
	return p.UserID == ownerID || hasShare
}

// CanWrite reports whether the principal may mutate a note owned by
// ownerID. Share recipients are read-only; there is no write delegation.
func CanWrite(ownerID uint64, p Principal) bool {
	return !p.Anonymous && p.UserID == ownerID
}
