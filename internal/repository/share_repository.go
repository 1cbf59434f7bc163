package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartromaric/notes-suite/internal/access"
)

// Share mirrors the 'shares' table: one row grants one user read access
// to one note. (note_id, recipient_id) is unique. RecipientEmail is
// filled by listing queries for presentation.
type Share struct {
	ID             uint64
	NoteID         uint64
	RecipientID    uint64
	RecipientEmail string
	Permission     string
	CreatedAt      time.Time
}

// PermissionRead is the only permission level shares currently carry.
const PermissionRead = "READ"

type ShareRepo struct{ DB *sql.DB }

func NewShareRepo(db *sql.DB) *ShareRepo { return &ShareRepo{DB: db} }

// Create grants recipientID read access to the note. The ownership check,
// the share insert and the PRIVATE→SHARED promotion commit atomically:
// the note row is locked first so a concurrent reader never sees a share
// without the matching visibility. A duplicate (note, recipient) pair is
// rejected by the unique key and surfaces as ErrConflict.
func (r *ShareRepo) Create(ctx context.Context, noteID, ownerID, recipientID uint64) (Share, error) {
	var s Share
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return s, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var vis access.Visibility
	err = tx.QueryRowContext(ctx,
		"SELECT visibility FROM notes WHERE id=? AND owner_id=? FOR UPDATE",
		noteID, ownerID).Scan(&vis)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return s, err
	}
	if err != nil {
		return s, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO shares (note_id, recipient_id, permission) VALUES (?,?,?)",
		noteID, recipientID, PermissionRead)
	if err != nil {
		if isDuplicate(err) {
			err = ErrConflict
		}
		return s, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return s, err
	}

	// A PUBLIC note stays PUBLIC; only PRIVATE promotes to SHARED.
	if vis == access.VisibilityPrivate {
		if _, err = tx.ExecContext(ctx,
			"UPDATE notes SET visibility=? WHERE id=?",
			string(access.VisibilityShared), noteID); err != nil {
			return s, err
		}
	}
	if err = tx.Commit(); err != nil {
		return s, err
	}
	return Share{
		ID:          uint64(id),
		NoteID:      noteID,
		RecipientID: recipientID,
		Permission:  PermissionRead,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Delete removes a share identified by id, provided its note belongs to
// ownerID, and recomputes the note's visibility in the same transaction.
// When the last share goes the note drops to PRIVATE; live public links
// are deliberately not consulted here, so a note can end up flagged
// PRIVATE while a link keeps serving it (see DESIGN.md).
func (r *ShareRepo) Delete(ctx context.Context, shareID, ownerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var noteID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT s.note_id FROM shares s
		 JOIN notes n ON n.id = s.note_id
		 WHERE s.id=? AND n.owner_id=? FOR UPDATE`,
		shareID, ownerID).Scan(&noteID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return err
	}
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM shares WHERE id=?", shareID); err != nil {
		return err
	}

	var remaining int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shares WHERE note_id=?", noteID).Scan(&remaining); err != nil {
		return err
	}
	if remaining == 0 {
		if _, err = tx.ExecContext(ctx,
			"UPDATE notes SET visibility=? WHERE id=?",
			string(access.Recompute(false, false)), noteID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListForNote returns the shares of a note owned by the caller, including
// each recipient's email for display.
func (r *ShareRepo) ListForNote(ctx context.Context, noteID, ownerID uint64) ([]Share, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.note_id, s.recipient_id, u.email, s.permission, s.created_at
		 FROM shares s
		 JOIN notes n ON n.id = s.note_id
		 JOIN users u ON u.id = s.recipient_id
		 WHERE s.note_id=? AND n.owner_id=?
		 ORDER BY s.id`,
		noteID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Share{}
	for rows.Next() {
		var s Share
		if err := rows.Scan(&s.ID, &s.NoteID, &s.RecipientID, &s.RecipientEmail, &s.Permission, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
