package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartromaric/notes-suite/internal/access"
	"github.com/smartromaric/notes-suite/internal/utils"
)

// PublicLink mirrors the 'public_links' table. A link with a NULL expiry
// never expires; an expired link stays in the table and is filtered out
// lazily at resolve time (there is no background sweep).
type PublicLink struct {
	ID        uint64
	NoteID    uint64
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

type PublicLinkRepo struct{ DB *sql.DB }

func NewPublicLinkRepo(db *sql.DB) *PublicLinkRepo { return &PublicLinkRepo{DB: db} }

// tokenAttempts caps the mint-insert retry loop. A collision burns one
// attempt with probability rows/62^32, so hitting the cap in practice
// means the schema or the randomness source is broken, not bad luck.
const tokenAttempts = 10

// Create mints a public link for a note owned by ownerID and sets the
// note PUBLIC unconditionally. Token uniqueness is enforced by the
// insert itself: a duplicate key redraws and retries, so there is no
// window between an existence check and the write.
func (r *PublicLinkRepo) Create(ctx context.Context, noteID, ownerID uint64, expiresAt *time.Time) (PublicLink, error) {
	var pl PublicLink
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return pl, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM notes WHERE id=? AND owner_id=? FOR UPDATE", noteID, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return pl, err
	}
	if err != nil {
		return pl, err
	}

	var linkID int64
	var token string
	for attempt := 0; ; attempt++ {
		token, err = utils.NewPublicToken()
		if err != nil {
			return pl, err
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			"INSERT INTO public_links (note_id, token, expires_at) VALUES (?,?,?)",
			noteID, token, expiresAt)
		if err == nil {
			linkID, err = res.LastInsertId()
			if err != nil {
				return pl, err
			}
			break
		}
		if isDuplicate(err) && attempt < tokenAttempts {
			continue
		}
		return pl, err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE notes SET visibility=? WHERE id=?",
		string(access.VisibilityPublic), noteID); err != nil {
		return pl, err
	}
	if err = tx.Commit(); err != nil {
		return pl, err
	}
	return PublicLink{
		ID:        uint64(linkID),
		NoteID:    noteID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Delete revokes a link identified by id, provided its note belongs to
// ownerID. When the last link goes, visibility falls back to SHARED if
// any share survives, else PRIVATE — atomically with the deletion.
func (r *PublicLinkRepo) Delete(ctx context.Context, linkID, ownerID uint64) error {
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
		`SELECT pl.note_id FROM public_links pl
		 JOIN notes n ON n.id = pl.note_id
		 WHERE pl.id=? AND n.owner_id=? FOR UPDATE`,
		linkID, ownerID).Scan(&noteID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return err
	}
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM public_links WHERE id=?", linkID); err != nil {
		return err
	}

	var remainingLinks int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM public_links WHERE note_id=?", noteID).Scan(&remainingLinks); err != nil {
		return err
	}
	if remainingLinks == 0 {
		var remainingShares int
		if err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM shares WHERE note_id=?", noteID).Scan(&remainingShares); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE notes SET visibility=? WHERE id=?",
			string(access.Recompute(remainingShares > 0, false)), noteID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResolveToken returns the note behind an active public token. Expired
// tokens and tokens that never existed produce the same ErrNotFound, so
// callers cannot probe link history.
func (r *PublicLinkRepo) ResolveToken(ctx context.Context, token string) (*Note, error) {
	n := &Note{}
	err := r.DB.QueryRowContext(ctx,
		noteColumns+` FROM public_links pl
		 JOIN notes n ON n.id = pl.note_id
		 WHERE pl.token=? AND (pl.expires_at IS NULL OR pl.expires_at > UTC_TIMESTAMP())
		 LIMIT 1`,
		token).Scan(scanNoteDest(n)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	repo := &NoteRepo{DB: r.DB}
	if err := repo.loadTags(ctx, []*Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// ListForNote returns the public links of a note owned by the caller.
func (r *PublicLinkRepo) ListForNote(ctx context.Context, noteID, ownerID uint64) ([]PublicLink, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT pl.id, pl.note_id, pl.token, pl.expires_at, pl.created_at
		 FROM public_links pl
		 JOIN notes n ON n.id = pl.note_id
		 WHERE pl.note_id=? AND n.owner_id=?
		 ORDER BY pl.id`,
		noteID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PublicLink{}
	for rows.Next() {
		var pl PublicLink
		var exp sql.NullTime
		if err := rows.Scan(&pl.ID, &pl.NoteID, &pl.Token, &exp, &pl.CreatedAt); err != nil {
			return nil, err
		}
		if exp.Valid {
			t := exp.Time
			pl.ExpiresAt = &t
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}
