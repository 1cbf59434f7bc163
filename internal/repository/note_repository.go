package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smartromaric/notes-suite/internal/access"
)

// Note mirrors the 'notes' table. Tags carries the attached labels and is
// populated by the list/get helpers, not by the row scan itself.
type Note struct {
	ID         uint64
	OwnerID    uint64
	Title      string
	ContentMD  string
	Visibility access.Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Tags       []string
}

// NoteRepo encapsulates note persistence, tag attachment and the filtered
// list queries. Visibility transitions that depend on shares or public
// links live in ShareRepo and PublicLinkRepo; this repo only stores what
// the owner writes directly.
type NoteRepo struct {
	DB   *sql.DB
	Tags *TagRepo
}

func NewNoteRepo(db *sql.DB, tags *TagRepo) *NoteRepo { return &NoteRepo{DB: db, Tags: tags} }

// Create inserts a note for its owner and attaches the resolved tags.
// Tag labels are resolved through the tag resolver before the note
// transaction starts, so an empty label list never blocks note creation.
func (r *NoteRepo) Create(ctx context.Context, ownerID uint64, title, content string, vis access.Visibility, tagLabels []string) (*Note, error) {
	tagIDs, labels, err := r.resolveLabels(ctx, tagLabels)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO notes (owner_id, title, content_md, visibility) VALUES (?,?,?,?)",
		ownerID, title, content, string(vis))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	noteID := uint64(id)

	for _, tagID := range tagIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO note_tags (note_id, tag_id) VALUES (?,?)", noteID, tagID); err != nil {
			return nil, err
		}
	}

	n := &Note{}
	if err = tx.QueryRowContext(ctx, noteColumns+" FROM notes n WHERE n.id=?", noteID).
		Scan(scanNoteDest(n)...); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	n.Tags = labels
	return n, nil
}

// Update rewrites title and content, optionally the visibility tier, and,
// when tagLabels is non-nil, replaces the full tag set (an empty slice
// detaches everything — replace semantics, not a merge). The note row is
// located by (id, owner_id) in one scoped query; a foreign id therefore
// collapses to ErrNotFound whether it exists or not.
func (r *NoteRepo) Update(ctx context.Context, noteID, ownerID uint64, title, content string, vis access.Visibility, tagLabels *[]string) (*Note, error) {
	var tagIDs []uint64
	if tagLabels != nil {
		ids, _, err := r.resolveLabels(ctx, *tagLabels)
		if err != nil {
			return nil, err
		}
		tagIDs = ids
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
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
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if vis != "" {
		_, err = tx.ExecContext(ctx,
			"UPDATE notes SET title=?, content_md=?, visibility=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
			title, content, string(vis), noteID)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE notes SET title=?, content_md=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
			title, content, noteID)
	}
	if err != nil {
		return nil, err
	}

	if tagLabels != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id=?", noteID); err != nil {
			return nil, err
		}
		for _, tagID := range tagIDs {
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO note_tags (note_id, tag_id) VALUES (?,?)", noteID, tagID); err != nil {
				return nil, err
			}
		}
	}

	n := &Note{}
	if err = tx.QueryRowContext(ctx, noteColumns+" FROM notes n WHERE n.id=?", noteID).
		Scan(scanNoteDest(n)...); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, []*Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a note owned by the caller together with its note_tags,
// shares and public links, all in one transaction.
func (r *NoteRepo) Delete(ctx context.Context, noteID, ownerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
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
		return err
	}
	if err != nil {
		return err
	}

	for _, q := range []string{
		"DELETE FROM note_tags WHERE note_id=?",
		"DELETE FROM shares WHERE note_id=?",
		"DELETE FROM public_links WHERE note_id=?",
		"DELETE FROM notes WHERE id=?",
	} {
		if _, err = tx.ExecContext(ctx, q, noteID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByIDAndOwner fetches a note only when it belongs to the owner.
func (r *NoteRepo) GetByIDAndOwner(ctx context.Context, noteID, ownerID uint64) (*Note, error) {
	n := &Note{}
	err := r.DB.QueryRowContext(ctx,
		noteColumns+" FROM notes n WHERE n.id=? AND n.owner_id=?", noteID, ownerID).
		Scan(scanNoteDest(n)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, []*Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// GetByIDForUser fetches a note the user may read: their own, or one
// shared with them. Ownership and share access are resolved in a single
// query so a note the user cannot see is indistinguishable from a note
// that does not exist.
func (r *NoteRepo) GetByIDForUser(ctx context.Context, noteID, userID uint64) (*Note, error) {
	n := &Note{}
	err := r.DB.QueryRowContext(ctx,
		noteColumns+` FROM notes n
		 LEFT JOIN shares s ON s.note_id = n.id AND s.recipient_id = ?
		 WHERE n.id = ? AND (n.owner_id = ? OR s.recipient_id = ?)`,
		userID, noteID, userID, userID).
		Scan(scanNoteDest(n)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, []*Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// ListOptions narrows and pages the note list queries. Query, Tag and
// Visibility are independently optional and combined with AND.
type ListOptions struct {
	UserID        uint64
	IncludeShared bool
	Query         string
	Tag           string
	Visibility    access.Visibility
	Page          int // zero-based
	Size          int
}

// List returns one page of notes visible in the requested scope plus the
// total number of matches, ordered by updated_at descending with id as a
// deterministic tiebreaker.
func (r *NoteRepo) List(ctx context.Context, opts ListOptions) ([]*Note, int, error) {
	base, where, args := buildNoteListQuery(opts)

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT n.id) "+base+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]interface{}{}, args...), opts.Size, opts.Page*opts.Size)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DISTINCT "+noteColumnList+" "+base+where+
			" ORDER BY n.updated_at DESC, n.id DESC LIMIT ? OFFSET ?", listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		n := &Note{}
		if err := rows.Scan(scanNoteDest(n)...); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadTags(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

const noteColumnList = "n.id, n.owner_id, n.title, n.content_md, n.visibility, n.created_at, n.updated_at"
const noteColumns = "SELECT " + noteColumnList

func scanNoteDest(n *Note) []interface{} {
	return []interface{}{&n.ID, &n.OwnerID, &n.Title, &n.ContentMD, &n.Visibility, &n.CreatedAt, &n.UpdatedAt}
}

// buildNoteListQuery assembles the FROM/JOIN block and WHERE clause for
// List. Kept separate from the executing method so the filter
// combinatorics can be exercised without a database.
func buildNoteListQuery(opts ListOptions) (base, where string, args []interface{}) {
	var b strings.Builder
	b.WriteString("FROM notes n")
	if opts.Tag != "" {
		b.WriteString(" JOIN note_tags nt ON nt.note_id = n.id JOIN tags t ON t.id = nt.tag_id")
	}

	var conds []string
	if opts.IncludeShared {
		b.WriteString(" LEFT JOIN shares s ON s.note_id = n.id AND s.recipient_id = ?")
		args = append(args, opts.UserID)
		conds = append(conds, "(n.owner_id = ? OR s.recipient_id = ?)")
		args = append(args, opts.UserID, opts.UserID)
	} else {
		conds = append(conds, "n.owner_id = ?")
		args = append(args, opts.UserID)
	}
	if opts.Query != "" {
		conds = append(conds, "LOWER(n.title) LIKE LOWER(CONCAT('%', ?, '%'))")
		args = append(args, opts.Query)
	}
	if opts.Visibility != "" {
		conds = append(conds, "n.visibility = ?")
		args = append(args, string(opts.Visibility))
	}
	if opts.Tag != "" {
		conds = append(conds, "t.label = ?")
		args = append(args, opts.Tag)
	}
	return b.String(), " WHERE " + strings.Join(conds, " AND "), args
}

// loadTags fills Note.Tags for every note in one IN query.
func (r *NoteRepo) loadTags(ctx context.Context, notes []*Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[uint64]*Note, len(notes))
	placeholders := make([]string, 0, len(notes))
	args := make([]interface{}, 0, len(notes))
	for _, n := range notes {
		n.Tags = []string{}
		byID[n.ID] = n
		placeholders = append(placeholders, "?")
		args = append(args, n.ID)
	}
	q := fmt.Sprintf(`SELECT nt.note_id, t.label
		 FROM note_tags nt JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id IN (%s) ORDER BY t.label`, strings.Join(placeholders, ","))
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var noteID uint64
		var label string
		if err := rows.Scan(&noteID, &label); err != nil {
			return err
		}
		if n, ok := byID[noteID]; ok {
			n.Tags = append(n.Tags, label)
		}
	}
	return rows.Err()
}

// resolveLabels maps labels through the tag resolver, dropping blanks and
// duplicates (case-insensitively) while preserving first-seen casing.
func (r *NoteRepo) resolveLabels(ctx context.Context, labels []string) ([]uint64, []string, error) {
	seen := make(map[string]bool, len(labels))
	var ids []uint64
	var out []string
	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		t, err := r.Tags.Resolve(ctx, label)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, t.ID)
		out = append(out, t.Label)
	}
	return ids, out, nil
}
