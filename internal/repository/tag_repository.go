package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Tag mirrors the 'tags' table. Labels are unique case-insensitively; the
// original casing of whoever created the tag first is preserved.
type Tag struct {
	ID        uint64
	Label     string
	CreatedAt time.Time
}

type TagRepo struct{ DB *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// Resolve maps a free-text label to its canonical tag, creating one when
// none exists. Two callers racing on the same new label both reach the
// INSERT; the label unique key rejects the loser, which then re-runs the
// lookup instead of failing.
func (r *TagRepo) Resolve(ctx context.Context, label string) (Tag, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Tag{}, ErrInvalidOperation
	}
	for {
		t, err := r.getByLabel(ctx, label)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Tag{}, err
		}
		res, err := r.DB.ExecContext(ctx, "INSERT INTO tags (label) VALUES (?)", label)
		if err != nil {
			if isDuplicate(err) {
				continue // lost the race, the lookup will find it now
			}
			return Tag{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: uint64(id), Label: label}, nil
	}
}

func (r *TagRepo) getByLabel(ctx context.Context, label string) (Tag, error) {
	var t Tag
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, label, created_at FROM tags WHERE LOWER(label)=LOWER(?) LIMIT 1",
		label).Scan(&t.ID, &t.Label, &t.CreatedAt)
	return t, err
}
