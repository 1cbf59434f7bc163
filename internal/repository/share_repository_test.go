package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCreate_DuplicateRecipientLeavesShareSetUnchanged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewShareRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT visibility FROM notes WHERE id=? AND owner_id=? FOR UPDATE")).
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"visibility"}).AddRow("SHARED"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shares (note_id, recipient_id, permission) VALUES (?,?,?)")).
		WithArgs(uint64(7), uint64(2), PermissionRead).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7-2' for key 'uq_shares_note_recipient'"))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), 7, 1, 2)
	assert.ErrorIs(t, err, ErrConflict)

	// The rollback above is the whole point: no visibility update ran and
	// nothing was committed, so the existing share set is untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShareCreate_ForeignNoteCollapsesToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewShareRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT visibility FROM notes WHERE id=? AND owner_id=? FOR UPDATE")).
		WithArgs(uint64(7), uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"visibility"}))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), 7, 99, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
