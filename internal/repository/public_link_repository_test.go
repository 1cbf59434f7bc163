package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolveTokenPattern pins the resolve query shape: the expiry predicate
// must run inside the same statement as the token match, so an expired
// link and a never-issued token both come back as zero rows.
const resolveTokenPattern = `(?s)FROM public_links pl.*pl\.token=\?.*\(pl\.expires_at IS NULL OR pl\.expires_at > UTC_TIMESTAMP\(\)\)`

func TestResolveToken_ExpiredIndistinguishableFromUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicLinkRepo(db)
	emptyNote := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "owner_id", "title", "content_md", "visibility", "created_at", "updated_at"})
	}

	// Token of a link whose expires_at has passed: the predicate filters
	// the row out server-side.
	mock.ExpectQuery(resolveTokenPattern).
		WithArgs("expiredexpiredexpiredexpiredexpi").
		WillReturnRows(emptyNote())
	_, errExpired := repo.ResolveToken(context.Background(), "expiredexpiredexpiredexpiredexpi")

	// Token that was never issued.
	mock.ExpectQuery(resolveTokenPattern).
		WithArgs("unknownunknownunknownunknownunkn").
		WillReturnRows(emptyNote())
	_, errUnknown := repo.ResolveToken(context.Background(), "unknownunknownunknownunknownunkn")

	assert.ErrorIs(t, errExpired, ErrNotFound)
	assert.ErrorIs(t, errUnknown, ErrNotFound)
	assert.Equal(t, errUnknown, errExpired, "caller must not be able to tell expired from never-issued")
	assert.NoError(t, mock.ExpectationsWereMet())
}
