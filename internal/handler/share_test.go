package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartromaric/notes-suite/internal/repository"
)

func TestShareWithUser_OwnershipCheckedBeforeRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := &ShareHandler{
		Notes:  repository.NewNoteRepo(db, repository.NewTagRepo(db)),
		Users:  repository.NewUserRepo(db),
		Shares: repository.NewShareRepo(db),
		Links:  repository.NewPublicLinkRepo(db),
	}

	// Note 7 is not owned by user 1. Only the scoped note select may run;
	// the recipient email must never be looked up, so a non-owner cannot
	// probe which emails have accounts.
	mock.ExpectQuery(`FROM notes n WHERE n\.id=\? AND n\.owner_id=\?`).
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/notes/7/share/user",
		strings.NewReader(`{"email":"bob@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user_id", uint64(1))

	require.NoError(t, h.ShareWithUser(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "note not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
