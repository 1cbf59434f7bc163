package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNote(t *testing.T) {
	longTag := strings.Repeat("x", 101)

	tests := []struct {
		name    string
		req     noteReq
		wantErr bool
	}{
		{"valid minimal", noteReq{Title: "abc"}, false},
		{"valid with visibility", noteReq{Title: "groceries", Visibility: "shared"}, false},
		{"title too short", noteReq{Title: "ab"}, true},
		{"title whitespace only", noteReq{Title: "   "}, true},
		{"title too long", noteReq{Title: strings.Repeat("t", 256)}, true},
		{"title at max", noteReq{Title: strings.Repeat("t", 255)}, false},
		{"content too long", noteReq{Title: "abc", ContentMD: strings.Repeat("c", 50001)}, true},
		{"content at max", noteReq{Title: "abc", ContentMD: strings.Repeat("c", 50000)}, false},
		{"bad visibility", noteReq{Title: "abc", Visibility: "FRIENDS"}, true},
		{"tag label too long", noteReq{Title: "abc", Tags: &[]string{longTag}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, msg := validateNote(tc.req)
			if tc.wantErr {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestValidateNote_CountsCharactersNotBytes(t *testing.T) {
	// 2 characters, 6 bytes: under the minimum
	_, _, msg := validateNote(noteReq{Title: "日本"})
	assert.NotEmpty(t, msg, "two-character title must be rejected regardless of byte length")

	// 255 characters, 510 bytes: exactly at the maximum
	_, _, msg = validateNote(noteReq{Title: strings.Repeat("é", 255)})
	assert.Empty(t, msg, "255-character multibyte title must be accepted")

	_, _, msg = validateNote(noteReq{Title: strings.Repeat("é", 256)})
	assert.NotEmpty(t, msg)

	_, _, msg = validateNote(noteReq{Title: "abc", ContentMD: strings.Repeat("日", 50000)})
	assert.Empty(t, msg, "50,000-character multibyte content must be accepted")

	_, _, msg = validateNote(noteReq{Title: "abc", ContentMD: strings.Repeat("日", 50001)})
	assert.NotEmpty(t, msg)

	_, _, msg = validateNote(noteReq{Title: "abc", Tags: &[]string{strings.Repeat("ü", 100)}})
	assert.Empty(t, msg, "100-character multibyte tag label must be accepted")
}

func TestValidateNote_Normalizes(t *testing.T) {
	title, vis, msg := validateNote(noteReq{Title: "  my note  ", Visibility: " public "})
	require.Empty(t, msg)
	assert.Equal(t, "my note", title)
	assert.Equal(t, "PUBLIC", string(vis))
}

func TestValidateNote_EmptyVisibilityPassesThrough(t *testing.T) {
	_, vis, msg := validateNote(noteReq{Title: "abc"})
	require.Empty(t, msg)
	assert.Empty(t, string(vis))
}

func newListContext(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/notes"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 0, 10},
		{"explicit", "?page=3&size=25", 3, 25},
		{"negative page ignored", "?page=-1", 0, 10},
		{"zero size ignored", "?size=0", 0, 10},
		{"size over cap ignored", "?size=101", 0, 10},
		{"size at cap", "?size=100", 0, 100},
		{"garbage ignored", "?page=abc&size=xyz", 0, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, size := pageParams(newListContext(tc.query))
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := getUserID(c)
	assert.Error(t, err, "missing user_id must fail")

	c.Set("user_id", uint64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "7")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestNoteCreate_RejectsInvalidBody(t *testing.T) {
	e := echo.New()
	h := &NoteHandler{}

	body := `{"title":"ab","content_md":"too short title"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/notes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title must be between")
}

func TestNoteCreate_Unauthenticated(t *testing.T) {
	e := echo.New()
	h := &NoteHandler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/notes", strings.NewReader(`{"title":"abc"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteList_RejectsBadVisibility(t *testing.T) {
	e := echo.New()
	h := &NoteHandler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/notes?visibility=FRIENDS", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "visibility must be")
}

func TestNoteGet_RejectsBadID(t *testing.T) {
	e := echo.New()
	h := &NoteHandler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/notes/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set("user_id", uint64(1))

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
