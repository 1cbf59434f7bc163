package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/smartromaric/notes-suite/internal/access"
	"github.com/smartromaric/notes-suite/internal/repository"
	"github.com/smartromaric/notes-suite/internal/service"
)

// Title and content bounds enforced at the API boundary.
const (
	titleMinLen   = 3
	titleMaxLen   = 255
	contentMaxLen = 50000
	tagLabelMax   = 100
)

// NoteHandler serves authenticated note CRUD and listing.
type NoteHandler struct {
	Notes    *repository.NoteRepo
	Activity *service.ActivityPublisher
}

func NewNoteHandler(notes *repository.NoteRepo, activity *service.ActivityPublisher) *NoteHandler {
	return &NoteHandler{Notes: notes, Activity: activity}
}

type noteReq struct {
	Title      string    `json:"title"`
	ContentMD  string    `json:"content_md"`
	Visibility string    `json:"visibility"`
	Tags       *[]string `json:"tags"`
}

type noteResp struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	ContentMD  string    `json:"content_md"`
	Visibility string    `json:"visibility"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type notePage struct {
	Items []noteResp `json:"items"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Total int        `json:"total"`
}

func toNoteResp(n *repository.Note) noteResp {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteResp{
		ID:         n.ID,
		Title:      n.Title,
		ContentMD:  n.ContentMD,
		Visibility: string(n.Visibility),
		Tags:       tags,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// validateNote normalizes and checks the writable note fields. It returns
// the parsed visibility ("" when the client sent none) and a human error
// message, empty on success. Length bounds count characters, not bytes,
// so multibyte titles are measured the same as ASCII ones.
func validateNote(req noteReq) (title string, vis access.Visibility, msg string) {
	title = strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return "", "", fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen)
	}
	if utf8.RuneCountInString(req.ContentMD) > contentMaxLen {
		return "", "", fmt.Sprintf("content must not exceed %d characters", contentMaxLen)
	}
	if req.Visibility != "" {
		vis = access.Visibility(strings.ToUpper(strings.TrimSpace(req.Visibility)))
		if !vis.Valid() {
			return "", "", "visibility must be PRIVATE, SHARED or PUBLIC"
		}
	}
	if req.Tags != nil {
		for _, label := range *req.Tags {
			if utf8.RuneCountInString(strings.TrimSpace(label)) > tagLabelMax {
				return "", "", fmt.Sprintf("tag labels must not exceed %d characters", tagLabelMax)
			}
		}
	}
	return title, vis, ""
}

// Create handles POST /v1/notes.
func (h *NoteHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, vis, msg := validateNote(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if vis == "" {
		vis = access.VisibilityPrivate
	}
	var tags []string
	if req.Tags != nil {
		tags = *req.Tags
	}

	n, err := h.Notes.Create(c.Request().Context(), userID, title, req.ContentMD, vis, tags)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create note failed"})
	}
	h.publish(c, "note.created", n.ID, userID)
	return c.JSON(http.StatusCreated, toNoteResp(n))
}

// Get handles GET /v1/notes/:id for the owner or a share recipient.
func (h *NoteHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	n, err := h.Notes.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toNoteResp(n))
}

// List handles GET /v1/notes. scope=own restricts to owned notes; the
// default unions owned notes with notes shared to the caller before the
// filters and pagination apply.
func (h *NoteHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, size := pageParams(c)

	opts := repository.ListOptions{
		UserID:        userID,
		IncludeShared: c.QueryParam("scope") != "own",
		Query:         strings.TrimSpace(c.QueryParam("query")),
		Tag:           strings.TrimSpace(c.QueryParam("tag")),
		Page:          page,
		Size:          size,
	}
	if v := c.QueryParam("visibility"); v != "" {
		vis := access.Visibility(strings.ToUpper(strings.TrimSpace(v)))
		if !vis.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be PRIVATE, SHARED or PUBLIC"})
		}
		opts.Visibility = vis
	}

	notes, total, err := h.Notes.List(c.Request().Context(), opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]noteResp, 0, len(notes))
	for _, n := range notes {
		items = append(items, toNoteResp(n))
	}
	return c.JSON(http.StatusOK, notePage{Items: items, Page: page, Size: size, Total: total})
}

// Update handles PUT /v1/notes/:id. A tags field in the body — even an
// empty list — replaces the full tag set.
func (h *NoteHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, vis, msg := validateNote(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	n, err := h.Notes.Update(c.Request().Context(), id, userID, title, req.ContentMD, vis, req.Tags)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.publish(c, "note.updated", n.ID, userID)
	return c.JSON(http.StatusOK, toNoteResp(n))
}

// Delete handles DELETE /v1/notes/:id, cascading tags, shares and links.
func (h *NoteHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Notes.Delete(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.publish(c, "note.deleted", id, userID)
	return c.NoContent(http.StatusNoContent)
}

// publish emits a best-effort activity event; failures never surface to
// the client.
func (h *NoteHandler) publish(c echo.Context, action string, noteID, userID uint64) {
	if h.Activity == nil {
		return
	}
	_ = h.Activity.PublishNoteActivity(c.Request().Context(), service.NoteActivity{
		Action: action,
		NoteID: noteID,
		UserID: userID,
	})
}
