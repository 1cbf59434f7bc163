package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartromaric/notes-suite/internal/repository"
)

// ShareHandler serves named-user shares and public links for note owners.
type ShareHandler struct {
	Notes  *repository.NoteRepo
	Users  *repository.UserRepo
	Shares *repository.ShareRepo
	Links  *repository.PublicLinkRepo
}

func NewShareHandler(n *repository.NoteRepo, u *repository.UserRepo, s *repository.ShareRepo, l *repository.PublicLinkRepo) *ShareHandler {
	return &ShareHandler{Notes: n, Users: u, Shares: s, Links: l}
}

type shareReq struct {
	Email string `json:"email"`
}

type shareResp struct {
	ID             uint64    `json:"id"`
	NoteID         uint64    `json:"note_id"`
	RecipientEmail string    `json:"recipient_email"`
	Permission     string    `json:"permission"`
	CreatedAt      time.Time `json:"created_at"`
}

type linkReq struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

type linkResp struct {
	ID        uint64     `json:"id"`
	NoteID    uint64     `json:"note_id"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ShareWithUser handles POST /v1/notes/:id/share/user. The note must be
// owned by the caller and the recipient must be an existing, different
// user; a repeated (note, recipient) pair is a conflict.
func (h *ShareHandler) ShareWithUser(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req shareReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx := c.Request().Context()
	// Ownership comes first: a caller who does not own the note learns
	// nothing about whether the recipient email exists.
	if _, err := h.Notes.GetByIDAndOwner(ctx, noteID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	recipient, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if recipient.ID == ownerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot share a note with yourself"})
	}

	s, err := h.Shares.Create(ctx, noteID, ownerID, recipient.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "note already shared with this user"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "share failed"})
		}
	}
	return c.JSON(http.StatusCreated, shareResp{
		ID:             s.ID,
		NoteID:         s.NoteID,
		RecipientEmail: recipient.Email,
		Permission:     s.Permission,
		CreatedAt:      s.CreatedAt,
	})
}

// DeleteShare handles DELETE /v1/shares/:id.
func (h *ShareHandler) DeleteShare(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	shareID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Shares.Delete(c.Request().Context(), shareID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "share not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreatePublicLink handles POST /v1/notes/:id/share/public. An optional
// expires_at bounds the link lifetime; a null expiry never expires.
func (h *ShareHandler) CreatePublicLink(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req linkReq
	_ = c.Bind(&req) // body is optional
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_at must be in the future"})
	}

	pl, err := h.Links.Create(c.Request().Context(), noteID, ownerID, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create link failed"})
	}
	return c.JSON(http.StatusCreated, linkResp{
		ID:        pl.ID,
		NoteID:    pl.NoteID,
		Token:     pl.Token,
		ExpiresAt: pl.ExpiresAt,
		CreatedAt: pl.CreatedAt,
	})
}

// DeletePublicLink handles DELETE /v1/public-links/:id.
func (h *ShareHandler) DeletePublicLink(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Links.Delete(c.Request().Context(), linkID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "public link not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSharing handles GET /v1/notes/:id/shares: the owner's view of who
// a note is shared with and which public links exist.
func (h *ShareHandler) ListSharing(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx := c.Request().Context()
	shares, err := h.Shares.ListForNote(ctx, noteID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	links, err := h.Links.ListForNote(ctx, noteID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	shareItems := make([]shareResp, 0, len(shares))
	for _, s := range shares {
		shareItems = append(shareItems, shareResp{
			ID:             s.ID,
			NoteID:         s.NoteID,
			RecipientEmail: s.RecipientEmail,
			Permission:     s.Permission,
			CreatedAt:      s.CreatedAt,
		})
	}
	linkItems := make([]linkResp, 0, len(links))
	for _, l := range links {
		linkItems = append(linkItems, linkResp{
			ID:        l.ID,
			NoteID:    l.NoteID,
			Token:     l.Token,
			ExpiresAt: l.ExpiresAt,
			CreatedAt: l.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"shares": shareItems, "public_links": linkItems})
}
