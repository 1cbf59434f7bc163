package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartromaric/notes-suite/internal/repository"
	"github.com/smartromaric/notes-suite/internal/utils"
)

// PublicHandler serves anonymous reads through public link tokens.
type PublicHandler struct {
	Links *repository.PublicLinkRepo
}

func NewPublicHandler(l *repository.PublicLinkRepo) *PublicHandler {
	return &PublicHandler{Links: l}
}

// Resolve handles GET /p/:token. An expired token answers exactly like a
// token that never existed, so the response leaks nothing about link
// history. Tokens of the wrong shape are rejected without a query.
func (h *PublicHandler) Resolve(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if len(token) != utils.PublicTokenLength {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}
	n, err := h.Links.ResolveToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toNoteResp(n))
}
