package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/repository"
)

// writeError maps application and repository errors to HTTP responses.
// Validation problems are client errors, upstream scrape failures are
// bad gateways, everything else falls through to 500.
func writeError(c echo.Context, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body := echo.Map{"error": "validation failed", "reason": ve.Reason}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusUnprocessableEntity, body)
	}
	var ne *apperr.NetworkError
	if errors.As(err, &ne) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream request failed", "url": ne.URL})
	}
	switch {
	case errors.Is(err, repository.ErrShowNotFound),
		errors.Is(err, repository.ErrSongNotFound),
		errors.Is(err, repository.ErrPlaylistNotFound),
		errors.Is(err, repository.ErrOverrideNotFound),
		errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathID parses a numeric path parameter; 0 means absent or malformed.
func pathID(c echo.Context, name string) uint64 {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
