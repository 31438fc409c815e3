package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelbank/kestrel/internal/middleware"
	"github.com/kestrelbank/kestrel/internal/models"
)

// respondWithDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognised (including storage failures) becomes a 500 without
// leaking internals.
func respondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, models.ErrAccountInactive):
		middleware.RespondWithError(c, http.StatusBadRequest, "Account is not active")
	case errors.Is(err, models.ErrInvalidAmount):
		middleware.RespondWithError(c, http.StatusBadRequest, "Amount must be positive with at most 2 decimal places")
	case errors.Is(err, models.ErrInsufficientFunds):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
	case errors.Is(err, models.ErrEmailTaken):
		middleware.RespondWithError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, models.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
