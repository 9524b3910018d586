package model

import (
	"errors"
	"net/http"

	"bookcatalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrBookNotFound         = errors.New("book not found")
	ErrISBNAlreadyExists    = errors.New("ISBN already exists")
	ErrFutureBookAccessible = errors.New("books from future cannot be marked as accessible")
	ErrEmptyUpdate          = errors.New("update request carries no fields")
)

var bookErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Title:   "Book not found",
		Message: "The specified book does not exist",
	},
	ErrISBNAlreadyExists: {
		Status:  http.StatusConflict,
		Title:   "ISBN already exists",
		Message: "This ISBN is already registered in the catalog",
	},
	ErrFutureBookAccessible: {
		Status:  http.StatusUnprocessableEntity,
		Title:   "Validation failed",
		Message: "Books from future cannot be marked as accessible",
	},
	ErrEmptyUpdate: {
		Status:  http.StatusUnprocessableEntity,
		Title:   "Validation failed",
		Message: "At least one field must be provided",
	},
}

// HandleBookError writes the HTTP response for a service error and reports
// whether one was written. Field-level validation errors map to 422;
// unknown errors become an opaque 500.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if cfg, ok := bookErrorMap[err]; ok {
		response.Error(c, cfg.Status, cfg.Title, cfg.Message)
		return true
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.Error(c, http.StatusUnprocessableEntity, "Validation failed", fieldErrs)
		return true
	}

	log.Error().Err(err).Msg("unhandled book error")
	response.Error(c, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
	return true
}
