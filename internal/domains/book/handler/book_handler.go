package handler

import (
	"net/http"
	"strconv"

	"bookcatalog-backend/internal/domains/book/model"
	"bookcatalog-backend/internal/domains/book/service"
	"bookcatalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Handler - HTTP handler for the book catalog.
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - constructor with DI.
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /v1/books
// Query params: author, genre, year_publication (all exact-match).
func (h *Handler) ListBooks(c *gin.Context) {
	filter := model.Filter{
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
	}

	if yearStr := c.Query("year_publication"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Bad request", "year_publication must be an integer")
			return
		}
		filter.YearPublication = &year
	}

	books, err := h.service.ListBooks(c.Request.Context(), filter)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Books retrieved successfully", books)
}

// GetBook - GET /v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", book)
}

// CreateBook - POST /v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", book)
}

// UpdateBook - PUT /v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", book)
}

// DeleteBook - DELETE /v1/books/:id
// Responds with the deleted record.
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.service.DeleteBook(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", book)
}

func parseBookID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Bad request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
