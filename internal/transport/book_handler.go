package transport

import (
	"errors"
	"net/http"

	"book-inventory/internal/domain"
	"book-inventory/internal/middleware"
	"book-inventory/internal/repository"
	"book-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgRequiredFields = "title, author, genre and price are required"
	msgEmptyFields    = "title, author and genre must not be empty"
	msgInvalidBody    = "invalid request body"
	msgInvalidID      = "Invalid book id"
	msgNotFound       = "Book not found"
	msgDeleted        = "Book deleted"
)

// CreateBookRequest is the validated create payload
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required,notblank"`
	Author        string   `json:"author" validate:"required,notblank"`
	Genre         string   `json:"genre" validate:"required,notblank"`
	Price         *float64 `json:"price" validate:"required"`
	Stock         *int     `json:"stock"`
	PublishedYear *int     `json:"publishedYear"`
}

// UpdateBookRequest is the validated update payload. Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title         *string  `json:"title" validate:"omitnil,notblank"`
	Author        *string  `json:"author" validate:"omitnil,notblank"`
	Genre         *string  `json:"genre" validate:"omitnil,notblank"`
	Price         *float64 `json:"price"`
	Stock         *int     `json:"stock"`
	PublishedYear *int     `json:"publishedYear"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// BookHandler handles HTTP requests for book operations
type BookHandler struct {
	bookService service.BookService
	logger      *zap.Logger
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(bookService service.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// RegisterRoutes registers all book routes
func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/books", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// decodePayload reads the body and coerces its numeric fields. It writes the
// 400 response itself and reports false when the body is unusable. With
// allowEmpty set, a body holding no JSON value decodes as {}.
func (h *BookHandler) decodePayload(w http.ResponseWriter, r *http.Request, allowEmpty bool) (bookPayload, coercedNumbers, bool) {
	var payload bookPayload
	err := middleware.DecodeJSON(r, &payload)
	if allowEmpty && errors.Is(err, middleware.ErrEmptyBody) {
		err = nil
	}
	if err != nil {
		h.logger.Debug("Book payload rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return payload, coercedNumbers{}, false
	}

	numbers, err := payload.numbers()
	if err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			middleware.RespondWithValidationErrors(w, fe.Error(), []middleware.ValidationError{
				{Field: fe.Field, Message: fe.Message},
			})
			return payload, numbers, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return payload, numbers, false
	}

	return payload, numbers, true
}

// Create handles POST /api/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, numbers, ok := h.decodePayload(w, r, false)
	if !ok {
		return
	}

	req := CreateBookRequest{
		Title:         deref(payload.Title),
		Author:        deref(payload.Author),
		Genre:         deref(payload.Genre),
		Price:         numbers.Price,
		Stock:         numbers.Stock,
		PublishedYear: numbers.PublishedYear,
	}

	if err := middleware.ValidateRequest(req); err != nil {
		h.logger.Debug("Create validation failed", zap.Error(err))
		middleware.RespondWithValidationErrors(w, msgRequiredFields, middleware.FormatValidationErrors(err))
		return
	}

	book, err := h.bookService.Create(r.Context(), service.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		Price:         req.Price,
		Stock:         req.Stock,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		h.respondWithServiceError(w, r, "Create book failed", err)
		return
	}

	h.logger.Info("Book created", zap.String("book_id", book.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, book)
}

// List handles GET /api/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.List(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, "List books failed", err)
		return
	}

	if books == nil {
		books = []*domain.Book{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	book, err := h.bookService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, "Get book failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	payload, numbers, ok := h.decodePayload(w, r, true)
	if !ok {
		return
	}

	req := UpdateBookRequest{
		Title:         payload.Title,
		Author:        payload.Author,
		Genre:         payload.Genre,
		Price:         numbers.Price,
		Stock:         numbers.Stock,
		PublishedYear: numbers.PublishedYear,
	}

	if err := middleware.ValidateRequest(req); err != nil {
		h.logger.Debug("Update validation failed", zap.Error(err))
		middleware.RespondWithValidationErrors(w, msgEmptyFields, middleware.FormatValidationErrors(err))
		return
	}

	patch := domain.BookPatch{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		Price:         req.Price,
		Stock:         req.Stock,
		PublishedYear: req.PublishedYear,
	}
	if patch.IsEmpty() {
		h.logger.Debug("Update carries no fields, refreshing updatedAt only", zap.String("book_id", id))
	}

	book, err := h.bookService.Update(r.Context(), id, patch)
	if err != nil {
		h.respondWithServiceError(w, r, "Update book failed", err)
		return
	}

	h.logger.Info("Book updated", zap.String("book_id", book.ID))
	middleware.RespondWithJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	book, err := h.bookService.Delete(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, "Delete book failed", err)
		return
	}

	h.logger.Info("Book deleted", zap.String("book_id", book.ID))
	middleware.RespondWithJSON(w, http.StatusOK, DeleteResponse{Message: msgDeleted, ID: book.ID})
}

// respondWithServiceError maps service and store errors to HTTP responses.
// Anything unrecognised is a store failure: logged, then reported as 500
// with its description.
func (h *BookHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, repository.ErrBookNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, service.ErrValidation):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(msg,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
