package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-inventory/internal/domain"
	"book-inventory/internal/repository"
)

var ErrValidation = errors.New("validation failed")

// CreateBookInput carries the fields accepted at creation. Price is a pointer
// so that absence can be told apart from zero.
type CreateBookInput struct {
	Title         string
	Author        string
	Genre         string
	Price         *float64
	Stock         *int
	PublishedYear *int
}

// BookService defines the interface for book business logic. Store errors
// are returned as the repository reports them, ErrBookNotFound included.
type BookService interface {
	Create(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	List(ctx context.Context) ([]*domain.Book, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Update(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error)
	Delete(ctx context.Context, id string) (*domain.Book, error)
	Ping(ctx context.Context) error
}

type bookService struct {
	repo repository.BookRepository
	now  func() time.Time
}

// NewBookService creates a new instance of BookService
func NewBookService(repo repository.BookRepository) BookService {
	return &bookService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// timestamp is truncated to milliseconds, the precision every backend keeps
func (s *bookService) timestamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// Create assigns the identifier, timestamps and default stock, then stores the book
func (s *bookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Author) == "" {
		missing = append(missing, "author")
	}
	if strings.TrimSpace(input.Genre) == "" {
		missing = append(missing, "genre")
	}
	if input.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}

	stock := domain.DefaultStock
	if input.Stock != nil {
		stock = *input.Stock
	}

	now := s.timestamp()
	book := &domain.Book{
		ID:        domain.NewID(),
		Title:     input.Title,
		Author:    input.Author,
		Genre:     input.Genre,
		Price:     *input.Price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.PublishedYear != nil {
		year := *input.PublishedYear
		book.PublishedYear = &year
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// List returns all books, newest first
func (s *bookService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.repo.List(ctx)
}

// Get returns the book identified by id
func (s *bookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// Update merges patch into the book identified by id
func (s *bookService) Update(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"author", patch.Author},
		{"genre", patch.Genre},
	}
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return nil, fmt.Errorf("%w: %s must not be empty", ErrValidation, f.name)
		}
	}

	return s.repo.Update(ctx, id, patch, s.timestamp())
}

// Delete removes the book identified by id and returns it
func (s *bookService) Delete(ctx context.Context, id string) (*domain.Book, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	return s.repo.Delete(ctx, id)
}

// Ping reports whether the underlying store is reachable
func (s *bookService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
