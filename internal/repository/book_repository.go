package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"book-inventory/internal/domain"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// BookRepository defines the interface for book data access.
// Every backend lists books newest first: CreatedAt descending, ties broken by
// the most recent insertion.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	List(ctx context.Context) ([]*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	Update(ctx context.Context, id string, patch domain.BookPatch, updatedAt time.Time) (*domain.Book, error)
	Delete(ctx context.Context, id string) (*domain.Book, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// sequenced is a book paired with its insertion order, used by the
// backends that have no natural tie-breaker on CreatedAt.
type sequenced struct {
	seq  uint64
	book *domain.Book
}

func sortNewestFirst(items []sequenced) []*domain.Book {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].book.CreatedAt.Equal(items[j].book.CreatedAt) {
			return items[i].book.CreatedAt.After(items[j].book.CreatedAt)
		}
		return items[i].seq > items[j].seq
	})

	books := make([]*domain.Book, 0, len(items))
	for _, item := range items {
		books = append(books, item.book)
	}
	return books
}
