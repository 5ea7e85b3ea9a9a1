package inventory

import (
	"context"
	"errors"
	"sync"

	"book-inventory/internal/client"
	"book-inventory/internal/domain"
)

// ErrSubmitting is returned when an add is attempted while another is in flight
var ErrSubmitting = errors.New("an add request is already in progress")

// API is the subset of the API client the controller drives
type API interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	AddBook(ctx context.Context, book client.NewBook) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, update client.BookUpdate) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) (*client.DeleteResult, error)
}

// Controller holds the session's list of books. Each mutation calls the API
// first and touches local state only when the call succeeds.
type Controller struct {
	api API

	mu         sync.RWMutex
	books      []domain.Book
	submitting bool
}

// NewController creates a Controller with an empty book list
func NewController(api API) *Controller {
	return &Controller{api: api}
}

// Load replaces local state with the server's list
func (c *Controller) Load(ctx context.Context) error {
	books, err := c.api.ListBooks(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.books = books
	c.mu.Unlock()
	return nil
}

// Books returns a copy of the current list
func (c *Controller) Books() []domain.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Book, len(c.books))
	copy(out, c.books)
	return out
}

// Count returns the number of books held
func (c *Controller) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// canonicalID returns the server's spelling of id. Ids the server would
// reject are returned unchanged; they match nothing held locally.
func canonicalID(id string) string {
	if parsed, err := domain.ParseID(id); err == nil {
		return parsed
	}
	return id
}

// Find returns the book with the given id
func (c *Controller) Find(id string) (domain.Book, bool) {
	id = canonicalID(id)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.books {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Book{}, false
}

// Get fetches one book from the server. A copy held locally is replaced
// with the fetched record.
func (c *Controller) Get(ctx context.Context, id string) (domain.Book, error) {
	book, err := c.api.GetBook(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.books {
		if c.books[i].ID == book.ID {
			c.books[i] = *book
			break
		}
	}
	return *book, nil
}

// Submitting reports whether an add is in flight
func (c *Controller) Submitting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.submitting
}

// Add creates a book and puts the stored record at the front of the list,
// matching the server's newest-first order.
func (c *Controller) Add(ctx context.Context, book client.NewBook) (*domain.Book, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitting
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	created, err := c.api.AddBook(ctx, book)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.books = append([]domain.Book{*created}, c.books...)
	c.mu.Unlock()
	return created, nil
}

// Update sends update and replaces the matching local record with the
// server's copy. A record missing locally is left missing.
func (c *Controller) Update(ctx context.Context, id string, update client.BookUpdate) (*domain.Book, error) {
	updated, err := c.api.UpdateBook(ctx, id, update)
	if err != nil {
		return nil, err
	}

	key := updated.ID
	if key == "" {
		key = canonicalID(id)
	}

	c.mu.Lock()
	for i := range c.books {
		if c.books[i].ID == key {
			c.books[i] = *updated
			break
		}
	}
	c.mu.Unlock()
	return updated, nil
}

// Delete removes the book on the server and then locally
func (c *Controller) Delete(ctx context.Context, id string) error {
	result, err := c.api.DeleteBook(ctx, id)
	if err != nil {
		return err
	}

	key := canonicalID(id)
	if result != nil && result.ID != "" {
		key = result.ID
	}

	c.mu.Lock()
	for i := range c.books {
		if c.books[i].ID == key {
			c.books = append(c.books[:i:i], c.books[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}
