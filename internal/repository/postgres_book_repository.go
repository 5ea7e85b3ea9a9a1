package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"book-inventory/internal/domain"
)

const bookColumns = `id, title, author, genre, price, stock, published_year, created_at, updated_at`

type postgresBookRepository struct {
	db *sql.DB
}

// NewPostgresBookRepository creates a BookRepository backed by the books table
func NewPostgresBookRepository(db *sql.DB) BookRepository {
	return &postgresBookRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	book := &domain.Book{}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Price,
		&book.Stock,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.CreatedAt = book.CreatedAt.UTC()
	book.UpdatedAt = book.UpdatedAt.UTC()
	return book, nil
}

// Create inserts a new book using parameterized queries
func (r *postgresBookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, genre, price, stock, published_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.Genre,
		book.Price,
		book.Stock,
		book.PublishedYear,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// List returns every book, newest first
func (r *postgresBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC, seq DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// FindByID retrieves a book by ID
func (r *postgresBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	return book, nil
}

// Update overwrites the supplied fields and leaves the rest untouched
func (r *postgresBookRepository) Update(ctx context.Context, id string, patch domain.BookPatch, updatedAt time.Time) (*domain.Book, error) {
	query := `
		UPDATE books
		SET title = COALESCE($2, title),
		    author = COALESCE($3, author),
		    genre = COALESCE($4, genre),
		    price = COALESCE($5, price),
		    stock = COALESCE($6, stock),
		    published_year = COALESCE($7, published_year),
		    updated_at = $8
		WHERE id = $1
		RETURNING ` + bookColumns

	row := r.db.QueryRowContext(
		ctx,
		query,
		id,
		patch.Title,
		patch.Author,
		patch.Genre,
		patch.Price,
		patch.Stock,
		patch.PublishedYear,
		updatedAt,
	)

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// Delete removes a book and returns the removed record
func (r *postgresBookRepository) Delete(ctx context.Context, id string) (*domain.Book, error) {
	query := `DELETE FROM books WHERE id = $1 RETURNING ` + bookColumns

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}

	return book, nil
}

func (r *postgresBookRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *postgresBookRepository) Close(ctx context.Context) error {
	return r.db.Close()
}
