package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"book-inventory/internal/domain"

	"github.com/hashicorp/go-memdb"
)

const memoryBookTable = "book"

// memoryRecord is the object stored in memdb. Records are never mutated
// once inserted; updates insert a replacement.
type memoryRecord struct {
	ID   string
	Seq  uint64
	Book domain.Book
}

type memoryBookRepository struct {
	db  *memdb.MemDB
	seq atomic.Uint64
}

// NewMemoryBookRepository creates a BookRepository held entirely in process memory
func NewMemoryBookRepository() (BookRepository, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memoryBookTable: {
				Name: memoryBookTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid in-memory schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &memoryBookRepository{db: db}, nil
}

func cloneBook(b domain.Book) *domain.Book {
	if b.PublishedYear != nil {
		year := *b.PublishedYear
		b.PublishedYear = &year
	}
	return &b
}

func (r *memoryBookRepository) Create(ctx context.Context, book *domain.Book) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(memoryBookTable, "id", book.ID)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("failed to create book: duplicate id %s", book.ID)
	}

	record := &memoryRecord{ID: book.ID, Seq: r.seq.Add(1), Book: *cloneBook(*book)}
	if err := txn.Insert(memoryBookTable, record); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *memoryBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(memoryBookTable, "id")
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	items := []sequenced{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		record := obj.(*memoryRecord)
		items = append(items, sequenced{seq: record.Seq, book: cloneBook(record.Book)})
	}
	return sortNewestFirst(items), nil
}

func (r *memoryBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(memoryBookTable, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	if obj == nil {
		return nil, ErrBookNotFound
	}
	return cloneBook(obj.(*memoryRecord).Book), nil
}

func (r *memoryBookRepository) Update(ctx context.Context, id string, patch domain.BookPatch, updatedAt time.Time) (*domain.Book, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First(memoryBookTable, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	if obj == nil {
		return nil, ErrBookNotFound
	}

	current := obj.(*memoryRecord)
	book := cloneBook(current.Book)
	book.Apply(patch)
	book.UpdatedAt = updatedAt

	replacement := &memoryRecord{ID: current.ID, Seq: current.Seq, Book: *book}
	if err := txn.Insert(memoryBookTable, replacement); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	txn.Commit()

	return cloneBook(*book), nil
}

func (r *memoryBookRepository) Delete(ctx context.Context, id string) (*domain.Book, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First(memoryBookTable, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	if obj == nil {
		return nil, ErrBookNotFound
	}

	if err := txn.Delete(memoryBookTable, obj); err != nil {
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	txn.Commit()

	return cloneBook(obj.(*memoryRecord).Book), nil
}

func (r *memoryBookRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *memoryBookRepository) Close(ctx context.Context) error {
	return nil
}
