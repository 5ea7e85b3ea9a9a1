package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"book-inventory/internal/domain"

	"github.com/dgraph-io/badger/v4"
)

var (
	badgerBookPrefix = []byte("book:")
	badgerSeqKey     = []byte("seq:book")
)

// badgerRecord is the JSON value stored under book:<id>
type badgerRecord struct {
	Seq  uint64      `json:"seq"`
	Book domain.Book `json:"book"`
}

type badgerBookRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerBookRepository creates a BookRepository storing one JSON document
// per book in an embedded BadgerDB.
func NewBadgerBookRepository(db *badger.DB) (BookRepository, error) {
	seq, err := db.GetSequence(badgerSeqKey, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to open book sequence: %w", err)
	}
	return &badgerBookRepository{db: db, seq: seq}, nil
}

func badgerKey(id string) []byte {
	return append(append([]byte{}, badgerBookPrefix...), id...)
}

func readRecord(item *badger.Item) (badgerRecord, error) {
	var record badgerRecord
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	})
	return record, err
}

func writeRecord(txn *badger.Txn, record badgerRecord) error {
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return txn.Set(badgerKey(record.Book.ID), val)
}

func (r *badgerBookRepository) Create(ctx context.Context, book *domain.Book) error {
	seq, err := r.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(book.ID))
		if err == nil {
			return fmt.Errorf("duplicate id %s", book.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return writeRecord(txn, badgerRecord{Seq: seq, Book: *cloneBook(*book)})
	})
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

func (r *badgerBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	items := []sequenced{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerBookPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			record, err := readRecord(it.Item())
			if err != nil {
				return err
			}
			items = append(items, sequenced{seq: record.Seq, book: cloneBook(record.Book)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return sortNewestFirst(items), nil
}

func (r *badgerBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var book *domain.Book

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		record, err := readRecord(item)
		if err != nil {
			return err
		}
		book = cloneBook(record.Book)
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return book, nil
}

func (r *badgerBookRepository) Update(ctx context.Context, id string, patch domain.BookPatch, updatedAt time.Time) (*domain.Book, error) {
	var book *domain.Book

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		record, err := readRecord(item)
		if err != nil {
			return err
		}

		record.Book.Apply(patch)
		record.Book.UpdatedAt = updatedAt
		book = cloneBook(record.Book)
		return writeRecord(txn, record)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

func (r *badgerBookRepository) Delete(ctx context.Context, id string) (*domain.Book, error) {
	var book *domain.Book

	err := r.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(id)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		record, err := readRecord(item)
		if err != nil {
			return err
		}
		book = cloneBook(record.Book)
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	return book, nil
}

func (r *badgerBookRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func (r *badgerBookRepository) Close(ctx context.Context) error {
	if err := r.seq.Release(); err != nil {
		return fmt.Errorf("failed to release book sequence: %w", err)
	}
	return r.db.Close()
}
