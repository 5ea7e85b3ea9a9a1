package repository_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"book-inventory/internal/domain"
	"book-inventory/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// repoFactory returns an empty repository for one subtest
type repoFactory func(t *testing.T) repository.BookRepository

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func newBook(title string, createdAt time.Time) *domain.Book {
	return &domain.Book{
		ID:            domain.NewID(),
		Title:         title,
		Author:        "Mira K. Singh",
		Genre:         "Computer Science",
		Price:         499,
		Stock:         12,
		PublishedYear: intPtr(2024),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func titles(books []*domain.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func mustCreate(t *testing.T, repo repository.BookRepository, book *domain.Book) {
	t.Helper()
	if err := repo.Create(context.Background(), book); err != nil {
		t.Fatalf("Failed to create book %q: %v", book.Title, err)
	}
}

func mustList(t *testing.T, repo repository.BookRepository) []*domain.Book {
	t.Helper()
	books, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	return books
}

func assertTitles(t *testing.T, books []*domain.Book, want ...string) {
	t.Helper()
	if got := titles(books); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected titles %v, got %v", want, got)
	}
}

// runBookRepositoryContract checks the behaviour every backend shares
func runBookRepositoryContract(t *testing.T, newRepo repoFactory) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		books := mustList(t, newRepo(t))
		if books == nil || len(books) != 0 {
			t.Errorf("Expected an empty non-nil list, got %#v", books)
		}
	})

	t.Run("create then find", func(t *testing.T) {
		repo := newRepo(t)
		book := newBook("The Silent Algorithm", baseTime)
		mustCreate(t, repo, book)

		got, err := repo.FindByID(ctx, book.ID)
		if err != nil {
			t.Fatalf("Failed to find book: %v", err)
		}
		if !reflect.DeepEqual(book, got) {
			t.Errorf("Expected %+v, got %+v", book, got)
		}
	})

	t.Run("long text is stored whole", func(t *testing.T) {
		repo := newRepo(t)
		book := newBook(strings.Repeat("t", 4096), baseTime)
		book.Author = strings.Repeat("a", 1024)
		book.Genre = strings.Repeat("g", 512)
		mustCreate(t, repo, book)

		got, err := repo.FindByID(ctx, book.ID)
		if err != nil {
			t.Fatalf("Failed to find book: %v", err)
		}
		if got.Title != book.Title || got.Author != book.Author || got.Genre != book.Genre {
			t.Errorf("Long text was not preserved: title %d, author %d, genre %d chars",
				len(got.Title), len(got.Author), len(got.Genre))
		}

		longer := strings.Repeat("u", 8192)
		updated, err := repo.Update(ctx, book.ID, domain.BookPatch{Title: &longer}, baseTime)
		if err != nil {
			t.Fatalf("Failed to update with long title: %v", err)
		}
		if updated.Title != longer {
			t.Errorf("Expected %d char title, got %d", len(longer), len(updated.Title))
		}
	})

	t.Run("find missing", func(t *testing.T) {
		_, err := newRepo(t).FindByID(ctx, domain.NewID())
		if !errors.Is(err, repository.ErrBookNotFound) {
			t.Errorf("Expected ErrBookNotFound, got %v", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, newBook("middle", baseTime.Add(time.Minute)))
		mustCreate(t, repo, newBook("oldest", baseTime))
		mustCreate(t, repo, newBook("newest", baseTime.Add(time.Hour)))

		assertTitles(t, mustList(t, repo), "newest", "middle", "oldest")
	})

	t.Run("equal timestamps list latest insert first", func(t *testing.T) {
		repo := newRepo(t)
		for _, title := range []string{"first", "second", "third"} {
			mustCreate(t, repo, newBook(title, baseTime))
		}

		assertTitles(t, mustList(t, repo), "third", "second", "first")
	})

	t.Run("update applies only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		book := newBook("Whispers of the Wind", baseTime)
		mustCreate(t, repo, book)

		later := baseTime.Add(time.Hour)
		got, err := repo.Update(ctx, book.ID, domain.BookPatch{Price: floatPtr(299.5), Stock: intPtr(0)}, later)
		if err != nil {
			t.Fatalf("Failed to update book: %v", err)
		}

		if got.Price != 299.5 || got.Stock != 0 {
			t.Errorf("Expected price 299.5 and stock 0, got %v and %d", got.Price, got.Stock)
		}
		if got.Title != book.Title || got.Author != book.Author || got.Genre != book.Genre {
			t.Errorf("Unpatched text fields changed: %+v", got)
		}
		if !reflect.DeepEqual(got.PublishedYear, book.PublishedYear) {
			t.Errorf("Expected published year %v, got %v", *book.PublishedYear, got.PublishedYear)
		}
		if !got.CreatedAt.Equal(book.CreatedAt) {
			t.Errorf("CreatedAt changed from %v to %v", book.CreatedAt, got.CreatedAt)
		}
		if !got.UpdatedAt.Equal(later) {
			t.Errorf("Expected UpdatedAt %v, got %v", later, got.UpdatedAt)
		}

		stored, err := repo.FindByID(ctx, book.ID)
		if err != nil {
			t.Fatalf("Failed to find book: %v", err)
		}
		if !reflect.DeepEqual(got, stored) {
			t.Errorf("Stored record %+v differs from returned %+v", stored, got)
		}
	})

	t.Run("update does not reorder", func(t *testing.T) {
		repo := newRepo(t)
		older := newBook("older", baseTime)
		mustCreate(t, repo, older)
		mustCreate(t, repo, newBook("newer", baseTime.Add(time.Minute)))

		if _, err := repo.Update(ctx, older.ID, domain.BookPatch{Title: strPtr("older, revised")}, baseTime.Add(time.Hour)); err != nil {
			t.Fatalf("Failed to update book: %v", err)
		}

		assertTitles(t, mustList(t, repo), "newer", "older, revised")
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := newRepo(t).Update(ctx, domain.NewID(), domain.BookPatch{Stock: intPtr(1)}, baseTime)
		if !errors.Is(err, repository.ErrBookNotFound) {
			t.Errorf("Expected ErrBookNotFound, got %v", err)
		}
	})

	t.Run("delete returns the removed record", func(t *testing.T) {
		repo := newRepo(t)
		book := newBook("Quantum Horizons", baseTime)
		mustCreate(t, repo, book)

		removed, err := repo.Delete(ctx, book.ID)
		if err != nil {
			t.Fatalf("Failed to delete book: %v", err)
		}
		if !reflect.DeepEqual(book, removed) {
			t.Errorf("Expected removed record %+v, got %+v", book, removed)
		}

		if _, err := repo.FindByID(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
			t.Errorf("Expected ErrBookNotFound after delete, got %v", err)
		}
		if _, err := repo.Delete(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
			t.Errorf("Expected ErrBookNotFound on second delete, got %v", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newRepo(t).Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("stored records preserve attributes", func(t *testing.T) {
		repo := newRepo(t)

		parameters := gopter.DefaultTestParameters()
		parameters.MinSuccessfulTests = 25
		properties := gopter.NewProperties(parameters)

		properties.Property("create and find round-trips every field", prop.ForAll(
			func(title, author string, price float64, stock int, year int) bool {
				book := &domain.Book{
					ID:            domain.NewID(),
					Title:         title,
					Author:        author,
					Genre:         "Fiction",
					Price:         price,
					Stock:         stock,
					PublishedYear: intPtr(year),
					CreatedAt:     baseTime,
					UpdatedAt:     baseTime,
				}
				if err := repo.Create(ctx, book); err != nil {
					t.Logf("Failed to create book: %v", err)
					return false
				}

				got, err := repo.FindByID(ctx, book.ID)
				if err != nil {
					t.Logf("Failed to find book: %v", err)
					return false
				}
				return reflect.DeepEqual(book, got)
			},
			gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
			gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
			gen.Float64Range(0.01, 100000),
			gen.IntRange(0, 10000),
			gen.IntRange(1000, 2025),
		))

		properties.TestingRun(t)
	})
}
