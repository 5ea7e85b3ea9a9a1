package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"book-inventory/internal/domain"
	"book-inventory/internal/middleware"
	"book-inventory/internal/repository"
	"book-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testAPI struct {
	router http.Handler
	repo   repository.BookRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repo, err := repository.NewMemoryBookRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	return newTestAPIWith(repo, zap.NewNop())
}

func newTestAPIWith(repo repository.BookRepository, logger *zap.Logger) *testAPI {
	r := chi.NewRouter()
	NewBookHandler(service.NewBookService(repo), logger).RegisterRoutes(r)
	return &testAPI{router: r, repo: repo}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// create stores a book through the API and fails the test on anything but 201
func (a *testAPI) create(t *testing.T, body interface{}) domain.Book {
	t.Helper()
	w := a.do(http.MethodPost, "/api/books", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeBook(t, w)
}

func (a *testAPI) storeSize(t *testing.T) int {
	t.Helper()
	books, err := a.repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	return len(books)
}

func decodeBook(t *testing.T, w *httptest.ResponseRecorder) domain.Book {
	t.Helper()
	var book domain.Book
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatalf("Failed to decode book: %v", err)
	}
	return book
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("Expected status %d, got %d", status, w.Code)
	}
	if got := decodeError(t, w).Error; got != message {
		t.Errorf("Expected error %q, got %q", message, got)
	}
}

func TestEndToEndScenario(t *testing.T) {
	api := newTestAPI(t)

	// create
	created := api.create(t, map[string]interface{}{
		"title": "T", "author": "A", "genre": "G", "price": 10,
	})
	if created.ID == "" {
		t.Fatal("Expected an id on the created book")
	}
	if created.Title != "T" || created.Stock != 0 {
		t.Errorf("Expected title T and stock 0, got %q and %d", created.Title, created.Stock)
	}

	// list
	w := api.do(http.MethodGet, "/api/books", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var books []domain.Book
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(books) == 0 || books[0].ID != created.ID {
		t.Fatalf("Expected %s to list first, got %+v", created.ID, books)
	}

	// read
	w = api.do(http.MethodGet, "/api/books/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := decodeBook(t, w); got.ID != created.ID || got.Title != "T" {
		t.Errorf("Expected the created book, got %+v", got)
	}

	// update
	w = api.do(http.MethodPut, "/api/books/"+created.ID, map[string]interface{}{"stock": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	updated := decodeBook(t, w)
	if updated.Stock != 5 || updated.Title != "T" {
		t.Errorf("Expected stock 5 and title T, got %d and %q", updated.Stock, updated.Title)
	}

	// delete
	w = api.do(http.MethodDelete, "/api/books/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var deleted DeleteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("Failed to decode delete response: %v", err)
	}
	if deleted.Message != "Book deleted" || deleted.ID != created.ID {
		t.Errorf("Unexpected delete response %+v", deleted)
	}

	// list again
	w = api.do(http.MethodGet, "/api/books", nil)
	books = nil
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	for _, b := range books {
		if b.ID == created.ID {
			t.Errorf("Expected %s to be gone", created.ID)
		}
	}
}

func TestList_EmptyStoreReturnsEmptyArray(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/books", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("Expected [], got %s", got)
	}
}

func TestProperty_CreateWithoutRequiredFieldIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing title, author, genre or price yields 400 and no record", prop.ForAll(
		func(missing string) bool {
			api := newTestAPI(t)

			body := map[string]interface{}{
				"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction", "price": 12.5,
			}
			delete(body, missing)

			w := api.do(http.MethodPost, "/api/books", body)
			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: expected 400 without %s, got %d", missing, w.Code)
				return false
			}

			var resp middleware.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}
			if resp.Error != msgRequiredFields || len(resp.Details) != 1 || resp.Details[0].Field != missing {
				t.Logf("FAIL: unexpected error body %s", w.Body.String())
				return false
			}

			return api.storeSize(t) == 0
		},
		gen.OneConstOf("title", "author", "genre", "price"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_CreatedRecordEchoesInputAndListsFirst(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("create echoes fields and the new record lists first", prop.ForAll(
		func(title, author, genre string, price float64, stock int) bool {
			api := newTestAPI(t)

			// an older record that must end up second
			api.do(http.MethodPost, "/api/books", map[string]interface{}{
				"title": "Older", "author": "Someone", "genre": "Misc", "price": 1,
			})

			w := api.do(http.MethodPost, "/api/books", map[string]interface{}{
				"title": title, "author": author, "genre": genre, "price": price, "stock": stock,
			})
			if w.Code != http.StatusCreated {
				return false
			}

			var created domain.Book
			if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
				return false
			}
			if created.ID == "" || created.Title != title || created.Author != author ||
				created.Genre != genre || created.Price != price || created.Stock != stock {
				return false
			}

			w = api.do(http.MethodGet, "/api/books", nil)
			var books []domain.Book
			if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
				return false
			}
			return len(books) == 2 && books[0].ID == created.ID
		},
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.Float64Range(0.01, 10000),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreate_CoercesNumericStrings(t *testing.T) {
	api := newTestAPI(t)

	book := api.create(t, `{"title":"T","author":"A","genre":"G","price":"12.5","stock":"3","publishedYear":"2020"}`)
	if book.Price != 12.5 {
		t.Errorf("Expected price 12.5, got %v", book.Price)
	}
	if book.Stock != 3 {
		t.Errorf("Expected stock 3, got %d", book.Stock)
	}
	if book.PublishedYear == nil || *book.PublishedYear != 2020 {
		t.Errorf("Expected published year 2020, got %v", book.PublishedYear)
	}
}

func TestCreate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"non-numeric price", `{"title":"T","author":"A","genre":"G","price":"cheap"}`, "price must be a number"},
		{"boolean price", `{"title":"T","author":"A","genre":"G","price":true}`, "price must be a number"},
		{"fractional stock", `{"title":"T","author":"A","genre":"G","price":1,"stock":1.5}`, "stock must be an integer"},
		{"textual year", `{"title":"T","author":"A","genre":"G","price":1,"publishedYear":"soon"}`, "publishedYear must be an integer"},
		{"null price", `{"title":"T","author":"A","genre":"G","price":null}`, msgRequiredFields},
		{"blank title", `{"title":"  ","author":"A","genre":"G","price":1}`, msgRequiredFields},
		{"malformed json", `{"title":`, msgInvalidBody},
		{"numeric title", `{"title":5,"author":"A","genre":"G","price":1}`, msgInvalidBody},
		{"empty body", ``, msgInvalidBody},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI(t)

			w := api.do(http.MethodPost, "/api/books", tc.body)
			expectError(t, w, http.StatusBadRequest, tc.message)
			if n := api.storeSize(t); n != 0 {
				t.Errorf("Expected nothing stored, got %d", n)
			}
		})
	}
}

func TestCreate_IgnoresClientSuppliedIdentity(t *testing.T) {
	api := newTestAPI(t)
	supplied := domain.NewID()

	book := api.create(t, map[string]interface{}{
		"id": supplied, "createdAt": "1999-01-01T00:00:00Z",
		"title": "T", "author": "A", "genre": "G", "price": 1,
	})
	if book.ID == supplied {
		t.Errorf("Expected a server-assigned id, got the supplied %s", supplied)
	}
	if !book.CreatedAt.After(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected a server-assigned createdAt, got %v", book.CreatedAt)
	}
}

func TestGet_ReturnsBook(t *testing.T) {
	api := newTestAPI(t)
	created := api.create(t, map[string]interface{}{
		"title": "Dune", "author": "Frank Herbert", "genre": "SF", "price": 9.99, "publishedYear": 1965,
	})

	for _, id := range []string{created.ID, strings.ToUpper(created.ID)} {
		w := api.do(http.MethodGet, "/api/books/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", id, w.Code)
		}
		got := decodeBook(t, w)
		if got.ID != created.ID || got.Title != "Dune" || got.Price != 9.99 {
			t.Errorf("Expected %+v, got %+v", created, got)
		}
		if got.PublishedYear == nil || *got.PublishedYear != 1965 {
			t.Errorf("Expected published year 1965, got %v", got.PublishedYear)
		}
	}
}

func TestGet_Errors(t *testing.T) {
	api := newTestAPI(t)

	expectError(t, api.do(http.MethodGet, "/api/books/not-an-id", nil), http.StatusBadRequest, msgInvalidID)
	expectError(t, api.do(http.MethodGet, "/api/books/"+domain.NewID(), nil), http.StatusNotFound, msgNotFound)
}

func TestUpdate_Errors(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPut, "/api/books/not-an-id", map[string]interface{}{"price": 999})
	expectError(t, w, http.StatusBadRequest, msgInvalidID)

	w = api.do(http.MethodPut, "/api/books/"+domain.NewID(), map[string]interface{}{"price": 999})
	expectError(t, w, http.StatusNotFound, msgNotFound)

	// an empty body still reaches the store
	w = api.do(http.MethodPut, "/api/books/"+domain.NewID(), nil)
	expectError(t, w, http.StatusNotFound, msgNotFound)

	created := api.create(t, map[string]interface{}{"title": "T", "author": "A", "genre": "G", "price": 1})
	w = api.do(http.MethodPut, "/api/books/"+created.ID, `{"title":`)
	expectError(t, w, http.StatusBadRequest, msgInvalidBody)
}

func TestUpdate_EmptyBodyRefreshesUpdatedAt(t *testing.T) {
	api := newTestAPI(t)
	created := api.create(t, map[string]interface{}{
		"title": "T", "author": "A", "genre": "G", "price": 10, "stock": 4,
	})

	// updatedAt has millisecond precision
	time.Sleep(5 * time.Millisecond)

	w := api.do(http.MethodPut, "/api/books/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	updated := decodeBook(t, w)
	if updated.Title != "T" || updated.Author != "A" || updated.Genre != "G" ||
		updated.Price != 10 || updated.Stock != 4 {
		t.Errorf("Expected fields unchanged, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("Expected createdAt %v, got %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("Expected updatedAt after %v, got %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdate_RejectsEmptyStrings(t *testing.T) {
	api := newTestAPI(t)
	created := api.create(t, map[string]interface{}{"title": "T", "author": "A", "genre": "G", "price": 1})

	w := api.do(http.MethodPut, "/api/books/"+created.ID, map[string]interface{}{"genre": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	resp := decodeError(t, w)
	if resp.Error != msgEmptyFields {
		t.Errorf("Expected error %q, got %q", msgEmptyFields, resp.Error)
	}
	if len(resp.Details) != 1 || resp.Details[0].Field != "genre" {
		t.Errorf("Expected one detail for genre, got %+v", resp.Details)
	}
}

func TestProperty_PriceUpdateChangesOnlyPrice(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("updating {price} leaves other fields intact", prop.ForAll(
		func(price float64, year int) bool {
			api := newTestAPI(t)

			w := api.do(http.MethodPost, "/api/books", map[string]interface{}{
				"title": "T", "author": "A", "genre": "G", "price": 10, "stock": 7, "publishedYear": year,
			})
			if w.Code != http.StatusCreated {
				return false
			}
			var created domain.Book
			json.Unmarshal(w.Body.Bytes(), &created)

			w = api.do(http.MethodPut, "/api/books/"+created.ID, map[string]interface{}{"price": price})
			if w.Code != http.StatusOK {
				return false
			}
			var updated domain.Book
			json.Unmarshal(w.Body.Bytes(), &updated)

			return updated.ID == created.ID &&
				updated.Price == price &&
				updated.Title == "T" && updated.Author == "A" && updated.Genre == "G" &&
				updated.Stock == 7 &&
				updated.PublishedYear != nil && *updated.PublishedYear == year &&
				updated.CreatedAt.Equal(created.CreatedAt)
		},
		gen.Float64Range(0.01, 10000),
		gen.IntRange(1000, 2025),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDelete_Errors(t *testing.T) {
	api := newTestAPI(t)

	expectError(t, api.do(http.MethodDelete, "/api/books/123", nil), http.StatusBadRequest, msgInvalidID)

	created := api.create(t, map[string]interface{}{"title": "T", "author": "A", "genre": "G", "price": 1})

	if w := api.do(http.MethodDelete, "/api/books/"+created.ID, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expectError(t, api.do(http.MethodDelete, "/api/books/"+created.ID, nil), http.StatusNotFound, msgNotFound)
}

// failingRepository simulates a store that has lost its connection
type failingRepository struct {
	repository.BookRepository
	err error
}

func (f *failingRepository) List(ctx context.Context) ([]*domain.Book, error) {
	return nil, f.err
}

func (f *failingRepository) Create(ctx context.Context, book *domain.Book) error {
	return f.err
}

func TestStoreFailure_Returns500WithDescriptionAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	api := newTestAPIWith(&failingRepository{err: errors.New("server selection timeout")}, zap.New(core))

	expectError(t, api.do(http.MethodGet, "/api/books", nil), http.StatusInternalServerError, "server selection timeout")

	w := api.do(http.MethodPost, "/api/books", map[string]interface{}{"title": "T", "author": "A", "genre": "G", "price": 1})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 2 {
		t.Errorf("Expected 2 error logs, got %d", n)
	}
}
