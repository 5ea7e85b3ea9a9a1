package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"book-inventory/internal/domain"
)

// APIError carries the status and description of a failed API call
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NewBook is the payload of an add request
type NewBook struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	PublishedYear *int    `json:"publishedYear,omitempty"`
}

// BookUpdate is the payload of an update request. Nil fields are not sent.
type BookUpdate struct {
	Title         *string  `json:"title,omitempty"`
	Author        *string  `json:"author,omitempty"`
	Genre         *string  `json:"genre,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	PublishedYear *int     `json:"publishedYear,omitempty"`
}

// AsUpdate returns an update that overwrites every field with b's values
func (b NewBook) AsUpdate() BookUpdate {
	return BookUpdate{
		Title:         &b.Title,
		Author:        &b.Author,
		Genre:         &b.Genre,
		Price:         &b.Price,
		Stock:         &b.Stock,
		PublishedYear: b.PublishedYear,
	}
}

// DeleteResult is the confirmation returned by a delete
type DeleteResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// wireBook accepts both "id" and the raw document "_id"
type wireBook struct {
	domain.Book
	DocumentID string `json:"_id"`
}

func (w wireBook) book() domain.Book {
	b := w.Book
	if b.ID == "" {
		b.ID = w.DocumentID
	}
	return b
}

// Client translates the four book operations into requests against the API.
// It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBooks fetches every book, newest first
func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var wire []wireBook
	if err := c.do(ctx, http.MethodGet, "/api/books", nil, &wire); err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, len(wire))
	for _, w := range wire {
		books = append(books, w.book())
	}
	return books, nil
}

// GetBook fetches the book identified by id
func (c *Client) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var wire wireBook
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &wire); err != nil {
		return nil, err
	}
	b := wire.book()
	return &b, nil
}

// AddBook creates a book and returns the stored record
func (c *Client) AddBook(ctx context.Context, book NewBook) (*domain.Book, error) {
	var wire wireBook
	if err := c.do(ctx, http.MethodPost, "/api/books", book, &wire); err != nil {
		return nil, err
	}
	b := wire.book()
	return &b, nil
}

// UpdateBook applies update to the book identified by id
func (c *Client) UpdateBook(ctx context.Context, id string, update BookUpdate) (*domain.Book, error) {
	var wire wireBook
	if err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), update, &wire); err != nil {
		return nil, err
	}
	b := wire.book()
	return &b, nil
}

// DeleteBook removes the book identified by id
func (c *Client) DeleteBook(ctx context.Context, id string) (*DeleteResult, error) {
	var res DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{StatusCode: status, Message: envelope.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
