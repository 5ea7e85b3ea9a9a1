package inventory

import (
	"fmt"
	"strings"

	"book-inventory/internal/domain"
)

// FilterMode selects which fields a search matches against
type FilterMode string

const (
	FilterAll    FilterMode = "all"
	FilterAuthor FilterMode = "author"
	FilterGenre  FilterMode = "genre"
)

// ParseFilterMode validates a mode name
func ParseFilterMode(s string) (FilterMode, error) {
	switch mode := FilterMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case FilterAll, FilterAuthor, FilterGenre:
		return mode, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown filter %q: want all, author or genre", s)
	}
}

// Filter returns the books matching query, case-insensitively, in their
// original order. An empty query matches everything.
func Filter(books []domain.Book, query string, mode FilterMode) []domain.Book {
	if query == "" {
		return books
	}
	q := strings.ToLower(query)

	out := []domain.Book{}
	for _, b := range books {
		if matches(b, q, mode) {
			out = append(out, b)
		}
	}
	return out
}

func matches(b domain.Book, q string, mode FilterMode) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	switch mode {
	case FilterAuthor:
		return contains(b.Author)
	case FilterGenre:
		return contains(b.Genre)
	default:
		return contains(b.Title) || contains(b.Author) || contains(b.Genre)
	}
}
