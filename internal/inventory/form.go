package inventory

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"book-inventory/internal/client"
	"book-inventory/internal/domain"
)

var (
	ErrIncompleteForm = errors.New("please fill in all fields")
	ErrInvalidPrice   = errors.New("please enter a valid price")
	ErrInvalidStock   = errors.New("please enter a valid stock quantity")
	ErrInvalidYear    = errors.New("please enter a valid published year")
)

const minPublishedYear = 1000

// Form holds the raw text of the add and edit dialogs
type Form struct {
	Title         string
	Author        string
	Genre         string
	Price         string
	Stock         string
	PublishedYear string
}

// FormFromBook pre-fills a form with b's values
func FormFromBook(b domain.Book) Form {
	f := Form{
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		Price:  strconv.FormatFloat(b.Price, 'f', -1, 64),
		Stock:  strconv.Itoa(b.Stock),
	}
	if b.PublishedYear != nil {
		f.PublishedYear = strconv.Itoa(*b.PublishedYear)
	}
	return f
}

// Parse validates the form. Every field is required; price must be positive,
// stock non-negative and the year between 1000 and now's year.
func (f Form) Parse(now time.Time) (client.NewBook, error) {
	title := strings.TrimSpace(f.Title)
	author := strings.TrimSpace(f.Author)
	genre := strings.TrimSpace(f.Genre)

	if title == "" || author == "" || genre == "" ||
		strings.TrimSpace(f.Price) == "" || strings.TrimSpace(f.Stock) == "" ||
		strings.TrimSpace(f.PublishedYear) == "" {
		return client.NewBook{}, ErrIncompleteForm
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return client.NewBook{}, ErrInvalidPrice
	}

	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil || stock < 0 {
		return client.NewBook{}, ErrInvalidStock
	}

	year, err := strconv.Atoi(strings.TrimSpace(f.PublishedYear))
	if err != nil || year < minPublishedYear || year > now.Year() {
		return client.NewBook{}, ErrInvalidYear
	}

	return client.NewBook{
		Title:         title,
		Author:        author,
		Genre:         genre,
		Price:         price,
		Stock:         stock,
		PublishedYear: &year,
	}, nil
}
