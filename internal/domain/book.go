package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultStock is applied when a book is created without a stock value
const DefaultStock = 0

var ErrInvalidID = errors.New("invalid book id")

// Book represents a book record in the inventory
type Book struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Author        string    `json:"author" db:"author"`
	Genre         string    `json:"genre" db:"genre"`
	Price         float64   `json:"price" db:"price"`
	Stock         int       `json:"stock" db:"stock"`
	PublishedYear *int      `json:"publishedYear,omitempty" db:"published_year"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// BookPatch holds the mutable fields of a book. Nil fields are left unchanged.
type BookPatch struct {
	Title         *string
	Author        *string
	Genre         *string
	Price         *float64
	Stock         *int
	PublishedYear *int
}

// IsEmpty reports whether the patch changes nothing
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Genre == nil &&
		p.Price == nil && p.Stock == nil && p.PublishedYear == nil
}

// Apply merges the patch into b. ID and CreatedAt are never touched.
func (b *Book) Apply(p BookPatch) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	if p.PublishedYear != nil {
		year := *p.PublishedYear
		b.PublishedYear = &year
	}
}

// NewID returns a fresh identifier in the document store's ObjectID format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates id and returns its canonical lower-case form, or ErrInvalidID.
func ParseID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}
