package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"book-inventory/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// BooksCollection is the collection holding book documents
const BooksCollection = "books"

// bookDocument is the stored shape of a book
type bookDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	Author        string             `bson:"author"`
	Genre         string             `bson:"genre"`
	Price         float64            `bson:"price"`
	Stock         int                `bson:"stock"`
	PublishedYear *int               `bson:"publishedYear,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toDocument(book *domain.Book) (bookDocument, error) {
	oid, err := primitive.ObjectIDFromHex(book.ID)
	if err != nil {
		return bookDocument{}, domain.ErrInvalidID
	}
	return bookDocument{
		ID:            oid,
		Title:         book.Title,
		Author:        book.Author,
		Genre:         book.Genre,
		Price:         book.Price,
		Stock:         book.Stock,
		PublishedYear: book.PublishedYear,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}, nil
}

func (d bookDocument) toDomain() *domain.Book {
	return &domain.Book{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Author:        d.Author,
		Genre:         d.Genre,
		Price:         d.Price,
		Stock:         d.Stock,
		PublishedYear: d.PublishedYear,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

type mongoBookRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoBookRepository creates a BookRepository on the books collection of
// the given database and makes sure the listing index exists.
func NewMongoBookRepository(ctx context.Context, client *mongo.Client, database string) (BookRepository, error) {
	coll := client.Database(database).Collection(BooksCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create books index: %w", err)
	}

	return &mongoBookRepository{client: client, coll: coll}, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func (r *mongoBookRepository) Create(ctx context.Context, book *domain.Book) error {
	doc, err := toDocument(book)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// List returns every book sorted by createdAt descending. The ObjectID
// embeds a counter, so _id descending breaks ties by insertion order.
func (r *mongoBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]*domain.Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, doc.toDomain())
	}
	return books, nil
}

func (r *mongoBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bookDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return doc.toDomain(), nil
}

func patchToSet(patch domain.BookPatch, updatedAt time.Time) bson.D {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *patch.Author})
	}
	if patch.Genre != nil {
		set = append(set, bson.E{Key: "genre", Value: *patch.Genre})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *patch.Stock})
	}
	if patch.PublishedYear != nil {
		set = append(set, bson.E{Key: "publishedYear", Value: *patch.PublishedYear})
	}
	return append(set, bson.E{Key: "updatedAt", Value: updatedAt})
}

func (r *mongoBookRepository) Update(ctx context.Context, id string, patch domain.BookPatch, updatedAt time.Time) (*domain.Book, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.D{{Key: "$set", Value: patchToSet(patch, updatedAt)}}

	var doc bookDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoBookRepository) Delete(ctx context.Context, id string) (*domain.Book, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bookDocument
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoBookRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *mongoBookRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
