package main

import (
	"context"
	"fmt"

	"book-inventory/internal/service"
)

type entry struct {
	title, author, genre string
	price                float64
	stock, year          int
}

var sampleBooks = []entry{
	{"The Silent Algorithm", "Mira K. Singh", "Computer Science", 499.00, 12, 2024},
	{"Whispers of the Wind", "Arjun Patel", "Fiction", 299.50, 5, 2021},
	{"Design Patterns Simplified", "Priya Reddy", "Software Engineering", 799.99, 8, 2023},
	{"Quantum Horizons", "Dr. S. Mehta", "Science", 649.00, 0, 2020},
	{"The Minimalist Coder", "Rohan Das", "Programming", 399.00, 20, 2022},
	{"Gardens of Kerala", "Leena Varma", "Travel", 249.00, 3, 2019},
	{"AI and the Human Mind", "Dr. Kavya Nair", "Artificial Intelligence", 899.00, 10, 2024},
	{"Ocean of Dreams", "Asha Thomas", "Romance", 199.00, 15, 2021},
	{"The Art of Debugging", "Sandeep Kumar", "Programming", 549.00, 6, 2023},
	{"Hidden Figures of History", "Meera Chacko", "Biography", 350.00, 9, 2018},
	{"Learning with Data", "Vikram Singh", "Data Science", 999.00, 7, 2022},
	{"The Forgotten Planet", "Ananya Rao", "Science Fiction", 450.00, 11, 2020},
	{"Cloud Chronicles", "Neha Gupta", "Technology", 675.00, 4, 2023},
	{"Mastering Node.js", "Rahul Iyer", "Web Development", 820.00, 13, 2024},
	{"The Data Whisperer", "Sneha Pillai", "Machine Learning", 1050.00, 2, 2023},
	{"Wildlife Wonders", "Arvind Nair", "Nature", 275.00, 6, 2019},
	{"The Logic of Love", "Ritika Sharma", "Romance", 180.00, 9, 2021},
	{"Digital Dreams", "Kiran Babu", "Technology", 700.00, 5, 2020},
	{"Cyber Chronicles", "Nisha George", "Cybersecurity", 950.00, 3, 2024},
	{"The Book of Algorithms", "Aditya Menon", "Computer Science", 880.00, 10, 2022},
}

// catalogue returns the sample books as create inputs
func catalogue() []service.CreateBookInput {
	inputs := make([]service.CreateBookInput, 0, len(sampleBooks))
	for _, e := range sampleBooks {
		price, stock, year := e.price, e.stock, e.year
		inputs = append(inputs, service.CreateBookInput{
			Title:         e.title,
			Author:        e.author,
			Genre:         e.genre,
			Price:         &price,
			Stock:         &stock,
			PublishedYear: &year,
		})
	}
	return inputs
}

// seed inserts every input in order and returns how many were stored.
// It stops at the first failure.
func seed(ctx context.Context, svc service.BookService, inputs []service.CreateBookInput) (int, error) {
	for i, input := range inputs {
		if _, err := svc.Create(ctx, input); err != nil {
			return i, fmt.Errorf("failed to insert %q: %w", input.Title, err)
		}
	}
	return len(inputs), nil
}
