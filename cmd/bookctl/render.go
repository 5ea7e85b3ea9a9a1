package main

import (
	"strconv"

	"book-inventory/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	authorStyle = cellStyle.Foreground(lipgloss.Color("#8b9dc3"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const authorColumn = 2

func renderDashboard(total int) string {
	return totalStyle.Render("Total books: " + strconv.Itoa(total))
}

func renderBooks(books []domain.Book) string {
	if len(books) == 0 {
		return emptyStyle.Render("No books found")
	}

	rows := make([][]string, 0, len(books))
	for _, b := range books {
		year := ""
		if b.PublishedYear != nil {
			year = strconv.Itoa(*b.PublishedYear)
		}
		rows = append(rows, []string{
			b.ID,
			b.Title,
			b.Author,
			b.Genre,
			"₹" + strconv.FormatFloat(b.Price, 'f', 2, 64),
			strconv.Itoa(b.Stock),
			year,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Author", "Genre", "Price", "Stock", "Published Year").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == authorColumn:
				return authorStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}
