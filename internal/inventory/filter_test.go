package inventory

import (
	"strings"
	"testing"

	"book-inventory/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogue = []domain.Book{
	{ID: "1", Title: "The Silent Algorithm", Author: "Mira K. Singh", Genre: "Computer Science"},
	{ID: "2", Title: "Learning with Data", Author: "Vikram Singh", Genre: "Data Science"},
	{ID: "3", Title: "Ocean of Dreams", Author: "Asha Thomas", Genre: "Romance"},
}

func ids(books []domain.Book) []string {
	out := []string{}
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestFilter_Modes(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, ids(Filter(catalogue, "SINGH", FilterAll)))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(catalogue, "singh", FilterAuthor)))
	assert.Empty(t, Filter(catalogue, "singh", FilterGenre))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(catalogue, "science", FilterGenre)))
	assert.Equal(t, []string{"3"}, ids(Filter(catalogue, "dreams", FilterAll)))
	assert.Empty(t, Filter(catalogue, "dreams", FilterAuthor))
}

func TestFilter_EmptyQueryMatchesAll(t *testing.T) {
	assert.Len(t, Filter(catalogue, "", FilterGenre), len(catalogue))
}

func TestProperty_FilterResultsAreSubsetInOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every result matches and order is preserved", prop.ForAll(
		func(query string, mode FilterMode) bool {
			result := Filter(catalogue, query, mode)

			last := -1
			for _, b := range result {
				idx := -1
				for i, c := range catalogue {
					if c.ID == b.ID {
						idx = i
					}
				}
				if idx <= last {
					return false
				}
				last = idx

				q := strings.ToLower(query)
				if query != "" && !matches(b, q, mode) {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.OneConstOf(FilterAll, FilterAuthor, FilterGenre),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestParseFilterMode(t *testing.T) {
	mode, err := ParseFilterMode("Author")
	require.NoError(t, err)
	assert.Equal(t, FilterAuthor, mode)

	mode, err = ParseFilterMode("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, mode)

	_, err = ParseFilterMode("title")
	assert.Error(t, err)
}
