package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"novara/internal/model"
)

func TestMatchesSearch(t *testing.T) {
	book := &model.Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Description: strPtr("Desert planet epic"),
		Tags:        pq.StringArray{"SciFi", "classic"},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"dune", true},
		{"HERBERT", true},
		{"planet", true},
		{"scifi", true},
		{"CLASS", true},
		{"", true},
		{"tolkien", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSearch(book, tt.query))
		})
	}
}

func TestMatchesSearch_NilDescription(t *testing.T) {
	book := &model.Book{Title: "Emma", Author: "Austen"}

	assert.False(t, MatchesSearch(book, "desert"))
	assert.True(t, MatchesSearch(book, "emm"))
}

func TestMatchesFilter(t *testing.T) {
	book := &model.Book{Genre: "Fiction", Condition: "Good", Price: "10.00"}
	ten := decimal.RequireFromString("10")
	below := decimal.RequireFromString("9.99")
	low := decimal.RequireFromString("5")

	tests := []struct {
		name   string
		filter model.BookFilter
		want   bool
	}{
		{name: "empty filter", filter: model.BookFilter{}, want: true},
		{name: "genre match", filter: model.BookFilter{Genre: "Fiction"}, want: true},
		{name: "genre is case sensitive", filter: model.BookFilter{Genre: "fiction"}, want: false},
		{name: "condition mismatch", filter: model.BookFilter{Condition: "New"}, want: false},
		{name: "min bound inclusive", filter: model.BookFilter{MinPrice: &ten}, want: true},
		{name: "max bound excludes", filter: model.BookFilter{MaxPrice: &below}, want: false},
		{name: "min and max", filter: model.BookFilter{MinPrice: &low, MaxPrice: &ten}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesFilter(book, tt.filter))
		})
	}
}

func TestMatchesFilter_UnparsablePrice(t *testing.T) {
	book := &model.Book{Genre: "Fiction", Price: "free"}
	zero := decimal.Zero

	assert.True(t, MatchesFilter(book, model.BookFilter{Genre: "Fiction"}))
	assert.False(t, MatchesFilter(book, model.BookFilter{MinPrice: &zero}))
}

func TestParseFilter(t *testing.T) {
	_, ok := ParseFilter(model.BookQuery{})
	assert.False(t, ok)

	f, ok := ParseFilter(model.BookQuery{MinPrice: "abc", MaxPrice: "12.5"})
	assert.True(t, ok)
	assert.Nil(t, f.MinPrice, "unparsable bounds are dropped")
	if assert.NotNil(t, f.MaxPrice) {
		assert.True(t, f.MaxPrice.Equal(decimal.RequireFromString("12.5")))
	}

	f, ok = ParseFilter(model.BookQuery{MinPrice: "1e20000000", MaxPrice: "-3"})
	assert.True(t, ok)
	assert.Nil(t, f.MinPrice, "exponent bounds are dropped")
	assert.Nil(t, f.MaxPrice, "negative bounds are dropped")

	f, ok = ParseFilter(model.BookQuery{Genre: "Fiction"})
	assert.True(t, ok)
	assert.Equal(t, "Fiction", f.Genre)
}
