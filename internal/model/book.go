package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Book is a listing offered for sale by a seller.
// Author is the book's author, not the seller.
type Book struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Author      string         `db:"author" json:"author"`
	Description *string        `db:"description" json:"description"`
	Price       string         `db:"price" json:"price"`
	Condition   string         `db:"condition" json:"condition"`
	Genre       string         `db:"genre" json:"genre"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	SellerID    int64          `db:"seller_id" json:"sellerId"`
	ImageURL    *string        `db:"image_url" json:"imageUrl"`
	IsSold      bool           `db:"is_sold" json:"isSold"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// BookWithSeller is a book enriched with its seller's summary.
type BookWithSeller struct {
	Book
	Seller UserSummary `json:"seller"`
}

// CreateBookRequest is the request body for listing a book.
// Any seller id in the payload is ignored; the caller becomes the seller.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Description *string  `json:"description"`
	Price       string   `json:"price" validate:"required,decimal"`
	Condition   string   `json:"condition" validate:"required"`
	Genre       string   `json:"genre" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateBookRequest is a partial update; nil fields are left unchanged.
type UpdateBookRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Author      *string   `json:"author" validate:"omitempty,min=1"`
	Description *string   `json:"description"`
	Price       *string   `json:"price" validate:"omitempty,decimal"`
	Condition   *string   `json:"condition" validate:"omitempty,min=1"`
	Genre       *string   `json:"genre" validate:"omitempty,min=1"`
	Tags        *[]string `json:"tags" validate:"omitempty,dive,required"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
}

// BookUpdate is the store-level shallow merge applied to a book.
type BookUpdate struct {
	Title       *string
	Author      *string
	Description *string
	Price       *string
	Condition   *string
	Genre       *string
	Tags        *[]string
	ImageURL    *string
}

// Apply merges the present fields over b.
func (u BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Description != nil {
		b.Description = u.Description
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Condition != nil {
		b.Condition = *u.Condition
	}
	if u.Genre != nil {
		b.Genre = *u.Genre
	}
	if u.Tags != nil {
		b.Tags = append(pq.StringArray{}, (*u.Tags)...)
	}
	if u.ImageURL != nil {
		b.ImageURL = u.ImageURL
	}
}

// BookQuery carries the raw list parameters of GET /api/books.
type BookQuery struct {
	Search    string
	Genre     string
	Condition string
	MinPrice  string
	MaxPrice  string
}

// BookFilter is the parsed filter predicate set. Nil/empty fields impose no constraint.
type BookFilter struct {
	Genre     string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// Book errors
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookAlreadySold = errors.New("book already sold")
)
