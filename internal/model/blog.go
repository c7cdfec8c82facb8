package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Blog is a post published by an author.
type Blog struct {
	ID        int64          `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"`
	Excerpt   string         `db:"excerpt" json:"excerpt"`
	AuthorID  int64          `db:"author_id" json:"authorId"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	ImageURL  *string        `db:"image_url" json:"imageUrl"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// BlogWithAuthor is a blog enriched with its author's summary.
type BlogWithAuthor struct {
	Blog
	Author UserSummary `json:"author"`
}

// CreateBlogRequest is the request body for publishing a blog post.
type CreateBlogRequest struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Excerpt  string   `json:"excerpt" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,dive,required"`
	ImageURL *string  `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateBlogRequest is a partial update; nil fields are left unchanged.
type UpdateBlogRequest struct {
	Title    *string   `json:"title" validate:"omitempty,min=1"`
	Content  *string   `json:"content" validate:"omitempty,min=1"`
	Excerpt  *string   `json:"excerpt" validate:"omitempty,min=1"`
	Tags     *[]string `json:"tags" validate:"omitempty,dive,required"`
	ImageURL *string   `json:"imageUrl" validate:"omitempty,url"`
}

// BlogUpdate is the store-level shallow merge applied to a blog.
type BlogUpdate struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Tags     *[]string
	ImageURL *string
}

// Apply merges the present fields over b.
func (u BlogUpdate) Apply(b *Blog) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Content != nil {
		b.Content = *u.Content
	}
	if u.Excerpt != nil {
		b.Excerpt = *u.Excerpt
	}
	if u.Tags != nil {
		b.Tags = append(pq.StringArray{}, (*u.Tags)...)
	}
	if u.ImageURL != nil {
		b.ImageURL = u.ImageURL
	}
}

// Blog errors
var (
	ErrBlogNotFound = errors.New("blog not found")
)
