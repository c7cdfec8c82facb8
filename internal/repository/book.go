package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"novara/internal/model"
)

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, author, description, price::text AS price, condition, genre,
	tags, seller_id, image_url, is_sold, created_at`

// Create inserts a new, unsold book.
func (r *bookRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (title, author, description, price, condition, genre, tags, seller_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_sold, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		b.Title, b.Author, b.Description, b.Price, b.Condition, b.Genre,
		b.Tags, b.SellerID, b.ImageURL,
	).Scan(&b.ID, &b.IsSold, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	var b model.Book
	err := r.db.GetContext(ctx, &b, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.SelectContext(ctx, &books, `SELECT `+bookColumns+` FROM books ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (r *bookRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Book, error) {
	books := []model.Book{}
	query := `SELECT ` + bookColumns + ` FROM books WHERE seller_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &books, query, sellerID); err != nil {
		return nil, fmt.Errorf("list books by seller: %w", err)
	}
	return books, nil
}

// Update builds a SET clause from the present fields only.
func (r *bookRepository) Update(ctx context.Context, id int64, u model.BookUpdate) (*model.Book, error) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Author != nil {
		add("author", *u.Author)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.Condition != nil {
		add("condition", *u.Condition)
	}
	if u.Genre != nil {
		add("genre", *u.Genre)
	}
	if u.Tags != nil {
		add("tags", pq.StringArray(*u.Tags))
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), bookColumns)

	var b model.Book
	err := r.db.GetContext(ctx, &b, query, args...)
	if err == sql.ErrNoRows {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return &b, nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete book rows affected: %w", err)
	}
	return rows > 0, nil
}
