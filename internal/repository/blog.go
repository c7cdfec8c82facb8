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

type blogRepository struct {
	db *sqlx.DB
}

func NewBlogRepository(db *sqlx.DB) BlogRepository {
	return &blogRepository{db: db}
}

const blogColumns = `id, title, content, excerpt, author_id, tags, image_url, created_at`

func (r *blogRepository) Create(ctx context.Context, b *model.Blog) error {
	query := `
		INSERT INTO blogs (title, content, excerpt, author_id, tags, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		b.Title, b.Content, b.Excerpt, b.AuthorID, b.Tags, b.ImageURL,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id int64) (*model.Blog, error) {
	var b model.Blog
	err := r.db.GetContext(ctx, &b, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrBlogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &b, nil
}

func (r *blogRepository) List(ctx context.Context) ([]model.Blog, error) {
	blogs := []model.Blog{}
	if err := r.db.SelectContext(ctx, &blogs, `SELECT `+blogColumns+` FROM blogs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return blogs, nil
}

func (r *blogRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Blog, error) {
	blogs := []model.Blog{}
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE author_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &blogs, query, authorID); err != nil {
		return nil, fmt.Errorf("list blogs by author: %w", err)
	}
	return blogs, nil
}

func (r *blogRepository) Update(ctx context.Context, id int64, u model.BlogUpdate) (*model.Blog, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Content != nil {
		add("content", *u.Content)
	}
	if u.Excerpt != nil {
		add("excerpt", *u.Excerpt)
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
	query := fmt.Sprintf(`UPDATE blogs SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), blogColumns)

	var b model.Blog
	err := r.db.GetContext(ctx, &b, query, args...)
	if err == sql.ErrNoRows {
		return nil, model.ErrBlogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return &b, nil
}

func (r *blogRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete blog: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete blog rows affected: %w", err)
	}
	return rows > 0, nil
}
