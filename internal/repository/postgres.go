package repository

import "github.com/jmoiron/sqlx"

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// NewPostgresStore wires every repository to the same connection pool.
func NewPostgresStore(db *sqlx.DB) *Store {
	return &Store{
		Users:  NewUserRepository(db),
		Books:  NewBookRepository(db),
		Blogs:  NewBlogRepository(db),
		Orders: NewOrderRepository(db),
	}
}
