package repository

import (
	"context"

	"novara/internal/model"
)

// Absence is always reported with the model's sentinel errors (ErrUserNotFound,
// ErrBookNotFound, ...), never wrapped, so callers can match with errors.Is.

type UserRepository interface {
	// Create assigns the next id and creation time. Fails with ErrUsernameExists or
	// ErrEmailExists if either is taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateProfilePicture sets or, with nil, clears the picture URL.
	UpdateProfilePicture(ctx context.Context, id int64, picture *string) (*model.User, error)
}

type BookRepository interface {
	// Create assigns the next id and creation time and resets IsSold to false.
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	// List returns every book in insertion order.
	List(ctx context.Context) ([]model.Book, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]model.Book, error)
	// Update merges the present fields over the stored book. No ownership check.
	Update(ctx context.Context, id int64, update model.BookUpdate) (*model.Book, error)
	// Delete reports whether a book existed to remove.
	Delete(ctx context.Context, id int64) (bool, error)
}

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id int64) (*model.Blog, error)
	List(ctx context.Context) ([]model.Blog, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Blog, error)
	Update(ctx context.Context, id int64, update model.BlogUpdate) (*model.Blog, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error)
	// ListBySeller returns orders placed on books the seller listed.
	ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error)
	// PlaceOrder creates the order and marks its book sold as one atomic step.
	// Fails with ErrBookNotFound or ErrBookAlreadySold without writing anything.
	PlaceOrder(ctx context.Context, order *model.Order) error
}

type SessionRepository interface {
	Save(ctx context.Context, session *model.Session) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// Store groups the entity repositories of one backend.
type Store struct {
	Users  UserRepository
	Books  BookRepository
	Blogs  BlogRepository
	Orders OrderRepository
}
