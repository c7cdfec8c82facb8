// Package memory provides the in-memory entity store.
// State lives for the lifetime of the process and is lost on restart.
package memory

import (
	"sync"

	"github.com/lib/pq"

	"novara/internal/model"
	"novara/internal/repository"
)

// Store holds all four collections behind one lock so that multi-entity
// operations (order placement) are atomic.
type Store struct {
	mu sync.RWMutex

	users  map[int64]*model.User
	books  map[int64]*model.Book
	blogs  map[int64]*model.Blog
	orders map[int64]*model.Order

	// ids in insertion order; deleted ids are skipped on read
	userOrder  []int64
	bookOrder  []int64
	blogOrder  []int64
	orderOrder []int64

	nextUserID  int64
	nextBookID  int64
	nextBlogID  int64
	nextOrderID int64
}

// NewStore creates an empty store. Ids for every entity start at 1.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*model.User),
		books:       make(map[int64]*model.Book),
		blogs:       make(map[int64]*model.Blog),
		orders:      make(map[int64]*model.Order),
		nextUserID:  1,
		nextBookID:  1,
		nextBlogID:  1,
		nextOrderID: 1,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:  &userRepository{s: s},
		Books:  &bookRepository{s: s},
		Blogs:  &blogRepository{s: s},
		Orders: &orderRepository{s: s},
	}
}

// copies keep callers from mutating stored records through returned pointers

func copyUser(u *model.User) *model.User {
	c := *u
	c.ProfilePicture = copyString(u.ProfilePicture)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyBook(b *model.Book) *model.Book {
	c := *b
	c.Tags = copyTags(b.Tags)
	return &c
}

func copyBlog(b *model.Blog) *model.Blog {
	c := *b
	c.Tags = copyTags(b.Tags)
	return &c
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	return &c
}

func copyTags(tags pq.StringArray) pq.StringArray {
	if tags == nil {
		return nil
	}
	return append(pq.StringArray{}, tags...)
}

// pruneOrder drops a deleted id from an insertion-order slice.
func pruneOrder(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
