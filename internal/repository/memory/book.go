package memory

import (
	"context"
	"time"

	"novara/internal/model"
)

type bookRepository struct {
	s *Store
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	book.ID = r.s.nextBookID
	r.s.nextBookID++
	book.IsSold = false
	book.CreatedAt = time.Now().UTC()

	r.s.books[book.ID] = copyBook(book)
	r.s.bookOrder = append(r.s.bookOrder, book.ID)
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return copyBook(b), nil
}

func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	return r.filter(func(*model.Book) bool { return true }), nil
}

func (r *bookRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Book, error) {
	return r.filter(func(b *model.Book) bool { return b.SellerID == sellerID }), nil
}

func (r *bookRepository) Update(ctx context.Context, id int64, update model.BookUpdate) (*model.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	updated := copyBook(b)
	update.Apply(updated)
	r.s.books[id] = updated
	return copyBook(updated), nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return false, nil
	}
	delete(r.s.books, id)
	r.s.bookOrder = pruneOrder(r.s.bookOrder, id)
	return true, nil
}

func (r *bookRepository) filter(match func(*model.Book) bool) []model.Book {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	books := make([]model.Book, 0, len(r.s.bookOrder))
	for _, id := range r.s.bookOrder {
		if b := r.s.books[id]; match(b) {
			books = append(books, *copyBook(b))
		}
	}
	return books
}
