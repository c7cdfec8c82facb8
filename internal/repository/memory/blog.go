package memory

import (
	"context"
	"time"

	"novara/internal/model"
)

type blogRepository struct {
	s *Store
}

func (r *blogRepository) Create(ctx context.Context, blog *model.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	blog.ID = r.s.nextBlogID
	r.s.nextBlogID++
	blog.CreatedAt = time.Now().UTC()

	r.s.blogs[blog.ID] = copyBlog(blog)
	r.s.blogOrder = append(r.s.blogOrder, blog.ID)
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id int64) (*model.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.blogs[id]
	if !ok {
		return nil, model.ErrBlogNotFound
	}
	return copyBlog(b), nil
}

func (r *blogRepository) List(ctx context.Context) ([]model.Blog, error) {
	return r.filter(func(*model.Blog) bool { return true }), nil
}

func (r *blogRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Blog, error) {
	return r.filter(func(b *model.Blog) bool { return b.AuthorID == authorID }), nil
}

func (r *blogRepository) Update(ctx context.Context, id int64, update model.BlogUpdate) (*model.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.blogs[id]
	if !ok {
		return nil, model.ErrBlogNotFound
	}
	updated := copyBlog(b)
	update.Apply(updated)
	r.s.blogs[id] = updated
	return copyBlog(updated), nil
}

func (r *blogRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.blogs[id]; !ok {
		return false, nil
	}
	delete(r.s.blogs, id)
	r.s.blogOrder = pruneOrder(r.s.blogOrder, id)
	return true, nil
}

func (r *blogRepository) filter(match func(*model.Blog) bool) []model.Blog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	blogs := make([]model.Blog, 0, len(r.s.blogOrder))
	for _, id := range r.s.blogOrder {
		if b := r.s.blogs[id]; match(b) {
			blogs = append(blogs, *copyBlog(b))
		}
	}
	return blogs
}
