package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"novara/internal/model"
	"novara/internal/queue"
	"novara/internal/repository"
)

type BlogService struct {
	blogRepo  repository.BlogRepository
	userRepo  repository.UserRepository
	publisher queue.Publisher
	logger    zerolog.Logger
}

func NewBlogService(
	blogRepo repository.BlogRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
	logger zerolog.Logger,
) *BlogService {
	return &BlogService{
		blogRepo:  blogRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger.With().Str("component", "blog_service").Logger(),
	}
}

// List returns enriched blogs, optionally restricted to one author.
func (s *BlogService) List(ctx context.Context, authorID *int64) ([]model.BlogWithAuthor, error) {
	var (
		blogs []model.Blog
		err   error
	)
	if authorID != nil {
		blogs, err = s.blogRepo.ListByAuthor(ctx, *authorID)
	} else {
		blogs, err = s.blogRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	authors := newUserSummaries(s.userRepo)
	result := make([]model.BlogWithAuthor, 0, len(blogs))
	for i := range blogs {
		author, err := authors.get(ctx, blogs[i].AuthorID)
		if err != nil {
			return nil, fmt.Errorf("enrich blog %d: %w", blogs[i].ID, err)
		}
		result = append(result, model.BlogWithAuthor{Blog: blogs[i], Author: author})
	}
	return result, nil
}

func (s *BlogService) GetByID(ctx context.Context, id int64) (*model.BlogWithAuthor, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	author, err := newUserSummaries(s.userRepo).get(ctx, blog.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("enrich blog %d: %w", id, err)
	}
	return &model.BlogWithAuthor{Blog: *blog, Author: author}, nil
}

// ListByAuthor returns the author's own blogs without enrichment.
func (s *BlogService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Blog, error) {
	return s.blogRepo.ListByAuthor(ctx, authorID)
}

func (s *BlogService) Create(ctx context.Context, authorID int64, req model.CreateBlogRequest) (*model.Blog, error) {
	blog := &model.Blog{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		AuthorID: authorID,
		ImageURL: req.ImageURL,
	}
	blog.Tags = append(pq.StringArray{}, req.Tags...)

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamMarketplace, queue.NewBlogPublishedEvent(blog.ID, authorID)); err != nil {
		s.logger.Warn().Err(err).Int64("blog_id", blog.ID).Msg("failed to publish blog_published")
	}
	s.logger.Info().Int64("blog_id", blog.ID).Int64("author_id", authorID).Msg("blog published")
	return blog, nil
}

// Update applies a partial update if callerID is the author.
func (s *BlogService) Update(ctx context.Context, id, callerID int64, req model.UpdateBlogRequest) (*model.Blog, error) {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return nil, err
	}

	blog, err := s.blogRepo.Update(ctx, id, model.BlogUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, model.ErrBlogNotFound) {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return blog, nil
}

// Delete removes the blog if callerID is the author.
func (s *BlogService) Delete(ctx context.Context, id, callerID int64) error {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return err
	}

	deleted, err := s.blogRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if !deleted {
		return model.ErrNotFoundOrUnauthorized
	}

	s.logger.Info().Int64("blog_id", id).Int64("author_id", callerID).Msg("blog deleted")
	return nil
}

func (s *BlogService) checkOwner(ctx context.Context, id, callerID int64) error {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBlogNotFound) {
			return model.ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("get blog: %w", err)
	}
	if blog.AuthorID != callerID {
		return model.ErrNotFoundOrUnauthorized
	}
	return nil
}
