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

type BookService struct {
	bookRepo  repository.BookRepository
	userRepo  repository.UserRepository
	publisher queue.Publisher
	logger    zerolog.Logger
}

func NewBookService(
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
	logger zerolog.Logger,
) *BookService {
	return &BookService{
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger.With().Str("component", "book_service").Logger(),
	}
}

// List applies the listing precedence: a non-empty search term wins, otherwise
// any filter parameter selects the filter, otherwise every book is returned.
func (s *BookService) List(ctx context.Context, q model.BookQuery) ([]model.BookWithSeller, error) {
	if q.Search != "" {
		return s.Search(ctx, q.Search)
	}
	if f, ok := ParseFilter(q); ok {
		return s.Filter(ctx, f)
	}
	return s.scan(ctx, func(*model.Book) bool { return true })
}

// Search returns enriched books matching query, in insertion order.
func (s *BookService) Search(ctx context.Context, query string) ([]model.BookWithSeller, error) {
	return s.scan(ctx, func(b *model.Book) bool { return MatchesSearch(b, query) })
}

// Filter returns enriched books satisfying every predicate in f, in insertion order.
func (s *BookService) Filter(ctx context.Context, f model.BookFilter) ([]model.BookWithSeller, error) {
	return s.scan(ctx, func(b *model.Book) bool { return MatchesFilter(b, f) })
}

func (s *BookService) scan(ctx context.Context, match func(*model.Book) bool) ([]model.BookWithSeller, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	sellers := newUserSummaries(s.userRepo)
	result := make([]model.BookWithSeller, 0, len(books))
	for i := range books {
		if !match(&books[i]) {
			continue
		}
		seller, err := sellers.get(ctx, books[i].SellerID)
		if err != nil {
			return nil, fmt.Errorf("enrich book %d: %w", books[i].ID, err)
		}
		result = append(result, model.BookWithSeller{Book: books[i], Seller: seller})
	}
	return result, nil
}

// GetByID returns the book with its seller attached.
func (s *BookService) GetByID(ctx context.Context, id int64) (*model.BookWithSeller, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seller, err := newUserSummaries(s.userRepo).get(ctx, book.SellerID)
	if err != nil {
		return nil, fmt.Errorf("enrich book %d: %w", id, err)
	}
	return &model.BookWithSeller{Book: *book, Seller: seller}, nil
}

// ListBySeller returns the seller's own books without enrichment.
func (s *BookService) ListBySeller(ctx context.Context, sellerID int64) ([]model.Book, error) {
	return s.bookRepo.ListBySeller(ctx, sellerID)
}

// Create lists a new book with sellerID as its seller.
func (s *BookService) Create(ctx context.Context, sellerID int64, req model.CreateBookRequest) (*model.Book, error) {
	price, err := model.NormalizeAmount(req.Price)
	if err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Price:       price,
		Condition:   req.Condition,
		Genre:       req.Genre,
		SellerID:    sellerID,
		ImageURL:    req.ImageURL,
	}
	book.Tags = append(pq.StringArray{}, req.Tags...)

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.publish(ctx, queue.NewBookListedEvent(book.ID, sellerID))
	s.logger.Info().Int64("book_id", book.ID).Int64("seller_id", sellerID).Msg("book listed")
	return book, nil
}

// Update applies a partial update. Only the seller may update; every other case,
// including a missing book, yields ErrNotFoundOrUnauthorized.
func (s *BookService) Update(ctx context.Context, id, callerID int64, req model.UpdateBookRequest) (*model.Book, error) {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return nil, err
	}

	update := model.BookUpdate{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Condition:   req.Condition,
		Genre:       req.Genre,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
	}
	if req.Price != nil {
		price, err := model.NormalizeAmount(*req.Price)
		if err != nil {
			return nil, err
		}
		update.Price = &price
	}

	book, err := s.bookRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// Delete removes the book if callerID is its seller.
func (s *BookService) Delete(ctx context.Context, id, callerID int64) error {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return err
	}

	deleted, err := s.bookRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !deleted {
		return model.ErrNotFoundOrUnauthorized
	}

	s.publish(ctx, queue.NewBookDeletedEvent(id, callerID))
	s.logger.Info().Int64("book_id", id).Int64("seller_id", callerID).Msg("book deleted")
	return nil
}

func (s *BookService) checkOwner(ctx context.Context, id, callerID int64) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return model.ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("get book: %w", err)
	}
	if book.SellerID != callerID {
		return model.ErrNotFoundOrUnauthorized
	}
	return nil
}

// publish is best-effort: the write already happened, so failures are only logged.
func (s *BookService) publish(ctx context.Context, event queue.Event) {
	if _, err := s.publisher.Publish(ctx, queue.StreamMarketplace, event); err != nil {
		s.logger.Warn().Err(err).Str("type", event.Type).Int64("book_id", event.BookID).Msg("failed to publish event")
	}
}
