package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"novara/internal/model"
	"novara/internal/repository"
)

// MatchesSearch reports whether query occurs, case-insensitively, in the book's
// title, author, description or any tag. The empty query matches every book.
func MatchesSearch(b *model.Book, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
		return true
	}
	if b.Description != nil && strings.Contains(strings.ToLower(*b.Description), q) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// MatchesFilter reports whether the book satisfies every predicate set in f.
// A price that does not parse never satisfies a min or max bound.
func MatchesFilter(b *model.Book, f model.BookFilter) bool {
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.Condition != "" && b.Condition != f.Condition {
		return false
	}
	if f.MinPrice == nil && f.MaxPrice == nil {
		return true
	}

	price, err := model.ParseAmount(b.Price)
	if err != nil {
		return false
	}
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// ParseFilter turns raw query parameters into a filter. ok is false when no
// filter parameter was supplied at all. Bounds that do not parse are dropped.
func ParseFilter(q model.BookQuery) (f model.BookFilter, ok bool) {
	ok = q.Genre != "" || q.Condition != "" || q.MinPrice != "" || q.MaxPrice != ""
	f.Genre = q.Genre
	f.Condition = q.Condition
	f.MinPrice = parseBound(q.MinPrice)
	f.MaxPrice = parseBound(q.MaxPrice)
	return f, ok
}

func parseBound(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := model.ParseAmount(s)
	if err != nil {
		return nil
	}
	return &d
}

// userSummaries resolves user summaries once per request.
type userSummaries struct {
	users repository.UserRepository
	seen  map[int64]model.UserSummary
}

func newUserSummaries(users repository.UserRepository) *userSummaries {
	return &userSummaries{users: users, seen: make(map[int64]model.UserSummary)}
}

// get returns the user's summary, or the "Unknown" placeholder when the user is gone.
func (u *userSummaries) get(ctx context.Context, id int64) (model.UserSummary, error) {
	if s, ok := u.seen[id]; ok {
		return s, nil
	}

	var summary model.UserSummary
	user, err := u.users.GetByID(ctx, id)
	switch {
	case err == nil:
		summary = user.Summary()
	case errors.Is(err, model.ErrUserNotFound):
		summary = model.UnknownUserSummary(id)
	default:
		return model.UserSummary{}, err
	}

	u.seen[id] = summary
	return summary, nil
}
