package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
	"novara/internal/queue"
)

func TestBookService_Create(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	book, err := f.books.Create(context.Background(), alice.ID, model.CreateBookRequest{
		Title:     "Dune",
		Author:    "Herbert",
		Price:     "9.9",
		Condition: "Good",
		Genre:     "SciFi",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, alice.ID, book.SellerID)
	assert.Equal(t, "9.90", book.Price)
	assert.False(t, book.IsSold)
	assert.NotNil(t, book.Tags)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, queue.EventBookListed, f.publisher.Events[0].Type)
	assert.Equal(t, book.ID, f.publisher.Events[0].BookID)
}

func TestBookService_Create_InvalidPrice(t *testing.T) {
	f := newFixture(t)

	_, err := f.books.Create(context.Background(), 1, model.CreateBookRequest{Title: "X", Price: "ten"})

	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestBookService_Create_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.New("redis down")

	book := f.listBook(t, 1, model.CreateBookRequest{Title: "Dune"})

	assert.Equal(t, int64(1), book.ID)
}

func TestBookService_List_Precedence(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune", Genre: "SciFi", Price: "12"})
	f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Emma", Genre: "Romance", Price: "5"})

	all, err := f.books.List(ctx, model.BookQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Seller.Username)

	// search wins over filters
	res, err := f.books.List(ctx, model.BookQuery{Search: "emma", Genre: "SciFi"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Emma", res[0].Title)

	res, err = f.books.List(ctx, model.BookQuery{MinPrice: "10"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Dune", res[0].Title)

	res, err = f.books.List(ctx, model.BookQuery{Genre: "Poetry"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBookService_GetByID_UnknownSeller(t *testing.T) {
	f := newFixture(t)
	book := f.listBook(t, 42, model.CreateBookRequest{Title: "Orphan"})

	got, err := f.books.GetByID(context.Background(), book.ID)

	require.NoError(t, err)
	assert.Equal(t, model.UnknownUserSummary(42), got.Seller)
}

func TestBookService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.books.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestBookService_Update(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune", Price: "10"})
	ctx := context.Background()

	_, err := f.books.Update(ctx, book.ID, bob.ID, model.UpdateBookRequest{Price: strPtr("1")})
	assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)

	_, err = f.books.Update(ctx, 99, alice.ID, model.UpdateBookRequest{Price: strPtr("1")})
	assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)

	updated, err := f.books.Update(ctx, book.ID, alice.ID, model.UpdateBookRequest{Price: strPtr("12.5")})
	require.NoError(t, err)
	assert.Equal(t, "12.50", updated.Price)
	assert.Equal(t, "Dune", updated.Title, "absent fields are kept")
}

func TestBookService_Delete(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune"})
	ctx := context.Background()

	assert.ErrorIs(t, f.books.Delete(ctx, book.ID, bob.ID), model.ErrNotFoundOrUnauthorized)
	require.NoError(t, f.books.Delete(ctx, book.ID, alice.ID))
	assert.ErrorIs(t, f.books.Delete(ctx, book.ID, alice.ID), model.ErrNotFoundOrUnauthorized)

	next := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Emma"})
	assert.Equal(t, int64(2), next.ID, "ids are never reused")

	types := make([]string, 0, len(f.publisher.Events))
	for _, e := range f.publisher.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{queue.EventBookListed, queue.EventBookDeleted, queue.EventBookListed}, types)
}
