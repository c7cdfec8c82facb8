package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
	"novara/internal/queue"
)

func TestOrderService_Place(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune", Price: "12"})
	ctx := context.Background()

	order, err := f.orders.Place(ctx, bob.ID, model.CreateOrderRequest{BookID: book.ID, TotalAmount: "12"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, order.BuyerID)
	assert.Equal(t, "12.00", order.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	stored, err := f.repos.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSold)

	last := f.publisher.Events[len(f.publisher.Events)-1]
	assert.Equal(t, queue.EventOrderPlaced, last.Type)
	assert.Equal(t, "12.00", last.Amount)
}

func TestOrderService_Place_Rejections(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune"})
	ctx := context.Background()

	_, err := f.orders.Place(ctx, bob.ID, model.CreateOrderRequest{BookID: 99, TotalAmount: "1"})
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = f.orders.Place(ctx, bob.ID, model.CreateOrderRequest{BookID: book.ID, TotalAmount: "1"})
	require.NoError(t, err)

	_, err = f.orders.Place(ctx, alice.ID, model.CreateOrderRequest{BookID: book.ID, TotalAmount: "1"})
	assert.ErrorIs(t, err, model.ErrBookAlreadySold)

	orders, err := f.orders.ListByBuyer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, orders, "a rejected order writes nothing")
}

func TestOrderService_ListBySeller(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune"})
	ctx := context.Background()

	_, err := f.orders.Place(ctx, bob.ID, model.CreateOrderRequest{BookID: book.ID, TotalAmount: "10"})
	require.NoError(t, err)

	sales, err := f.orders.ListBySeller(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, bob.ID, sales[0].BuyerID)

	sales, err = f.orders.ListBySeller(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	book := f.listBook(t, alice.ID, model.CreateBookRequest{Title: "Dune"})
	ctx := context.Background()

	order, err := f.orders.Place(ctx, bob.ID, model.CreateOrderRequest{BookID: book.ID, TotalAmount: "10"})
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, bob.ID, model.OrderStatusShipped)
	assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized, "buyers cannot change status")

	_, err = f.orders.UpdateStatus(ctx, 99, alice.ID, model.OrderStatusShipped)
	assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)

	updated, err := f.orders.UpdateStatus(ctx, order.ID, alice.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	last := f.publisher.Events[len(f.publisher.Events)-1]
	assert.Equal(t, queue.EventOrderStatusChanged, last.Type)
	assert.Equal(t, model.OrderStatusShipped, last.Status)
}
