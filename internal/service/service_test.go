package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
	"novara/internal/queue"
	"novara/internal/repository"
	"novara/internal/repository/memory"
)

type fixture struct {
	repos     *repository.Store
	publisher *queue.RecordingPublisher
	users     *UserService
	books     *BookService
	blogs     *BlogService
	orders    *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := memory.NewStore().Repositories()
	pub := &queue.RecordingPublisher{}
	log := zerolog.Nop()
	return &fixture{
		repos:     repos,
		publisher: pub,
		users:     NewUserService(repos.Users, log),
		books:     NewBookService(repos.Books, repos.Users, pub, log),
		blogs:     NewBlogService(repos.Blogs, repos.Users, pub, log),
		orders:    NewOrderService(repos.Orders, repos.Books, pub, log),
	}
}

func (f *fixture) register(t *testing.T, username string) *model.User {
	t.Helper()

	user, err := f.users.Register(context.Background(), &model.RegisterRequest{
		Username: username,
		Email:    username + "@x.io",
		Password: "pw",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) listBook(t *testing.T, sellerID int64, req model.CreateBookRequest) *model.Book {
	t.Helper()

	if req.Author == "" {
		req.Author = "Anon"
	}
	if req.Condition == "" {
		req.Condition = "Good"
	}
	if req.Genre == "" {
		req.Genre = "Fiction"
	}
	if req.Price == "" {
		req.Price = "10"
	}
	book, err := f.books.Create(context.Background(), sellerID, req)
	require.NoError(t, err)
	return book
}

func strPtr(s string) *string { return &s }
