package worker_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/cache"
	"novara/internal/model"
	"novara/internal/queue"
	"novara/internal/repository"
	"novara/internal/repository/memory"
	"novara/internal/worker"
)

// memoryActivity is an ActivityCache kept in a map.
type memoryActivity struct {
	mu      sync.Mutex
	entries map[int64][]model.Activity
	err     error
}

func newMemoryActivity() *memoryActivity {
	return &memoryActivity{entries: make(map[int64][]model.Activity)}
}

func (m *memoryActivity) Add(ctx context.Context, userID int64, a model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[userID] = append(m.entries[userID], a)
	return nil
}

func (m *memoryActivity) Recent(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Activity(nil), m.entries[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryActivity) types(userID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, a := range m.entries[userID] {
		out = append(out, a.Type)
	}
	return out
}

// seedSale lists a book for seller 1 and places an order for buyer 2.
func seedSale(t *testing.T, repos *repository.Store) (*model.Book, *model.Order) {
	t.Helper()
	ctx := context.Background()

	book := &model.Book{Title: "Dune", Price: "10.00", SellerID: 1}
	require.NoError(t, repos.Books.Create(ctx, book))
	order := &model.Order{BuyerID: 2, BookID: book.ID, TotalAmount: "10.00"}
	require.NoError(t, repos.Orders.PlaceOrder(ctx, order))
	return book, order
}

func TestHandler_OrderEventsReachBothParties(t *testing.T) {
	repos := memory.NewStore().Repositories()
	book, order := seedSale(t, repos)
	activity := newMemoryActivity()
	h := worker.NewHandler(activity, repos.Books, repos.Orders, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, queue.NewBookListedEvent(book.ID, 1)))
	require.NoError(t, h.HandleEvent(ctx, queue.NewOrderPlacedEvent(order.ID, book.ID, 2, "10.00")))
	require.NoError(t, h.HandleEvent(ctx, queue.NewOrderStatusChangedEvent(order.ID, 1, model.OrderStatusShipped)))

	assert.Equal(t, []string{queue.EventBookListed, queue.EventOrderPlaced, queue.EventOrderStatusChanged}, activity.types(1))
	assert.Equal(t, []string{queue.EventOrderPlaced, queue.EventOrderStatusChanged}, activity.types(2))

	recent, err := activity.Recent(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, a := range recent {
		assert.Equal(t, order.ID, a.OrderID)
	}
}

func TestHandler_DeletedBookOnlyRecordsBuyer(t *testing.T) {
	repos := memory.NewStore().Repositories()
	book, order := seedSale(t, repos)
	_, err := repos.Books.Delete(context.Background(), book.ID)
	require.NoError(t, err)

	activity := newMemoryActivity()
	h := worker.NewHandler(activity, repos.Books, repos.Orders, zerolog.Nop())

	require.NoError(t, h.HandleEvent(context.Background(), queue.NewOrderPlacedEvent(order.ID, book.ID, 2, "10.00")))

	assert.Len(t, activity.types(2), 1)
	assert.Empty(t, activity.types(1))
}

func TestHandler_UnknownEvent(t *testing.T) {
	repos := memory.NewStore().Repositories()
	h := worker.NewHandler(newMemoryActivity(), repos.Books, repos.Orders, zerolog.Nop())

	err := h.HandleEvent(context.Background(), queue.Event{Type: "post_liked"})

	assert.Error(t, err)
}

func TestHandler_CacheFailure(t *testing.T) {
	repos := memory.NewStore().Repositories()
	activity := newMemoryActivity()
	activity.err = errors.New("redis down")
	h := worker.NewHandler(activity, repos.Books, repos.Orders, zerolog.Nop())

	err := h.HandleEvent(context.Background(), queue.NewBlogPublishedEvent(1, 3))

	assert.ErrorIs(t, err, activity.err)
}

// scriptedConsumer hands out one batch of new messages, then idles.
type scriptedConsumer struct {
	mu      sync.Mutex
	pending []queue.Message
	batch   []queue.Message
	acked   []string
	groups  []string
}

func (c *scriptedConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = append(c.groups, stream+"/"+group)
	return nil
}

func (c *scriptedConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]queue.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out, nil
}

func (c *scriptedConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	c.mu.Lock()
	out := c.batch
	c.batch = nil
	c.mu.Unlock()

	if len(out) > 0 {
		return out, nil
	}
	select {
	case <-ctx.Done():
	case <-time.After(block):
	}
	return nil, nil
}

func (c *scriptedConsumer) Ack(ctx context.Context, stream, group string, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acked = append(c.acked, ids...)
	return nil
}

func (c *scriptedConsumer) ackedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.acked)
}

func TestManager_ProcessesAndAcks(t *testing.T) {
	repos := memory.NewStore().Repositories()
	activity := newMemoryActivity()
	consumer := &scriptedConsumer{
		pending: []queue.Message{{ID: "1-0", Event: queue.NewBookListedEvent(1, 5)}},
		batch: []queue.Message{
			{ID: "2-0", Event: queue.NewBlogPublishedEvent(1, 5)},
			{ID: "3-0", Event: queue.Event{Type: "garbage"}},
		},
	}
	m := worker.NewManager(consumer, worker.NewHandler(activity, repos.Books, repos.Orders, zerolog.Nop()),
		worker.ManagerConfig{WorkerCount: 1, BlockTimeout: 10 * time.Millisecond}, zerolog.Nop())

	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return consumer.ackedCount() == 3 }, 2*time.Second, 5*time.Millisecond)
	m.Stop()

	assert.Equal(t, []string{queue.StreamMarketplace + "/" + queue.ConsumerGroupActivity}, consumer.groups)
	assert.Equal(t, []string{queue.EventBookListed, queue.EventBlogPublished}, activity.types(5))
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := worker.NewManager(&scriptedConsumer{}, nil, worker.DefaultManagerConfig(), zerolog.Nop())
	m.Stop()
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis integration test")
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisPipeline_EndToEnd(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	repos := memory.NewStore().Repositories()
	book, order := seedSale(t, repos)

	publisher := queue.NewPublisher(client, zerolog.Nop())
	activity := cache.NewActivityCache(client)
	m := worker.NewManager(
		queue.NewConsumer(client, zerolog.Nop()),
		worker.NewHandler(activity, repos.Books, repos.Orders, zerolog.Nop()),
		worker.ManagerConfig{WorkerCount: 1, BlockTimeout: 50 * time.Millisecond},
		zerolog.Nop(),
	)
	require.NoError(t, m.Start(ctx))
	defer m.Stop()

	_, err := publisher.Publish(ctx, queue.StreamMarketplace, queue.NewOrderPlacedEvent(order.ID, book.ID, 2, "10.00"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		entries, err := activity.Recent(ctx, 1, 10)
		return err == nil && len(entries) == 1
	}, 5*time.Second, 20*time.Millisecond)

	buyer, err := activity.Recent(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, buyer, 1)
	assert.Equal(t, "10.00", buyer[0].Amount)
}

func TestRedisActivityCache_CapAndOrder(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	activity := cache.NewActivityCache(client)

	for i := 0; i < cache.ActivityCap+5; i++ {
		require.NoError(t, activity.Add(ctx, 9, model.Activity{Type: queue.EventBookListed, Timestamp: int64(1000 + i), BookID: int64(i)}))
	}

	size, err := client.ZCard(ctx, cache.ActivityKeyPrefix+"9").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(cache.ActivityCap), size)

	recent, err := activity.Recent(ctx, 9, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(cache.ActivityCap+4), recent[0].BookID, "newest first")
}
