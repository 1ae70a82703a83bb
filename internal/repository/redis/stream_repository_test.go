package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	redisRepo "github.com/visitor-geolocation/internal/repository/redis"
)

const (
	testStream = "test:stream:visitor:notify"
	testGroup  = "test-group"
)

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     "localhost:6379",
		Password: "",
		DB:       1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testStream)
	t.Cleanup(func() {
		client.Del(context.Background(), testStream)
		client.Close()
	})

	return client
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, testGroup))

	groups, err := client.XInfoGroups(ctx, testStream).Result()
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, testGroup, groups[0].Name)

	// Creating again should not error (BUSYGROUP handled)
	assert.NoError(t, repo.CreateConsumerGroup(ctx, testStream, testGroup))
}

func TestStreamRepository_PublishConsumeAck(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, testGroup))

	event := domain.NotificationEvent{
		ID: uuid.New(),
		Visit: domain.Visit{
			ID: uuid.New(),
			IP: "203.0.113.10",
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.PublishToStream(ctx, testStream, event))

	messages, err := repo.ConsumeBatch(ctx, testStream, testGroup, "consumer-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(1), messages[0].DeliveryCount)

	var received domain.NotificationEvent
	require.NoError(t, json.Unmarshal([]byte(messages[0].Data), &received))
	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, "203.0.113.10", received.Visit.IP)

	// not acked yet: visible as pending
	pending, err := repo.ReadPending(ctx, testStream, testGroup, "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, messages[0].ID, pending[0].ID)
	assert.Equal(t, int64(2), pending[0].DeliveryCount)

	require.NoError(t, repo.AckMessages(ctx, testStream, testGroup, []string{messages[0].ID}))

	pending, err = repo.ReadPending(ctx, testStream, testGroup, "consumer-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// nothing new
	messages, err = repo.ConsumeBatch(ctx, testStream, testGroup, "consumer-1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestStreamRepository_AckEmpty(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())

	assert.NoError(t, repo.AckMessages(context.Background(), testStream, testGroup, nil))
}

func TestStreamRepository_EntriesWithoutData(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, testGroup))

	foreignID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: testStream,
		Values: map[string]interface{}{"payload": "x"},
	}).Result()
	require.NoError(t, err)
	require.NoError(t, repo.PublishToStream(ctx, testStream, domain.NotificationEvent{ID: uuid.New()}))

	messages, err := repo.ConsumeBatch(ctx, testStream, testGroup, "consumer-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, foreignID, messages[0].ID)
	assert.Empty(t, messages[0].Data)

	// удалённая запись остаётся в PEL и читается с nil-значениями
	deletedID := messages[1].ID
	require.NoError(t, client.XDel(ctx, testStream, deletedID).Err())

	pending, err := repo.ReadPending(ctx, testStream, testGroup, "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	ids := []string{pending[0].ID, pending[1].ID}
	assert.ElementsMatch(t, []string{foreignID, deletedID}, ids)
	assert.Empty(t, pending[0].Data)
	assert.Empty(t, pending[1].Data)

	require.NoError(t, repo.AckMessages(ctx, testStream, testGroup, ids))

	pending, err = repo.ReadPending(ctx, testStream, testGroup, "consumer-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
