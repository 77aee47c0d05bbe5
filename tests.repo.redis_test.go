package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisQueue(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	client, err := GetRedisClient(&Config{Redis: RedisConfig{Host: host, Port: port}})
	require.NoError(t, err)
	defer client.Close()
	q := NewRedisQueue(client)
	book := Book{ID: 1, Title: "Redis test book title", Author: "Jerome Amon", Year: 2023}

	t.Run("Push And Pop Same Queue", func(t *testing.T) {
		require.NoError(t, q.Push(context.Background(), CreateQueue, book))
		qid, got, err := q.Pop(context.Background(), MirrorQueues...)
		assert.NoError(t, err)
		assert.Equal(t, CreateQueue, qid)
		assert.Equal(t, book, got)
	})

	t.Run("Pop Keeps Push Order Per Queue", func(t *testing.T) {
		require.NoError(t, q.Push(context.Background(), UpdateQueue, Book{ID: 1, Year: 2000}))
		require.NoError(t, q.Push(context.Background(), UpdateQueue, Book{ID: 1, Year: 2001}))
		_, first, err := q.Pop(context.Background(), UpdateQueue)
		require.NoError(t, err)
		_, second, err := q.Pop(context.Background(), UpdateQueue)
		require.NoError(t, err)
		assert.Equal(t, 2000, first.Year)
		assert.Equal(t, 2001, second.Year)
	})

	t.Run("Pop Keeps Push Order Across Queues", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, q.Push(ctx, CreateQueue, Book{ID: 1, Title: "A"}))
		require.NoError(t, q.Push(ctx, ResetQueue, Book{}))
		require.NoError(t, q.Push(ctx, CreateQueue, Book{ID: 1, Title: "B"}))

		var got []pushed
		for i := 0; i < 3; i++ {
			qid, book, err := q.Pop(ctx, MirrorQueues...)
			require.NoError(t, err)
			got = append(got, pushed{qid: qid, book: book})
		}
		expected := []pushed{
			{qid: CreateQueue, book: Book{ID: 1, Title: "A"}},
			{qid: ResetQueue},
			{qid: CreateQueue, book: Book{ID: 1, Title: "B"}},
		}
		assert.Equal(t, expected, got)
	})

	t.Run("Pop Discards Other Queues", func(t *testing.T) {
		require.NoError(t, q.Push(context.Background(), DeleteQueue, Book{ID: 5}))
		require.NoError(t, q.Push(context.Background(), CreateQueue, Book{ID: 6}))
		qid, got, err := q.Pop(context.Background(), CreateQueue)
		require.NoError(t, err)
		assert.Equal(t, CreateQueue, qid)
		assert.Equal(t, 6, got.ID)
		assert.Equal(t, int64(0), client.LLen(context.Background(), RedisEventsKey).Val())
	})

	t.Run("Pop Stops On Context Done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		_, _, err := q.Pop(ctx, MirrorQueues...)
		assert.Error(t, err)
	})

	t.Run("Drop Removes Pending Events", func(t *testing.T) {
		require.NoError(t, q.Push(context.Background(), UpdateQueue, Book{ID: 7}))
		require.NoError(t, DropRedisQueue(context.Background(), client))
		assert.Equal(t, int64(0), client.LLen(context.Background(), RedisEventsKey).Val())
	})
}
