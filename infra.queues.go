package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "creation"
	UpdateQueue = "updating"
	DeleteQueue = "deletion"
	ResetQueue  = "reset"
)

// MirrorQueues lists all queue ids fed by the book service.
var MirrorQueues = []string{CreateQueue, UpdateQueue, DeleteQueue, ResetQueue}

// RedisEventsKey is the single redis list carrying every mirror event so
// that consumers see them in push order whatever their queue id.
const RedisEventsKey = "books:mirror:events"

// ErrQueueFull is returned when the in-memory queue cannot accept more items.
var ErrQueueFull = errors.New("queue is full")

// mirrorCodec encodes books travelling through queues and stored into the mirror.
var mirrorCodec = jsoniter.ConfigFastest

var (
	_ Queuer = (*redisQueue)(nil)  // ensure redisQueue implements Queuer.
	_ Queuer = (*memoryQueue)(nil) // ensure memoryQueue implements Queuer.
)

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, book Book) error
	Pop(ctx context.Context, qids ...string) (string, Book, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// DropRedisQueue removes events left over by a previous run.
func DropRedisQueue(ctx context.Context, client *redis.Client) error {
	return client.Del(ctx, RedisEventsKey).Err()
}

// Push appends the event to the shared events list.
func (q *redisQueue) Push(ctx context.Context, qid string, book Book) error {
	data, err := mirrorCodec.Marshal(queueItem{QID: qid, Book: book})
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, RedisEventsKey, data).Err()
}

// Pop returns the oldest event whose queue id is part of qids. Events
// pushed on other queue ids are discarded. It blocks until an event is
// available or the context is done.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	for {
		infos, err := q.client.BLPop(ctx, 0*time.Second, RedisEventsKey).Result()
		if err != nil {
			return "", Book{}, err
		}
		var item queueItem
		if err = mirrorCodec.Unmarshal([]byte(infos[1]), &item); err != nil {
			return "", Book{}, err
		}
		if containsString(qids, item.QID) {
			return item.QID, item.Book, nil
		}
	}
}

// queueItem is a queued mirror event.
type queueItem struct {
	QID  string `json:"qid"`
	Book Book   `json:"book"`
}

// memoryQueue is a bounded in-process queue shared by all queue ids.
// Items are delivered in push order.
type memoryQueue struct {
	items chan queueItem
}

func NewMemoryQueue(size int) Queuer {
	return &memoryQueue{items: make(chan queueItem, size)}
}

// Push enqueues a book without blocking. It fails with ErrQueueFull
// when the buffer is exhausted.
func (q *memoryQueue) Push(ctx context.Context, qid string, book Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.items <- queueItem{QID: qid, Book: book}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pop returns the next item whose queue id is part of qids. Items
// pushed on other queue ids are discarded.
func (q *memoryQueue) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	for {
		select {
		case <-ctx.Done():
			return "", Book{}, ctx.Err()
		case item := <-q.items:
			if containsString(qids, item.QID) {
				return item.QID, item.Book, nil
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
