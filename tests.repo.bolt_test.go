package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltMirror returns a new instance of mirror in a temporary path.
func newTestBoltMirror(t *testing.T) *boltBookMirror {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   f.Name(),
			Timeout:    5 * time.Second,
			BucketName: "test.books",
		},
	}

	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt mirror")
	bm := NewBoltBookMirror(zap.NewNop(), &testConfig.BoltDB, client)
	t.Cleanup(func() {
		bm.Close()
		os.Remove(testConfig.BoltDB.FilePath)
	})
	return bm
}

func TestBoltMirror(t *testing.T) {
	bm := newTestBoltMirror(t)
	ctx := context.TODO()

	t.Run("Put Books", func(t *testing.T) {
		// inserted out of order on purpose.
		assert.NoError(t, bm.Put(ctx, Book{ID: 10, Title: "ten", Author: "a", Year: 2010}))
		assert.NoError(t, bm.Put(ctx, Book{ID: 2, Title: "two", Author: "a", Year: 2002}))
		books, err := bm.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		// big endian keys keep the ids order.
		assert.Equal(t, 2, books[0].ID)
		assert.Equal(t, 10, books[1].ID)
	})

	t.Run("Put Replaces Book", func(t *testing.T) {
		assert.NoError(t, bm.Put(ctx, Book{ID: 2, Title: "two bis", Author: "b", Year: 2022}))
		books, err := bm.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, Book{ID: 2, Title: "two bis", Author: "b", Year: 2022}, books[0])
	})

	t.Run("Remove Book", func(t *testing.T) {
		assert.NoError(t, bm.Remove(ctx, 10))
		assert.NoError(t, bm.Remove(ctx, 999))
		books, err := bm.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("Clear Books", func(t *testing.T) {
		assert.NoError(t, bm.Clear(ctx))
		books, err := bm.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

// TestGetBoltDBClient_ResetsBucket ensures records of a previous run are dropped.
func TestGetBoltDBClient_ResetsBucket(t *testing.T) {
	bm := newTestBoltMirror(t)
	require.NoError(t, bm.Put(context.TODO(), Book{ID: 1, Title: "t", Author: "a", Year: 2000}))
	require.NoError(t, bm.Close())

	client, err := GetBoltDBClient(&Config{BoltDB: *bm.config})
	require.NoError(t, err)
	defer client.Close()
	bm = NewBoltBookMirror(zap.NewNop(), bm.config, client)
	books, err := bm.GetAll(context.TODO())
	require.NoError(t, err)
	assert.Empty(t, books)
}
