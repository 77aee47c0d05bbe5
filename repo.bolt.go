package main

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var _ BookMirror = (*boltBookMirror)(nil) // ensure boltBookMirror implements BookMirror.

// BookMirror keeps a copy of the store records outside of the process memory.
type BookMirror interface {
	Put(ctx context.Context, book Book) error
	Remove(ctx context.Context, id int) error
	GetAll(ctx context.Context) ([]Book, error)
	Clear(ctx context.Context) error
}

type boltBookMirror struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient opens the database then provides a ready to use client.
// The bucket is recreated empty since the mirror only reflects the books
// of the current process lifetime.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return resetBucket(tx, config.BoltDB.BucketName)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

func resetBucket(tx *bolt.Tx, name string) error {
	if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
		return fmt.Errorf("failed to drop %s bucket: %v", name, err)
	}
	if _, err := tx.CreateBucket([]byte(name)); err != nil {
		return fmt.Errorf("failed to create %s bucket: %v", name, err)
	}
	return nil
}

// NewBoltBookMirror provides an instance of bolt-based book mirror.
func NewBoltBookMirror(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) *boltBookMirror {
	return &boltBookMirror{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based book mirror.
func (bm *boltBookMirror) Close() error {
	return bm.client.Close()
}

// itob returns an 8-byte big endian representation of the id
// so that the bucket cursor walks books in ids order.
func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Put inserts or replaces a book record into boltdb store.
func (bm *boltBookMirror) Put(_ context.Context, book Book) error {
	bookBytes, err := mirrorCodec.Marshal(book)
	if err != nil {
		return err
	}
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Put(itob(book.ID), bookBytes)
	})
}

// Remove deletes a book record based on its ID from boltdb store.
// Removing a missing record is not an error.
func (bm *boltBookMirror) Remove(_ context.Context, id int) error {
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Delete(itob(id))
	})
}

// Clear drops every record of the mirror bucket.
func (bm *boltBookMirror) Clear(_ context.Context) error {
	return bm.client.Update(func(tx *bolt.Tx) error {
		return resetBucket(tx, bm.config.BucketName)
	})
}

// GetAll retrieves a list of all books stored in the bolt database.
func (bm *boltBookMirror) GetAll(_ context.Context) ([]Book, error) {
	tx, err := bm.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Create a cursor on the books' bucket.
	c := tx.Bucket([]byte(bm.config.BucketName)).Cursor()

	books := []Book{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err = mirrorCodec.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
