package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var _ BookStorage = (*memoryBookStorage)(nil) // ensure memoryBookStorage implements BookStorage.

// memoryBookStorage keeps books in insertion order. The counter holds the
// last issued id and is never decremented, so ids are not reused after a
// deletion. Only DeleteAll brings it back to zero.
type memoryBookStorage struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	books   []Book
	counter int
}

// NewMemoryBookStorage provides an empty instance of memory-based book storage.
func NewMemoryBookStorage(logger *zap.Logger) BookStorage {
	return &memoryBookStorage{
		logger: logger,
		books:  []Book{},
	}
}

// Add assigns the next id to the book and appends it to the collection.
func (ms *memoryBookStorage) Add(_ context.Context, book Book) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.counter++
	book.ID = ms.counter
	ms.books = append(ms.books, book)
	return book, nil
}

// GetOne retrieves a book record based on its ID.
func (ms *memoryBookStorage) GetOne(_ context.Context, id int) (Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	i := ms.indexOf(id)
	if i < 0 {
		return Book{}, ErrBookNotFound
	}
	return ms.books[i], nil
}

// Update replaces all fields of an existing book record. The id is kept.
func (ms *memoryBookStorage) Update(_ context.Context, id int, book Book) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	i := ms.indexOf(id)
	if i < 0 {
		return Book{}, ErrBookNotFound
	}
	book.ID = id
	ms.books[i] = book
	return book, nil
}

// Delete removes a book record based on its ID. Remaining records keep their order.
func (ms *memoryBookStorage) Delete(_ context.Context, id int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	i := ms.indexOf(id)
	if i < 0 {
		return ErrBookNotFound
	}
	ms.books = append(ms.books[:i], ms.books[i+1:]...)
	return nil
}

// GetAll returns a snapshot of all books in insertion order.
func (ms *memoryBookStorage) GetAll(_ context.Context) ([]Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	books := make([]Book, len(ms.books))
	copy(books, ms.books)
	return books, nil
}

// DeleteAll clears the collection and restarts ids allocation from 1.
func (ms *memoryBookStorage) DeleteAll(_ context.Context) error {
	ms.mu.Lock()
	n := len(ms.books)
	ms.books = []Book{}
	ms.counter = 0
	ms.mu.Unlock()
	ms.logger.Info("storage: all books removed", zap.Int("books.count", n))
	return nil
}

// Count returns the number of books currently stored.
func (ms *memoryBookStorage) Count() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.books)
}

// indexOf must be called with the lock held.
func (ms *memoryBookStorage) indexOf(id int) int {
	for i := range ms.books {
		if ms.books[i].ID == id {
			return i
		}
	}
	return -1
}
