package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	AddFunc       func(ctx context.Context, book Book) (Book, error)
	GetOneFunc    func(ctx context.Context, id int) (Book, error)
	DeleteFunc    func(ctx context.Context, id int) error
	UpdateFunc    func(ctx context.Context, id int, book Book) (Book, error)
	GetAllFunc    func(ctx context.Context) ([]Book, error)
	DeleteAllFunc func(ctx context.Context) error
	CountFunc     func() int
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id int) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, id int, book Book) (Book, error) {
	return m.UpdateFunc(ctx, id, book)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// DeleteAll mocks the behavior of removing all books by the repository.
func (m *MockBookStorage) DeleteAll(ctx context.Context) error {
	return m.DeleteAllFunc(ctx)
}

// Count returns 0 when no CountFunc is set.
func (m *MockBookStorage) Count() int {
	if m.CountFunc == nil {
		return 0
	}
	return m.CountFunc()
}

// pushed is a queue item recorded by MockQueuer.
type pushed struct {
	qid  string
	book Book
}

// MockQueuer records pushed items. PushFunc and PopFunc
// override the default behavior when set.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Book, error)

	mu    sync.Mutex
	items []pushed
}

func (m *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, qid, book)
	}
	m.mu.Lock()
	m.items = append(m.items, pushed{qid: qid, book: book})
	m.mu.Unlock()
	return nil
}

func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	return m.PopFunc(ctx, qids...)
}

func (m *MockQueuer) Pushed() []pushed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pushed(nil), m.items...)
}

// MockBookMirror keeps books into a map.
type MockBookMirror struct {
	mu      sync.Mutex
	books   map[int]Book
	cleared int
	PutErr  error
}

func NewMockBookMirror() *MockBookMirror {
	return &MockBookMirror{books: map[int]Book{}}
}

func (m *MockBookMirror) Put(_ context.Context, book Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.books[book.ID] = book
	return nil
}

func (m *MockBookMirror) Remove(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

func (m *MockBookMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = map[int]Book{}
	m.cleared++
	return nil
}

func (m *MockBookMirror) GetAll(_ context.Context) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := []Book{}
	for i := 1; len(books) < len(m.books); i++ {
		if b, ok := m.books[i]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

func (mck *MockClocker) Since(t time.Time) time.Duration {
	return mck.MockNow.Sub(t)
}

// NewTicker returns a real ticker. Only Now is frozen.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// newTestAPIHandler builds an api handler on top of a real in-memory store.
func newTestAPIHandler(config *Config, queue Queuer, mirror BookMirror) (*APIHandler, BookStorage) {
	if config == nil {
		config = &Config{}
	}
	if config.Server.LongRequestWriteTimeout == 0 {
		config.Server.LongRequestWriteTimeout = time.Second
	}
	storage := NewMemoryBookStorage(zap.NewNop())
	bs := NewBookService(zap.NewNop(), config, storage, queue, nil)
	clock := NewMockClocker()
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("abc"), nil, mirror, bs)
	return api, storage
}
