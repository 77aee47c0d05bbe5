package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id int) (Book, error)
	Delete(ctx context.Context, id int) error
	Update(ctx context.Context, id int, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	DeleteAll(ctx context.Context) error
	Count() int
}

// BookService is the single entry point to the book storage. Every committed
// mutation is published on the mirror queue when one is configured.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	storage BookStorage
	queue   Queuer
	metrics *Metrics
}

func NewBookService(logger *zap.Logger, config *Config, storage BookStorage, queue Queuer, metrics *Metrics) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		storage: storage,
		queue:   queue,
		metrics: metrics,
	}
}

func (bs *BookService) Add(ctx context.Context, book Book) (Book, error) {
	book, err := bs.storage.Add(ctx, book)
	bs.metrics.RecordStoreOperation("create", err, bs.storage.Count())
	if err != nil {
		return book, err
	}
	bs.publish(ctx, CreateQueue, book)
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id int) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	bs.metrics.RecordStoreOperation("get", err, bs.storage.Count())
	return book, err
}

func (bs *BookService) Delete(ctx context.Context, id int) error {
	err := bs.storage.Delete(ctx, id)
	bs.metrics.RecordStoreOperation("delete", err, bs.storage.Count())
	if err != nil {
		return err
	}
	bs.publish(ctx, DeleteQueue, Book{ID: id})
	return nil
}

func (bs *BookService) Update(ctx context.Context, id int, book Book) (Book, error) {
	book, err := bs.storage.Update(ctx, id, book)
	bs.metrics.RecordStoreOperation("update", err, bs.storage.Count())
	if err != nil {
		return book, err
	}
	bs.publish(ctx, UpdateQueue, book)
	return book, nil
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	books, err := bs.storage.GetAll(ctx)
	bs.metrics.RecordStoreOperation("list", err, bs.storage.Count())
	return books, err
}

func (bs *BookService) DeleteAll(ctx context.Context) error {
	err := bs.storage.DeleteAll(ctx)
	bs.metrics.RecordStoreOperation("reset", err, bs.storage.Count())
	if err != nil {
		return err
	}
	bs.publish(ctx, ResetQueue, Book{})
	return nil
}

func (bs *BookService) Count() int {
	return bs.storage.Count()
}

// publish pushes the book on the mirror queue. A failure is logged and does
// not affect the already committed change, even if the request is cancelled.
func (bs *BookService) publish(ctx context.Context, qid string, book Book) {
	if bs.queue == nil {
		return
	}
	if err := bs.queue.Push(context.WithoutCancel(ctx), qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", qid), zap.Int("book.id", book.ID), zap.Error(err))
		bs.metrics.RecordMirrorEvent(qid, "push_error")
		return
	}
	bs.metrics.RecordMirrorEvent(qid, "pushed")
}
