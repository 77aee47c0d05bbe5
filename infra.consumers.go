package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// mirrorConsumer applies the store mutations received on
// the queues to the book mirror.
type mirrorConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	mirror  BookMirror
	metrics *Metrics
}

func NewMirrorConsumer(logger *zap.Logger, q Queuer, mirror BookMirror, metrics *Metrics) Consumer {
	return &mirrorConsumer{logger: logger, queue: q, mirror: mirror, metrics: metrics}
}

// Consume runs until the context is done. Failures on a single
// item are logged and never stop the consumption.
func (mc *mirrorConsumer) Consume(ctx context.Context, qids ...string) error {
	var book Book
	var err error
	var qid string
	for {
		qid, book, err = mc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			mc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			mc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case CreateQueue, UpdateQueue:
			err = mc.mirror.Put(ctx, book)
		case DeleteQueue:
			err = mc.mirror.Remove(ctx, book.ID)
		case ResetQueue:
			err = mc.mirror.Clear(ctx)
		default:
			mc.logger.Warn("consumer: received book on unknow queue id", zap.String("qid", qid), zap.Any("book", book))
			continue
		}

		if err != nil {
			mc.logger.Error("consumer: failed to apply", zap.String("qid", qid), zap.Int("book.id", book.ID), zap.Error(err))
			mc.metrics.RecordMirrorEvent(qid, "apply_error")
			continue
		}
		mc.metrics.RecordMirrorEvent(qid, "applied")
	}
}
