package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/cache"
)

// Task is one stream entry. Fields excludes the type.
type Task struct {
	ID     string
	Type   string
	Fields map[string]string
}

type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}

type Consumer struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	claimInterval time.Duration
	logger        zerolog.Logger
	handler       TaskHandler
}

func NewConsumer(client *redis.Client, stream, group, consumer string, claimInterval time.Duration, logger zerolog.Logger, handler TaskHandler) *Consumer {
	if claimInterval <= 0 {
		claimInterval = time.Minute
	}
	return &Consumer{
		client:        client,
		stream:        stream,
		group:         group,
		consumer:      consumer,
		claimInterval: claimInterval,
		logger:        logger.With().Str("stream", stream).Str("consumer", consumer).Logger(),
		handler:       handler,
	}
}

// Start consumes until ctx is cancelled. Entries idle longer than the claim
// interval in another consumer's pending list are taken over.
func (c *Consumer) Start(ctx context.Context) error {
	if err := cache.EnsureGroup(ctx, c.client, c.stream, c.group); err != nil {
		return fmt.Errorf("ensure group: %w", err)
	}

	lastClaim := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.read(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error().Err(err).Msg("stream read error")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}

		if time.Since(lastClaim) >= c.claimInterval {
			if err := c.claimStalled(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("claim stalled entries failed")
			}
			lastClaim = time.Now()
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

func (c *Consumer) claimStalled(ctx context.Context) error {
	msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  c.claimInterval,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, msg := range msgs {
		c.logger.Info().Str("message_id", msg.ID).Msg("claimed stalled entry")
		c.process(ctx, msg)
	}
	return nil
}

// process acks only on success so failed entries stay pending for a later
// claim.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	task := TaskFromMessage(msg)
	if err := c.handler.Handle(ctx, task); err != nil {
		c.logger.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("type", task.Type).
			Msg("handle task failed")
		return
	}
	if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
	}
}

func TaskFromMessage(msg redis.XMessage) Task {
	task := Task{ID: msg.ID, Fields: make(map[string]string, len(msg.Values))}
	for k, v := range msg.Values {
		s := fmt.Sprint(v)
		if k == "type" {
			task.Type = s
			continue
		}
		task.Fields[k] = s
	}
	return task
}
