package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"bloglist-api/internal/model"
	"bloglist-api/internal/repository"
)

// BlogEventWorker drains the blog event queue into the blog_events table.
// Messages that cannot be decoded or stored are dropped, not requeued.
type BlogEventWorker struct {
	conn      *amqp.Connection
	repo      *repository.BlogEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBlogEventWorker(conn *amqp.Connection, repo *repository.BlogEventRepository, queueName string) *BlogEventWorker {
	return &BlogEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *BlogEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.process(workerCtx, d)
			}
		}
	}()

	log.Info().Str("queue", w.queueName).Msg("blog event worker started")
	return nil
}

func (w *BlogEventWorker) process(ctx context.Context, d amqp.Delivery) {
	var event model.BlogEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Error().Err(err).Msg("worker decode blog event failed")
		_ = d.Nack(false, false)
		return
	}
	if event.Type == "" || event.BlogID == "" {
		log.Error().Str("body", string(d.Body)).Msg("worker got incomplete blog event")
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Create(ctx, &event); err != nil {
		log.Error().Err(err).Str("blog_id", event.BlogID).Msg("worker persist blog event failed")
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *BlogEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
