// Package notification carries the asynchronous side of payment
// confirmation: a publisher that enqueues confirmation events and a
// worker that turns them into emails. Failures on either side are
// logged and contained; they never reach the payment request path.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"travel-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher interface {
	EnqueuePaymentConfirmed(ctx context.Context, event PaymentConfirmedEvent) error
}

type amqpPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewPublisher(config utils.QueueConfig, log *zap.Logger) Publisher {
	return &amqpPublisher{
		url:   config.URL,
		queue: config.Queue,
		log:   log.With(zap.String("publisher", "notification")),
	}
}

// EnqueuePaymentConfirmed publishes the event as a persistent JSON
// message on a durable queue. Any error is logged and returned; callers
// on the payment path ignore it, so a down broker degrades to a missed
// email rather than a failed payment.
func (p *amqpPublisher) EnqueuePaymentConfirmed(ctx context.Context, event PaymentConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("Failed to dial broker",
			zap.Error(err),
			zap.String("tx_ref", event.TxRef),
		)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("Failed to open channel", zap.Error(err))
		return err
	}
	defer ch.Close()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Error("Failed to declare queue",
			zap.Error(err),
			zap.String("queue", p.queue),
		)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Error("Failed to publish event",
			zap.Error(err),
			zap.String("tx_ref", event.TxRef),
		)
		return err
	}

	p.log.Info("Payment confirmation enqueued",
		zap.String("payment_id", event.PaymentID.String()),
		zap.String("tx_ref", event.TxRef),
	)

	return nil
}
