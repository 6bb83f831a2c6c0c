package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travel-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer is the delivery boundary the worker writes to. Satisfied by
// *mail.Client in production and by a fake in tests.
type Mailer interface {
	DialAndSend(messages ...*mail.Msg) error
}

type Worker struct {
	url    string
	queue  string
	mailer Mailer
	from   string
	log    *zap.Logger
}

func NewWorker(queueCfg utils.QueueConfig, emailCfg utils.EmailConfig, log *zap.Logger) (*Worker, error) {
	client, err := mail.NewClient(emailCfg.Host,
		mail.WithPort(emailCfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(emailCfg.User),
		mail.WithPassword(emailCfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &Worker{
		url:    queueCfg.URL,
		queue:  queueCfg.Queue,
		mailer: client,
		from:   emailCfg.From,
		log:    log.With(zap.String("worker", "notification")),
	}, nil
}

// Run consumes the queue forever, reconnecting with backoff when the
// broker drops. Meant to be started as a goroutine next to the HTTP
// server; it never returns.
func (w *Worker) Run() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(w.url)
		if err != nil {
			w.log.Warn("Failed to dial broker, retrying",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := w.consumeLoop(conn); err != nil {
			w.log.Warn("Consume loop ended, reconnecting", zap.Error(err))
			conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (w *Worker) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(10, 0, false); err != nil {
		w.log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(w.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := w.HandleMessage(d.Body); err != nil {
			w.log.Error("Failed to handle notification", zap.Error(err))
			// Reject without requeue: a poison message must not loop.
			d.Nack(false, false)
			continue
		}
		d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one confirmation event and sends the email.
// Mail transport errors are returned for the nack path but stay inside
// the worker; the payment that triggered the event is long settled.
func (w *Worker) HandleMessage(body []byte) error {
	var event PaymentConfirmedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(w.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(event.GuestEmail); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Payment Confirmation - Booking #%s", event.BookingID.String()))
	msg.SetBodyString(mail.TypeTextPlain, renderConfirmationBody(event))

	if err := w.mailer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation email for %s: %w", event.TxRef, err)
	}

	w.log.Info("Confirmation email sent",
		zap.String("payment_id", event.PaymentID.String()),
		zap.String("booking_id", event.BookingID.String()),
	)

	return nil
}

func renderConfirmationBody(event PaymentConfirmedEvent) string {
	return fmt.Sprintf(`Dear %s,

Your payment has been successfully processed!

Booking Details:
- Booking ID: %s
- Amount: %s %.2f
- Transaction Reference: %s
- Check-in: %s
- Check-out: %s

Thank you for your booking!
`,
		event.GuestName,
		event.BookingID.String(),
		event.Currency,
		event.Amount,
		event.TxRef,
		event.CheckIn.Format("2006-01-02"),
		event.CheckOut.Format("2006-01-02"),
	)
}
