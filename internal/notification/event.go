package notification

import (
	"time"

	"github.com/google/uuid"
)

// PaymentConfirmedEvent is the message published to the notification
// queue when a payment reaches completed. The schema is stable: the
// worker renders the confirmation email from this payload alone, no
// database round trip needed at delivery time.
type PaymentConfirmedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	TxRef       string    `json:"tx_ref"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	GuestEmail  string    `json:"guest_email"`
	GuestName   string    `json:"guest_name"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
