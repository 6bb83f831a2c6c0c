package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is one attempt to pay for a booking via the provider.
// Rows are never deleted; failed attempts stay behind as an audit trail.
type Payment struct {
	Base
	BookingID uuid.UUID     `db:"booking_id"`
	Amount    float64       `db:"amount"`
	TxRef     string        `db:"tx_ref"`
	Status    PaymentStatus `db:"status"`
}

// Terminal reports whether the payment reached an absorbing state.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}
