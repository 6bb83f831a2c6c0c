package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type InitiatePaymentResponse struct {
	PaymentID   string  `json:"payment_id"`
	BookingID   string  `json:"booking_id"`
	TxRef       string  `json:"transaction_ref"`
	Amount      float64 `json:"amount"`
	CheckoutURL string  `json:"checkout_url"`
}

// PaymentOutcomeResponse is what a successful verify returns; denied
// and indeterminate outcomes travel through the error taxonomy instead.
type PaymentOutcomeResponse struct {
	PaymentID string  `json:"payment_id"`
	TxRef     string  `json:"transaction_ref"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

type PaymentStatusResponse struct {
	PaymentID string    `json:"payment_id"`
	BookingID string    `json:"booking_id"`
	TxRef     string    `json:"transaction_ref"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func PaymentToStatusResponse(payment *entity.Payment) PaymentStatusResponse {
	return PaymentStatusResponse{
		PaymentID: payment.ID.String(),
		BookingID: payment.BookingID.String(),
		TxRef:     payment.TxRef,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
}
