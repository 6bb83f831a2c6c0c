package request

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type VerifyPaymentRequest struct {
	TxRef string `json:"tx_ref" validate:"required"`
}

// ChapaWebhookRequest mirrors the provider's callback payload. The
// shape is the provider's, not ours, so no validation tags: anything
// unparseable is acknowledged and dropped.
type ChapaWebhookRequest struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}
