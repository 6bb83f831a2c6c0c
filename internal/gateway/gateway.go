package gateway

import (
	"context"
)

// InitiateRequest carries everything the provider needs to open a
// hosted checkout for one payment attempt.
type InitiateRequest struct {
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
}

// InitiateResult is the tagged outcome of an initiate call. Exactly one
// branch applies: Accepted with a checkout URL, or rejected with a reason.
type InitiateResult struct {
	Accepted    bool
	CheckoutURL string
	Reason      string
}

// VerifyStatus distinguishes an authoritative provider verdict from an
// ambiguous one. Only Denied may fail a payment; Unknown must leave it
// pending for a later retry.
type VerifyStatus string

const (
	ProviderConfirmed VerifyStatus = "confirmed"
	ProviderDenied    VerifyStatus = "denied"
	ProviderUnknown   VerifyStatus = "unknown"
)

type VerifyResult struct {
	Status VerifyStatus
	Reason string
}

// Gateway is the outbound boundary to the payment provider. Transport
// failures never escape it; they come back as Rejected or Unknown.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) InitiateResult
	Verify(ctx context.Context, txRef string) VerifyResult
}
