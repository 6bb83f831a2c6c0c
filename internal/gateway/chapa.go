package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type chapaGateway struct {
	client  *http.Client
	baseURL string
	secret  string
	log     *zap.Logger
}

// NewChapaGateway builds the Chapa client. The HTTP timeout bounds both
// initiate and verify round trips; callers treat a timed-out verify as
// ProviderUnknown.
func NewChapaGateway(config utils.ChapaConfig, log *zap.Logger) Gateway {
	return &chapaGateway{
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: config.BaseURL,
		secret:  config.SecretKey,
		log:     log.With(zap.String("gateway", "chapa")),
	}
}

type chapaInitiateBody struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

type chapaInitiateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
	} `json:"data"`
}

func (g *chapaGateway) Initiate(ctx context.Context, req InitiateRequest) InitiateResult {
	body := chapaInitiateBody{
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return InitiateResult{Reason: fmt.Sprintf("encode initiate payload: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return InitiateResult{Reason: fmt.Sprintf("build initiate request: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.Warn("Initiate transport failure",
			zap.Error(err),
			zap.String("tx_ref", req.TxRef),
		)
		return InitiateResult{Reason: "payment provider unreachable"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return InitiateResult{Reason: "read provider response"}
	}

	var parsed chapaInitiateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		g.log.Warn("Initiate response not parseable",
			zap.Int("http_status", resp.StatusCode),
			zap.String("tx_ref", req.TxRef),
		)
		return InitiateResult{Reason: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || parsed.Status != "success" {
		g.log.Warn("Initiate rejected by provider",
			zap.Int("http_status", resp.StatusCode),
			zap.String("provider_status", parsed.Status),
			zap.String("provider_message", parsed.Message),
			zap.String("tx_ref", req.TxRef),
		)
		reason := parsed.Message
		if reason == "" {
			reason = fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)
		}
		return InitiateResult{Reason: reason}
	}

	return InitiateResult{
		Accepted:    true,
		CheckoutURL: parsed.Data.CheckoutURL,
	}
}

func (g *chapaGateway) Verify(ctx context.Context, txRef string) VerifyResult {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/v1/transaction/verify/"+txRef, nil)
	if err != nil {
		return VerifyResult{Status: ProviderUnknown, Reason: fmt.Sprintf("build verify request: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		// Timeouts and transport errors are ambiguous: the charge may
		// still have gone through on the provider side.
		g.log.Warn("Verify transport failure",
			zap.Error(err),
			zap.String("tx_ref", txRef),
		)
		return VerifyResult{Status: ProviderUnknown, Reason: "payment provider unreachable"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return VerifyResult{Status: ProviderUnknown, Reason: "read provider response"}
	}

	var parsed chapaVerifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return VerifyResult{Status: ProviderUnknown, Reason: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return VerifyResult{Status: ProviderUnknown, Reason: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}
	}

	switch parsed.Data.Status {
	case "success":
		return VerifyResult{Status: ProviderConfirmed}
	case "failed", "cancelled":
		reason := parsed.Message
		if reason == "" {
			reason = "payment " + parsed.Data.Status
		}
		return VerifyResult{Status: ProviderDenied, Reason: reason}
	default:
		// "pending" or anything unexpected: not an authoritative verdict.
		return VerifyResult{Status: ProviderUnknown, Reason: "payment still pending at provider"}
	}
}
