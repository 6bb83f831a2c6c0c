package adaptor_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travel-booking/internal/adaptor"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubPaymentService struct {
	initiateResp *response.InitiatePaymentResponse
	initiateErr  error
	verifyResp   *response.PaymentOutcomeResponse
	verifyErr    error
	statusResp   *response.PaymentStatusResponse
	statusErr    error

	webhookCalls []request.ChapaWebhookRequest
}

func (s *stubPaymentService) InitiatePayment(ctx context.Context, userID string, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error) {
	return s.initiateResp, s.initiateErr
}

func (s *stubPaymentService) VerifyPayment(ctx context.Context, userID string, req *request.VerifyPaymentRequest) (*response.PaymentOutcomeResponse, error) {
	return s.verifyResp, s.verifyErr
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, req *request.ChapaWebhookRequest) error {
	s.webhookCalls = append(s.webhookCalls, *req)
	return nil
}

func (s *stubPaymentService) GetPaymentStatus(ctx context.Context, userID, paymentID string) (*response.PaymentStatusResponse, error) {
	return s.statusResp, s.statusErr
}

func newRouter(service usecase.PaymentService, webhookSecret string, t *testing.T) *chi.Mux {
	t.Helper()
	handler := adaptor.NewPaymentHandler(service, webhookSecret, zaptest.NewLogger(t))

	userID := uuid.New()
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next(w, r.WithContext(utils.SetUserContext(r.Context(), userID, "guest")))
		}
	}

	r := chi.NewRouter()
	r.Post("/api/payments/initiate", authed(handler.InitiatePayment))
	r.Post("/api/payments/verify", authed(handler.VerifyPayment))
	r.Post("/api/payments/callback", handler.Webhook)
	r.Get("/api/payments/{id}/status", authed(handler.GetPaymentStatus))
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var envelope utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestInitiatePayment_Created(t *testing.T) {
	service := &stubPaymentService{
		initiateResp: &response.InitiatePaymentResponse{
			PaymentID:   uuid.NewString(),
			TxRef:       "booking_abc_deadbeef",
			Amount:      4500,
			CheckoutURL: "https://checkout.chapa.co/pay/xyz",
		},
	}
	router := newRouter(service, "", t)

	body := `{"booking_id":"` + uuid.NewString() + `"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Status)
}

func TestInitiatePayment_BadBody(t *testing.T) {
	router := newRouter(&stubPaymentService{}, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiatePayment_NoAuthContext(t *testing.T) {
	handler := adaptor.NewPaymentHandler(&stubPaymentService{}, "", zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader("{}"))
	handler.InitiatePayment(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", usecase.ErrNotFound, http.StatusNotFound},
		{"already paid", usecase.ErrAlreadyPaid, http.StatusBadRequest},
		{"provider rejected", usecase.ErrProviderRejected, http.StatusBadRequest},
		{"payment failed", usecase.ErrPaymentFailed, http.StatusBadRequest},
		{"indeterminate", usecase.ErrIndeterminate, http.StatusOK},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubPaymentService{verifyErr: tc.err}
			router := newRouter(service, "", t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/verify",
				strings.NewReader(`{"tx_ref":"booking_abc_deadbeef"}`)))

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestVerifyPayment_DeniedIsBadRequest(t *testing.T) {
	service := &stubPaymentService{
		verifyErr: fmt.Errorf("%w: payment cancelled", usecase.ErrPaymentFailed),
	}
	router := newRouter(service, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/verify",
		strings.NewReader(`{"tx_ref":"booking_abc_deadbeef"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Status)
	assert.Contains(t, envelope.Message, "payment cancelled")
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	service := &stubPaymentService{}
	router := newRouter(service, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/callback",
		strings.NewReader(`{"tx_ref":"booking_abc_deadbeef","status":"success"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "received", envelope.Message)
	require.Len(t, service.webhookCalls, 1)
	assert.Equal(t, "success", service.webhookCalls[0].Status)
}

func TestWebhook_UnparseableBodyStillAcknowledged(t *testing.T) {
	service := &stubPaymentService{}
	router := newRouter(service, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/callback",
		strings.NewReader("<xml?>")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.webhookCalls)
}

func TestWebhook_SignatureEnforcedWhenConfigured(t *testing.T) {
	const secret = "whsec"
	service := &stubPaymentService{}
	router := newRouter(service, secret, t)

	payload := `{"tx_ref":"booking_abc_deadbeef","status":"success"}`

	// Missing signature: acknowledged but dropped.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/callback",
		strings.NewReader(payload)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.webhookCalls)

	// Valid signature: processed.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", strings.NewReader(payload))
	req.Header.Set("Chapa-Signature", hex.EncodeToString(mac.Sum(nil)))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, service.webhookCalls, 1)
}

func TestGetPaymentStatus_OK(t *testing.T) {
	paymentID := uuid.NewString()
	service := &stubPaymentService{
		statusResp: &response.PaymentStatusResponse{
			PaymentID: paymentID,
			Status:    "completed",
		},
	}
	router := newRouter(service, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/"+paymentID+"/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Status)
}

func TestGetPaymentStatus_NotFound(t *testing.T) {
	service := &stubPaymentService{statusErr: usecase.ErrNotFound}
	router := newRouter(service, "", t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/"+uuid.NewString()+"/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
