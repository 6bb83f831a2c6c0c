package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/payments/initiate - Open a checkout for a booking
		r.Post("/api/payments/initiate", paymentHandler.InitiatePayment)

		// POST /api/payments/verify - Poll the provider for an outcome
		r.Post("/api/payments/verify", paymentHandler.VerifyPayment)

		// GET /api/payments/{id}/status - Current state of own payment
		r.Get("/api/payments/{id}/status", paymentHandler.GetPaymentStatus)
	})

	// ==================== PUBLIC ROUTES ====================
	// POST /api/payments/callback - Provider webhook; always acknowledged
	r.Post("/api/payments/callback", paymentHandler.Webhook)
}
