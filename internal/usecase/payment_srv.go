package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const paymentCurrency = "ETB"

type PaymentService interface {
	// InitiatePayment opens (or reuses) a payment attempt for a booking
	// and returns the provider checkout URL.
	InitiatePayment(ctx context.Context, userID string, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error)

	// VerifyPayment polls the provider for the attempt behind tx_ref and
	// settles the attempt when the provider's verdict is authoritative.
	VerifyPayment(ctx context.Context, userID string, req *request.VerifyPaymentRequest) (*response.PaymentOutcomeResponse, error)

	// HandleWebhook settles the attempt behind a provider callback. It
	// never returns an error for an unknown tx_ref; the caller always
	// acknowledges receipt either way.
	HandleWebhook(ctx context.Context, req *request.ChapaWebhookRequest) error

	// GetPaymentStatus returns the current state of one of the caller's
	// own payment attempts.
	GetPaymentStatus(ctx context.Context, userID, paymentID string) (*response.PaymentStatusResponse, error)
}

type paymentService struct {
	repo      *repository.Repository
	gateway   gateway.Gateway
	publisher notification.Publisher
	config    *utils.Config
	log       *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	gw gateway.Gateway,
	publisher notification.Publisher,
	config *utils.Config,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:      repo,
		gateway:   gw,
		publisher: publisher,
		config:    config,
		log:       log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID string, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Initiate payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	guestID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking_id is not a valid UUID", ErrValidation)
	}

	booking, err := s.repo.Booking.FindByIDAndGuest(ctx, bookingID, guestID)
	if err != nil {
		return nil, fmt.Errorf("look up booking %s: %w", req.BookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", req.BookingID, ErrNotFound)
	}

	// Duplicate-payment guard: a completed attempt settles the booking
	// for good.
	completed, err := s.repo.Payment.FindCompletedByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment for booking %s: %w", req.BookingID, err)
	}
	if completed != nil {
		return nil, fmt.Errorf("booking %s: %w", req.BookingID, ErrAlreadyPaid)
	}

	// Get-or-create: a pending attempt (and its tx_ref) is reused so a
	// retried initiate never leaves duplicate rows behind. Only a failed
	// attempt warrants a fresh row with a fresh reference.
	payment, err := s.repo.Payment.FindActiveByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check active payment for booking %s: %w", req.BookingID, err)
	}

	if payment == nil {
		now := time.Now()
		payment = &entity.Payment{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID: bookingID,
			Amount:    booking.TotalPrice,
			TxRef:     utils.GenerateTxRef(bookingID),
			Status:    entity.PaymentStatusPending,
		}

		if err := s.repo.Payment.Create(ctx, payment); err != nil {
			return nil, fmt.Errorf("create payment attempt: %w", err)
		}

		s.log.Info("Payment attempt created",
			zap.String("payment_id", payment.ID.String()),
			zap.String("booking_id", req.BookingID),
			zap.String("tx_ref", payment.TxRef),
			zap.Float64("amount", payment.Amount),
		)
	} else {
		s.log.Info("Reusing pending payment attempt",
			zap.String("payment_id", payment.ID.String()),
			zap.String("tx_ref", payment.TxRef),
		)
	}

	guest, err := s.repo.User.FindByID(ctx, guestID)
	if err != nil || guest == nil {
		return nil, fmt.Errorf("look up guest %s for payment: %w", userID, err)
	}

	result := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		Amount:      payment.Amount,
		Currency:    paymentCurrency,
		Email:       guest.Email,
		FirstName:   guest.FirstName,
		LastName:    guest.LastName,
		TxRef:       payment.TxRef,
		CallbackURL: s.config.Chapa.CallbackBaseURL + "/api/payments/callback",
		ReturnURL:   s.config.Chapa.ReturnURL,
	})

	if !result.Accepted {
		// The attempt stays pending on purpose: the reference remains
		// reusable for a retry and auditable either way.
		s.log.Warn("Provider rejected initiate",
			zap.String("tx_ref", payment.TxRef),
			zap.String("reason", result.Reason),
		)
		return nil, fmt.Errorf("%w: %s", ErrProviderRejected, result.Reason)
	}

	return &response.InitiatePaymentResponse{
		PaymentID:   payment.ID.String(),
		BookingID:   booking.ID.String(),
		TxRef:       payment.TxRef,
		Amount:      payment.Amount,
		CheckoutURL: result.CheckoutURL,
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, userID string, req *request.VerifyPaymentRequest) (*response.PaymentOutcomeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	guestID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	payment, err := s.repo.Payment.FindByTxRef(ctx, req.TxRef)
	if err != nil {
		return nil, fmt.Errorf("look up payment by tx_ref %s: %w", req.TxRef, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment with tx_ref %s: %w", req.TxRef, ErrNotFound)
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("look up booking for payment %s: %w", payment.ID.String(), err)
	}
	if booking == nil || booking.GuestID != guestID {
		// Foreign payments look like missing ones to the caller.
		return nil, fmt.Errorf("payment with tx_ref %s: %w", req.TxRef, ErrNotFound)
	}

	// Terminal attempts are settled; repolling the provider cannot
	// change them, so answer from our own record.
	if payment.Terminal() {
		if payment.Status == entity.PaymentStatusFailed {
			return nil, fmt.Errorf("%w: tx_ref %s", ErrPaymentFailed, payment.TxRef)
		}
		return &response.PaymentOutcomeResponse{
			PaymentID: payment.ID.String(),
			TxRef:     payment.TxRef,
			Amount:    payment.Amount,
			Status:    string(payment.Status),
		}, nil
	}

	// Network round trip happens before any status write; the CAS in
	// markCompleted/markFailed is the only serialization point.
	result := s.gateway.Verify(ctx, payment.TxRef)

	switch result.Status {
	case gateway.ProviderConfirmed:
		if err := s.markCompleted(ctx, payment); err != nil {
			return nil, err
		}
		return &response.PaymentOutcomeResponse{
			PaymentID: payment.ID.String(),
			TxRef:     payment.TxRef,
			Amount:    payment.Amount,
			Status:    string(entity.PaymentStatusCompleted),
		}, nil

	case gateway.ProviderDenied:
		if err := s.markFailed(ctx, payment, result.Reason); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, result.Reason)

	default:
		// Ambiguous verdict: no state change, caller retries later.
		return nil, fmt.Errorf("%w: %s", ErrIndeterminate, result.Reason)
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, req *request.ChapaWebhookRequest) error {
	if req.TxRef == "" {
		s.log.Warn("Webhook without tx_ref, ignoring")
		return nil
	}

	payment, err := s.repo.Payment.FindByTxRef(ctx, req.TxRef)
	if err != nil {
		return fmt.Errorf("look up payment by tx_ref %s: %w", req.TxRef, err)
	}
	if payment == nil {
		// Stale or foreign reference. Acknowledge without writing
		// anything so the provider stops redelivering.
		s.log.Info("Webhook for unknown tx_ref, acknowledged without action",
			zap.String("tx_ref", req.TxRef),
		)
		return nil
	}

	s.log.Info("Webhook received",
		zap.String("tx_ref", req.TxRef),
		zap.String("provider_status", req.Status),
	)

	if req.Status == "success" {
		return s.markCompleted(ctx, payment)
	}
	return s.markFailed(ctx, payment, "provider reported "+req.Status)
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, userID, paymentID string) (*response.PaymentStatusResponse, error) {
	guestID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment ID is not a valid UUID", ErrValidation)
	}

	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up payment %s: %w", paymentID, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("look up booking for payment %s: %w", paymentID, err)
	}
	if booking == nil || booking.GuestID != guestID {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}

	resp := response.PaymentToStatusResponse(payment)
	return &resp, nil
}

// markCompleted moves a pending attempt to completed. The conditional
// UPDATE in TransitionStatus is the single serialization point: with a
// verify call and N webhook redeliveries racing, exactly one caller
// wins it, and only the winner confirms the booking and enqueues the
// confirmation email. Everyone else observes a no-op.
func (s *paymentService) markCompleted(ctx context.Context, payment *entity.Payment) error {
	transitioned, err := s.repo.Payment.TransitionStatus(ctx, payment.ID,
		entity.PaymentStatusPending, entity.PaymentStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark payment %s completed: %w", payment.ID.String(), err)
	}
	if !transitioned {
		s.log.Info("Payment already settled, completion is a no-op",
			zap.String("payment_id", payment.ID.String()),
		)
		return nil
	}

	s.log.Info("Payment completed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tx_ref", payment.TxRef),
		zap.Float64("amount", payment.Amount),
	)

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil || booking == nil {
		s.log.Error("Completed payment references missing booking",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return nil
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed); err != nil {
		// The payment stays completed; the booking write can be
		// reconciled from the payment record.
		s.log.Error("Failed to confirm booking after payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	s.enqueueConfirmation(ctx, payment, booking)
	return nil
}

// markFailed moves a pending attempt to failed. Never touches the
// booking and never notifies.
func (s *paymentService) markFailed(ctx context.Context, payment *entity.Payment, reason string) error {
	transitioned, err := s.repo.Payment.TransitionStatus(ctx, payment.ID,
		entity.PaymentStatusPending, entity.PaymentStatusFailed)
	if err != nil {
		return fmt.Errorf("mark payment %s failed: %w", payment.ID.String(), err)
	}
	if !transitioned {
		s.log.Info("Payment already settled, failure is a no-op",
			zap.String("payment_id", payment.ID.String()),
		)
		return nil
	}

	s.log.Info("Payment failed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tx_ref", payment.TxRef),
		zap.String("reason", reason),
	)

	return nil
}

func (s *paymentService) enqueueConfirmation(ctx context.Context, payment *entity.Payment, booking *entity.Booking) {
	guest, err := s.repo.User.FindByID(ctx, booking.GuestID)
	if err != nil || guest == nil {
		s.log.Error("Failed to load guest for confirmation email",
			zap.Error(err),
			zap.String("guest_id", booking.GuestID.String()),
		)
		return
	}

	event := notification.PaymentConfirmedEvent{
		PaymentID:   payment.ID,
		BookingID:   booking.ID,
		TxRef:       payment.TxRef,
		Amount:      payment.Amount,
		Currency:    paymentCurrency,
		GuestEmail:  guest.Email,
		GuestName:   guest.FirstName,
		CheckIn:     booking.CheckIn,
		CheckOut:    booking.CheckOut,
		ConfirmedAt: time.Now().UTC(),
	}

	// Fire and forget: a broker outage costs an email, not a payment.
	if err := s.publisher.EnqueuePaymentConfirmed(ctx, event); err != nil {
		s.log.Error("Failed to enqueue confirmation email",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
		)
	}
}
