package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "shubakar/internal/bookings/errors"
	"shubakar/internal/bookings/repository"
	"shubakar/internal/bookings/validator"
	"shubakar/internal/notifications"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/kafka"
	"shubakar/pkg/model"
	"shubakar/pkg/validation"
)

const (
	transactionPrefix    = "TXN_"
	invoicePrefix        = "INV-"
	defaultPaymentMethod = "card"
	suffixLength         = 6
)

type PaymentService interface {
	// Pay settles an accepted booking. Paying an already paid booking
	// returns the stored receipt unchanged.
	Pay(ctx context.Context, caller *model.Account, req *model.PayRequest) (*model.PaymentReceipt, error)
	Invoice(ctx context.Context, caller *model.Account, bookingID string) (*model.Invoice, error)
}

// BookingAccess resolves a booking only for its participants.
type BookingAccess interface {
	GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error)
}

type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

type VendorLookup interface {
	FindByID(ctx context.Context, id string) (*model.VendorProfile, error)
}

type paymentService struct {
	repo      repository.BookingRepository
	bookings  BookingAccess
	accounts  AccountLookup
	vendors   VendorLookup
	publisher notifications.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewPaymentService(
	repo repository.BookingRepository,
	bookings BookingAccess,
	accounts AccountLookup,
	vendors VendorLookup,
	publisher notifications.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		bookings:  bookings,
		accounts:  accounts,
		vendors:   vendors,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *paymentService) Pay(ctx context.Context, caller *model.Account, req *model.PayRequest) (*model.PaymentReceipt, error) {
	if err := s.validator.ValidatePay(req); err != nil {
		return nil, validation.ToAppError("Payment validation failed", err)
	}

	booking, err := s.bookings.GetForParticipant(ctx, caller, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != caller.ID {
		return nil, apperrors.Forbidden("only the booking's customer can pay for it")
	}

	if booking.PaymentStatus == model.PaymentStatusPaid {
		s.cfg.Log.Info("Booking already paid, returning stored receipt", "booking_id", booking.ID, "transaction_id", booking.TransactionID)
		return receiptFor(booking), nil
	}
	if booking.Status != model.BookingStatusAccepted {
		return nil, apperrors.InvalidState(fmt.Sprintf("payment requires an accepted booking, current status is %s", booking.Status))
	}
	if req.Amount != nil && *req.Amount != booking.Price {
		s.cfg.Log.Warn("Client payment amount differs from booking price, charging booking price",
			"booking_id", booking.ID,
			"client_amount", *req.Amount,
			"price", booking.Price,
		)
	}

	if err := s.waitForGateway(ctx); err != nil {
		s.cfg.Log.Warn("Payment gateway wait aborted", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Timeout("payment was not completed in time")
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = defaultPaymentMethod
	}
	paidAt := s.now().UTC()
	record := model.PaymentRecord{
		TransactionID: newTransactionID(paidAt),
		Method:        method,
		PaidAt:        paidAt,
	}

	updated, err := s.repo.MarkPaid(ctx, booking.ID, record)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return s.afterLostRace(ctx, booking.ID)
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", booking.ID)
		}
		s.cfg.Log.Error("Failed to record payment", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to process payment", err)
	}

	s.cfg.Log.Info("Payment completed",
		"booking_id", updated.ID,
		"transaction_id", updated.TransactionID,
		"amount", updated.Price,
		"method", updated.PaymentMethod,
	)

	if err := s.publisher.Publish(ctx, kafka.EventPaymentCompleted, updated.ID, notifications.PaymentCompleted{
		BookingID:     updated.ID,
		TransactionID: updated.TransactionID,
		Amount:        updated.Price,
		PaidAt:        paidAt,
	}); err != nil {
		s.cfg.Log.Warn("Failed to publish payment event", "booking_id", updated.ID, "error", err)
	}

	return receiptFor(updated), nil
}

// afterLostRace re-reads a booking whose conditional payment write matched
// nothing: either a concurrent pay won, or the booking left accepted.
func (s *paymentService) afterLostRace(ctx context.Context, id string) (*model.PaymentReceipt, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to process payment", err)
	}
	if current.PaymentStatus == model.PaymentStatusPaid {
		return receiptFor(current), nil
	}
	return nil, apperrors.InvalidState(fmt.Sprintf("payment requires an accepted booking, current status is %s", current.Status))
}

func (s *paymentService) waitForGateway(ctx context.Context) error {
	if s.cfg.PaymentDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.PaymentDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *paymentService) Invoice(ctx context.Context, caller *model.Account, bookingID string) (*model.Invoice, error) {
	booking, err := s.bookings.GetForParticipant(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != model.PaymentStatusPaid {
		return nil, apperrors.InvalidState("invoice available only for paid bookings")
	}

	invoiceID, err := invoiceIDFor(booking.TransactionID)
	if err != nil {
		s.cfg.Log.Error("Stored transaction id is malformed", "booking_id", booking.ID, "transaction_id", booking.TransactionID)
		return nil, apperrors.Internal("Failed to generate invoice", err)
	}

	invoice := &model.Invoice{
		InvoiceID:     invoiceID,
		BookingID:     booking.ID,
		TransactionID: booking.TransactionID,
		Date:          s.now().UTC(),
		Service:       booking.ServiceType,
		EventDate:     booking.Date,
		Amount:        booking.Price,
		PaymentMethod: booking.PaymentMethod,
		Status:        model.InvoiceStatusPaid,
	}

	// Deleted parties leave the summary empty rather than failing the invoice.
	if customer, err := s.accounts.FindByID(ctx, booking.CustomerID); err == nil {
		invoice.Customer = customer.Summary()
	} else {
		s.cfg.Log.Warn("Invoice customer lookup failed", "booking_id", booking.ID, "error", err)
	}
	if vendor, err := s.vendors.FindByID(ctx, booking.VendorID); err == nil {
		invoice.Vendor = vendor.Summary()
	} else {
		s.cfg.Log.Warn("Invoice vendor lookup failed", "booking_id", booking.ID, "error", err)
	}

	return invoice, nil
}

func receiptFor(b *model.Booking) *model.PaymentReceipt {
	receipt := &model.PaymentReceipt{
		BookingID:     b.ID,
		PaymentStatus: b.PaymentStatus,
		TransactionID: b.TransactionID,
		Amount:        b.Price,
		Method:        b.PaymentMethod,
	}
	if b.PaidAt != nil {
		receipt.Date = *b.PaidAt
	}
	return receipt
}

// newTransactionID returns TXN_<unix millis>_<6 uppercase alphanumerics>.
func newTransactionID(at time.Time) string {
	return fmt.Sprintf("%s%d_%s", transactionPrefix, at.UnixMilli(), rand.Text()[:suffixLength])
}

// invoiceIDFor derives the invoice id from the millisecond part of a
// transaction id, so it is stable across calls.
func invoiceIDFor(transactionID string) (string, error) {
	parts := strings.Split(transactionID, "_")
	if len(parts) != 3 || parts[0]+"_" != transactionPrefix || parts[1] == "" {
		return "", fmt.Errorf("unexpected transaction id format: %q", transactionID)
	}
	return invoicePrefix + parts[1], nil
}
