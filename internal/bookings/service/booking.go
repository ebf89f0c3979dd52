package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "shubakar/internal/bookings/errors"
	"shubakar/internal/bookings/repository"
	"shubakar/internal/bookings/validator"
	eventerrors "shubakar/internal/events/errors"
	"shubakar/internal/notifications"
	vendorerrors "shubakar/internal/vendors/errors"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/kafka"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"
	"sync"
)

type BookingService interface {
	Create(ctx context.Context, caller *model.Account, req *model.CreateBookingRequest) (*model.Booking, error)
	List(ctx context.Context, caller *model.Account, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error)
	UpdateStatus(ctx context.Context, caller *model.Account, id string, req *model.UpdateStatusRequest) (*model.Booking, error)
	// GetForParticipant returns the booking when the caller is its
	// customer, its vendor's owner or an admin.
	GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error)
}

type VendorLookup interface {
	FindByID(ctx context.Context, id string) (*model.VendorProfile, error)
	FindByUserID(ctx context.Context, userID string) (*model.VendorProfile, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.VendorProfile, error)
}

type AccountLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
}

type EventLookup interface {
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	vendors   VendorLookup
	accounts  AccountLookup
	events    EventLookup
	publisher notifications.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	vendors VendorLookup,
	accounts AccountLookup,
	events EventLookup,
	publisher notifications.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		vendors:   vendors,
		accounts:  accounts,
		events:    events,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, caller *model.Account, req *model.CreateBookingRequest) (*model.Booking, error) {
	req.ServiceType = sanitizer.TrimAndNormalize(req.ServiceType)
	req.Notes = sanitizer.NormalizeText(req.Notes)

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, validation.ToAppError("Booking validation failed", err)
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date: " + req.Date)
	}

	vendor, err := s.vendors.FindByID(ctx, req.VendorID)
	if err != nil {
		if errors.Is(err, vendorerrors.ErrNotFound) || errors.Is(err, vendorerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Vendor profile", req.VendorID)
		}
		s.cfg.Log.Error("Failed to load vendor for booking", "vendor_id", req.VendorID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	if !vendor.IsApproved {
		return nil, apperrors.InvalidState("vendor is not accepting bookings yet")
	}
	if len(vendor.Services) > 0 && !vendor.OffersService(req.ServiceType) {
		s.cfg.Log.Warn("Booking service type not offered by vendor",
			"vendor_id", vendor.ID,
			"service_type", req.ServiceType,
		)
	}

	if req.EventID != "" {
		if err := s.checkEventOwner(ctx, caller.ID, req.EventID); err != nil {
			return nil, err
		}
	}

	booking := &model.Booking{
		CustomerID:    caller.ID,
		VendorID:      vendor.ID,
		EventID:       req.EventID,
		ServiceType:   req.ServiceType,
		Date:          date,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Price:         req.Price,
		Notes:         req.Notes,
	}
	if err := s.validator.ValidateBooking(booking); err != nil {
		return nil, validation.ToAppError("Booking validation failed", err)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "customer_id", caller.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"customer_id", booking.CustomerID,
		"vendor_id", booking.VendorID,
		"date", booking.Date,
	)

	s.publish(ctx, kafka.EventBookingCreated, booking.ID, notifications.BookingCreated{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		VendorID:   booking.VendorID,
		Date:       booking.Date,
		Price:      booking.Price,
	})
	return booking, nil
}

func (s *bookingService) checkEventOwner(ctx context.Context, customerID, eventID string) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventerrors.ErrNotFound) || errors.Is(err, eventerrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Event", eventID)
		}
		return apperrors.Internal("Failed to load event", err)
	}
	if event.UserID != customerID {
		return apperrors.NotFoundWithID("Event", eventID)
	}
	return nil
}

// List scopes the listing by role: customers see their own bookings,
// vendors the bookings of their profile, admins everything.
func (s *bookingService) List(ctx context.Context, caller *model.Account, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error) {
	switch {
	case caller.Role == model.RoleCustomer:
		filter.CustomerID = caller.ID
		filter.VendorID = ""
	case caller.Role == model.RoleVendor:
		profile, err := s.vendors.FindByUserID(ctx, caller.ID)
		if err != nil {
			if errors.Is(err, vendorerrors.ErrNotFound) {
				return nil, 0, apperrors.InvalidState("create a vendor profile before listing bookings")
			}
			return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
		}
		filter.CustomerID = ""
		filter.VendorID = profile.ID
	case model.IsAdminRole(caller.Role):
	default:
		return nil, 0, apperrors.Forbidden("you do not have permission to perform this action")
	}

	var (
		count             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, limit, offset)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list bookings", "account_id", caller.ID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	views, err := s.resolve(ctx, bookings)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve booking parties", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return views, count, nil
}

// resolve attaches customer, vendor and event summaries with one lookup per
// collection.
func (s *bookingService) resolve(ctx context.Context, bookings []*model.Booking) ([]*model.BookingView, error) {
	customerIDs := make([]string, 0, len(bookings))
	vendorIDs := make([]string, 0, len(bookings))
	eventIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		customerIDs = append(customerIDs, b.CustomerID)
		vendorIDs = append(vendorIDs, b.VendorID)
		if b.EventID != "" {
			eventIDs = append(eventIDs, b.EventID)
		}
	}

	customers, err := s.accounts.FindByIDs(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendors.FindByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}
	var events []*model.Event
	if len(eventIDs) > 0 {
		if events, err = s.events.FindByIDs(ctx, eventIDs); err != nil {
			return nil, err
		}
	}

	customerByID := make(map[string]*model.AccountSummary, len(customers))
	for _, a := range customers {
		customerByID[a.ID] = a.Summary()
	}
	vendorByID := make(map[string]*model.VendorSummary, len(vendors))
	for _, v := range vendors {
		vendorByID[v.ID] = v.Summary()
	}
	eventByID := make(map[string]*model.EventSummary, len(events))
	for _, e := range events {
		eventByID[e.ID] = e.Summary()
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, &model.BookingView{
			Booking:  b,
			Customer: customerByID[b.CustomerID],
			Vendor:   vendorByID[b.VendorID],
			Event:    eventByID[b.EventID],
		})
	}
	return views, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, caller *model.Account, id string, req *model.UpdateStatusRequest) (*model.Booking, error) {
	req.Status = sanitizer.TrimAndNormalize(req.Status)
	if err := s.validator.ValidateStatus(req); err != nil {
		return nil, validation.ToAppError("Invalid status", err)
	}

	booking, err := s.GetForParticipant(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if !actorMayRequest(caller.Role, req.Status) {
		return nil, apperrors.Forbidden(fmt.Sprintf("a %s cannot set a booking to %s", caller.Role, req.Status))
	}
	if !model.CanTransition(booking.Status, req.Status) {
		return nil, apperrors.InvalidState(fmt.Sprintf("cannot change booking status from %s to %s", booking.Status, req.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, booking.Status, req.Status)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			s.cfg.Log.Warn("Booking status update lost a race", "id", id, "from", booking.Status, "to", req.Status)
			return nil, apperrors.InvalidState("booking status changed concurrently, reload and retry")
		}
		return nil, s.translateError(err, "Failed to update booking", id)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"from", booking.Status,
		"to", updated.Status,
		"actor_id", caller.ID,
		"actor_role", caller.Role,
	)

	s.publish(ctx, kafka.EventBookingStatusChanged, id, notifications.BookingStatusChanged{
		BookingID: id,
		From:      booking.Status,
		To:        updated.Status,
		ActorID:   caller.ID,
	})
	return updated, nil
}

// actorMayRequest: vendors decide and complete, customers cancel, admins may
// apply any legal transition.
func actorMayRequest(role, target string) bool {
	switch role {
	case model.RoleVendor:
		return target == model.BookingStatusAccepted ||
			target == model.BookingStatusRejected ||
			target == model.BookingStatusCompleted
	case model.RoleCustomer:
		return target == model.BookingStatusCancelled
	default:
		return model.IsAdminRole(role)
	}
}

func (s *bookingService) GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "Failed to retrieve booking", id)
	}

	switch {
	case model.IsAdminRole(caller.Role):
		return booking, nil
	case caller.Role == model.RoleCustomer && booking.CustomerID == caller.ID:
		return booking, nil
	case caller.Role == model.RoleVendor:
		profile, err := s.vendors.FindByUserID(ctx, caller.ID)
		if err == nil && profile.ID == booking.VendorID {
			return booking, nil
		}
		if err != nil && !errors.Is(err, vendorerrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to verify booking ownership", err)
		}
	}

	s.cfg.Log.Warn("Booking access denied", "id", id, "account_id", caller.ID, "role", caller.Role)
	return nil, apperrors.Forbidden("this booking does not belong to you")
}

func (s *bookingService) publish(ctx context.Context, eventType, key string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "event", eventType, "id", key, "error", err)
	}
}

func (s *bookingService) translateError(err error, message, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Booking", id)
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
