package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusAccepted  = "accepted"
	BookingStatusRejected  = "rejected"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// bookingTransitions is the status state machine. Statuses without an entry
// are terminal.
var bookingTransitions = map[string][]string{
	BookingStatusPending:  {BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusAccepted: {BookingStatusCompleted, BookingStatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsBookingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func IsTerminalStatus(status string) bool {
	_, ok := bookingTransitions[status]
	return !ok
}

type Booking struct {
	ID            string     `json:"id" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID    string     `json:"customer" bson:"customer" validate:"required,mongodb"`
	VendorID      string     `json:"vendor" bson:"vendor" validate:"required,mongodb"`
	EventID       string     `json:"event,omitempty" bson:"event,omitempty" validate:"omitempty,mongodb"`
	ServiceType   string     `json:"serviceType" bson:"serviceType" validate:"required,min=2,max=100"`
	Date          time.Time  `json:"date" bson:"date" validate:"required"`
	Status        string     `json:"status" bson:"status" validate:"required,oneof=pending accepted rejected completed cancelled"`
	PaymentStatus string     `json:"paymentStatus" bson:"paymentStatus" validate:"required,oneof=pending paid failed"`
	TransactionID string     `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	Price         float64    `json:"price" bson:"price" validate:"min=0"`
	Notes         string     `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// BookingView is a booking with its parties resolved for display. The
// summaries shadow the raw id fields of the embedded booking in JSON.
type BookingView struct {
	*Booking
	Customer *AccountSummary `json:"customer,omitempty"`
	Vendor   *VendorSummary  `json:"vendor,omitempty"`
	Event    *EventSummary   `json:"event,omitempty"`
}

// BookingFilter scopes a listing. Empty fields do not filter.
type BookingFilter struct {
	CustomerID string
	VendorID   string
	Status     string
}
