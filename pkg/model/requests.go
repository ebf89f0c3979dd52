package model

import "time"

// RegisterRequest is the sign-up body. The vendor fields are read only when
// the resolved role is vendor.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,bcryptmax"`
	Role     string `json:"role,omitempty"`

	CompanyName   string         `json:"companyName,omitempty"`
	ServiceType   string         `json:"serviceType,omitempty"`
	Description   string         `json:"description,omitempty"`
	Services      []string       `json:"services,omitempty"`
	Location      *Location      `json:"location,omitempty"`
	PriceRange    *PriceRange    `json:"priceRange,omitempty"`
	Website       string         `json:"website,omitempty"`
	Experience    int            `json:"experience,omitempty"`
	TeamSize      int            `json:"teamSize,omitempty"`
	ServiceCities []string       `json:"serviceCities,omitempty"`
	FoundedYear   int            `json:"foundedYear,omitempty"`
	SocialLinks   *SocialLinks   `json:"socialLinks,omitempty"`
	BookingPolicy *BookingPolicy `json:"bookingPolicy,omitempty"`
	Awards        []string       `json:"awards,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,bcryptmax"`
}

// Session is returned by register, login and password change.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *Account  `json:"user"`
}

type ApproveVendorRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type CreateBookingRequest struct {
	VendorID    string  `json:"vendorId" validate:"required,mongodb"`
	EventID     string  `json:"eventId,omitempty" validate:"omitempty,mongodb"`
	ServiceType string  `json:"serviceType" validate:"required,min=2,max=100"`
	Date        string  `json:"date" validate:"required"`
	Price       float64 `json:"price" validate:"min=0"`
	Notes       string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type CreateEventRequest struct {
	Name     string       `json:"name" validate:"required,min=2,max=150"`
	Type     string       `json:"type" validate:"required,oneof=Wedding Birthday Corporate Engagement Other"`
	Date     string       `json:"date" validate:"required"`
	Guests   int          `json:"guests" validate:"min=0,max=100000"`
	Location string       `json:"location,omitempty" validate:"omitempty,max=300"`
	Budget   *EventBudget `json:"budget,omitempty" validate:"omitempty"`
	Status   string       `json:"status,omitempty" validate:"omitempty,oneof=planning active completed cancelled"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected completed cancelled"`
}

type PayRequest struct {
	BookingID string   `json:"bookingId" validate:"required,mongodb"`
	Amount    *float64 `json:"amount,omitempty" validate:"omitempty,min=0"`
	Method    string   `json:"method,omitempty" validate:"omitempty,max=50"`
}

type BudgetRequest struct {
	EventType  string   `json:"event_type" validate:"required,max=50"`
	Guests     int      `json:"guests" validate:"min=1,max=100000"`
	Budget     float64  `json:"budget" validate:"min=0"`
	Location   string   `json:"location,omitempty" validate:"omitempty,max=100"`
	Priorities []string `json:"priorities,omitempty" validate:"omitempty,max=3,dive,required,max=50"`
}

type BudgetPrediction struct {
	EstimatedTotal float64            `json:"estimated_total"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Warnings       []string           `json:"warnings"`
	Message        string             `json:"message,omitempty"`
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates. Plain dates
// are read as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

type CreateTimelineItemRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Time        string `json:"time" validate:"required,len=5,datetime=15:04"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string `json:"category,omitempty" validate:"omitempty,oneof=Ceremony Catering Photography Music General Logistics"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
}
