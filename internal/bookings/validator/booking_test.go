package validator

import (
	"testing"

	"shubakar/pkg/model"
)

func TestValidateCreate(t *testing.T) {
	v := NewBookingValidator()

	tests := []struct {
		name    string
		req     model.CreateBookingRequest
		wantErr bool
	}{
		{"valid", model.CreateBookingRequest{VendorID: "65f0000000000000000000aa", ServiceType: "Catering", Date: "2025-12-01", Price: 10000}, false},
		{"valid with event", model.CreateBookingRequest{VendorID: "65f0000000000000000000aa", EventID: "65f0000000000000000000ee", ServiceType: "Catering", Date: "2025-12-01"}, false},
		{"bad vendor id", model.CreateBookingRequest{VendorID: "bob", ServiceType: "Catering", Date: "2025-12-01"}, true},
		{"bad event id", model.CreateBookingRequest{VendorID: "65f0000000000000000000aa", EventID: "wedding", ServiceType: "Catering", Date: "2025-12-01"}, true},
		{"no date", model.CreateBookingRequest{VendorID: "65f0000000000000000000aa", ServiceType: "Catering"}, true},
		{"negative price", model.CreateBookingRequest{VendorID: "65f0000000000000000000aa", ServiceType: "Catering", Date: "2025-12-01", Price: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	v := NewBookingValidator()
	for _, status := range []string{"pending", "accepted", "rejected", "completed", "cancelled"} {
		if err := v.ValidateStatus(&model.UpdateStatusRequest{Status: status}); err != nil {
			t.Errorf("ValidateStatus(%q) error = %v", status, err)
		}
	}
	for _, status := range []string{"", "paid", "ACCEPTED"} {
		if err := v.ValidateStatus(&model.UpdateStatusRequest{Status: status}); err == nil {
			t.Errorf("ValidateStatus(%q) should fail", status)
		}
	}
}

func TestValidatePay(t *testing.T) {
	v := NewBookingValidator()
	negative := -1.0

	if err := v.ValidatePay(&model.PayRequest{BookingID: "65f0000000000000000000b1", Method: "card"}); err != nil {
		t.Errorf("valid pay request rejected: %v", err)
	}
	if err := v.ValidatePay(&model.PayRequest{BookingID: "65f0000000000000000000b1", Amount: &negative}); err == nil {
		t.Errorf("negative amount should fail")
	}
	if err := v.ValidatePay(&model.PayRequest{}); err == nil {
		t.Errorf("missing booking id should fail")
	}
}
