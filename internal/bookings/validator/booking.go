package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{validate: validation.New()}
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateBooking(b *model.Booking) error {
	return validation.Struct(v.validate, b)
}

func (v *BookingValidator) ValidateStatus(req *model.UpdateStatusRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidatePay(req *model.PayRequest) error {
	return validation.Struct(v.validate, req)
}
