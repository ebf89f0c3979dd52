package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AccountValidator struct {
	validate *validator.Validate
}

func NewAccountValidator() *AccountValidator {
	return &AccountValidator{validate: validation.New()}
}

func (v *AccountValidator) ValidateRegister(req *model.RegisterRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *AccountValidator) ValidateLogin(req *model.LoginRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *AccountValidator) ValidateUpdateProfile(req *model.UpdateProfileRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *AccountValidator) ValidateUpdatePassword(req *model.UpdatePasswordRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	if req.CurrentPassword == req.NewPassword {
		return validation.ValidationErrors{{
			Field:   "newPassword",
			Message: "must differ from the current password",
		}}
	}
	return nil
}
