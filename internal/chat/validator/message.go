package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type MessageValidator struct {
	validate *validator.Validate
}

func NewMessageValidator() *MessageValidator {
	return &MessageValidator{validate: validation.New()}
}

func (v *MessageValidator) ValidateMessage(msg *model.Message) error {
	return validation.Struct(v.validate, msg)
}
