package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type TimelineValidator struct {
	validate *validator.Validate
}

func NewTimelineValidator() *TimelineValidator {
	return &TimelineValidator{validate: validation.New()}
}

func (v *TimelineValidator) ValidateCreate(req *model.CreateTimelineItemRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *TimelineValidator) ValidateItem(item *model.TimelineItem) error {
	return validation.Struct(v.validate, item)
}

func (v *TimelineValidator) ValidateUpdate(u *model.TimelineItemUpdate) error {
	return validation.Struct(v.validate, u)
}
