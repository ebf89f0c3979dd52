package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EventValidator struct {
	validate *validator.Validate
}

func NewEventValidator() *EventValidator {
	return &EventValidator{validate: validation.New()}
}

func (v *EventValidator) ValidateCreate(req *model.CreateEventRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *EventValidator) ValidateEvent(e *model.Event) error {
	if err := validation.Struct(v.validate, e); err != nil {
		return err
	}
	return budgetRule(&e.Budget)
}

func (v *EventValidator) ValidateUpdate(u *model.EventUpdate) error {
	if err := validation.Struct(v.validate, u); err != nil {
		return err
	}
	if u.Budget != nil {
		return budgetRule(u.Budget)
	}
	return nil
}

// budgetRule: recorded spending needs a total. Overspending is allowed.
func budgetRule(b *model.EventBudget) error {
	if b.Total == 0 && b.Spent > 0 {
		return validation.ValidationErrors{{Field: "budget.total", Message: "is required when budget.spent is set"}}
	}
	return nil
}
