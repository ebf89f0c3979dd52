package validator

import (
	"shubakar/pkg/model"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type VendorValidator struct {
	validate *validator.Validate
}

func NewVendorValidator() *VendorValidator {
	return &VendorValidator{validate: validation.New()}
}

func (v *VendorValidator) ValidateProfile(p *model.VendorProfile) error {
	if err := validation.Struct(v.validate, p); err != nil {
		return err
	}
	return v.validateBusinessRules(&p.PriceRange, p.Services)
}

func (v *VendorValidator) ValidateUpdate(u *model.VendorProfileUpdate) error {
	if err := validation.Struct(v.validate, u); err != nil {
		return err
	}
	return v.validateBusinessRules(u.PriceRange, u.Services)
}

func (v *VendorValidator) ValidateApproval(req *model.ApproveVendorRequest) error {
	return validation.Struct(v.validate, req)
}

// validateBusinessRules covers what struct tags cannot express. A zero max
// means the vendor left the upper bound open.
func (v *VendorValidator) validateBusinessRules(pr *model.PriceRange, services []string) error {
	var errs validation.ValidationErrors

	if pr != nil && pr.Max > 0 && pr.Min > pr.Max {
		errs = append(errs, validation.ValidationError{
			Field:   "priceRange.max",
			Message: "must be greater than or equal to priceRange.min",
		})
	}

	seen := make(map[string]struct{}, len(services))
	for _, s := range services {
		if _, dup := seen[s]; dup {
			errs = append(errs, validation.ValidationError{
				Field:   "services",
				Message: "must not contain duplicates",
			})
			break
		}
		seen[s] = struct{}{}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
