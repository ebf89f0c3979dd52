package model

import "time"

const (
	RoleCustomer   = "customer"
	RoleVendor     = "vendor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

const (
	VendorStatusNotVendor = "not-vendor"
	VendorStatusPending   = "pending"
	VendorStatusApproved  = "approved"
	VendorStatusRejected  = "rejected"
)

type Account struct {
	ID              string    `json:"id" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email           string    `json:"email" bson:"email" validate:"required,email,max=254"`
	PasswordHash    string    `json:"-" bson:"password" validate:"required"`
	Role            string    `json:"role" bson:"role" validate:"required,oneof=customer vendor admin super-admin"`
	VendorStatus    string    `json:"vendorStatus" bson:"vendorStatus" validate:"required,oneof=not-vendor pending approved rejected"`
	VendorProfileID string    `json:"vendorProfile,omitempty" bson:"vendorProfile,omitempty" validate:"omitempty,mongodb"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// AccountSummary is the public slice of an account shown next to bookings,
// invoices and chat messages.
type AccountSummary struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email"`
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// SelfServiceRole restricts a requested registration role to customer or
// vendor. Anything else becomes customer.
func SelfServiceRole(requested string) string {
	if requested == RoleVendor {
		return RoleVendor
	}
	return RoleCustomer
}

func DefaultVendorStatus(role string) string {
	if role == RoleVendor {
		return VendorStatusPending
	}
	return VendorStatusNotVendor
}

// VendorStatusFor maps a profile approval decision onto the account status.
func VendorStatusFor(approved bool, decision string) string {
	if approved {
		return VendorStatusApproved
	}
	if decision == VendorStatusRejected {
		return VendorStatusRejected
	}
	return VendorStatusPending
}
