package model

import "time"

const (
	ServiceVenue         = "Venue"
	ServiceCatering      = "Catering"
	ServiceDecor         = "Decor"
	ServicePhotography   = "Photography"
	ServiceMusic         = "Music"
	ServiceEntertainment = "Entertainment"
	ServiceMakeup        = "Makeup"
	ServiceOther         = "Other"
)

var VendorServices = []string{
	ServiceVenue, ServiceCatering, ServiceDecor, ServicePhotography,
	ServiceMusic, ServiceEntertainment, ServiceMakeup, ServiceOther,
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"min=-180,max=180"`
}

type Location struct {
	City        string       `json:"city,omitempty" bson:"city,omitempty" validate:"omitempty,max=100"`
	Address     string       `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty" validate:"omitempty"`
}

type PriceRange struct {
	Min float64 `json:"min" bson:"min" validate:"min=0"`
	Max float64 `json:"max" bson:"max" validate:"min=0"`
}

type Documents struct {
	GST     string   `json:"gst,omitempty" bson:"gst,omitempty" validate:"omitempty,url"`
	License string   `json:"license,omitempty" bson:"license,omitempty" validate:"omitempty,url"`
	Other   []string `json:"other,omitempty" bson:"other,omitempty" validate:"omitempty,max=20,dive,url"`
}

type Rating struct {
	Average float64 `json:"average" bson:"average" validate:"min=0,max=5"`
	Count   int     `json:"count" bson:"count" validate:"min=0"`
}

type SocialLinks struct {
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty" validate:"omitempty,url"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty" validate:"omitempty,url"`
	YouTube   string `json:"youtube,omitempty" bson:"youtube,omitempty" validate:"omitempty,url"`
}

type BookingPolicy struct {
	AdvancePercentage float64 `json:"advancePercentage" bson:"advancePercentage" validate:"min=0,max=100"`
	CancellationRules string  `json:"cancellationRules,omitempty" bson:"cancellationRules,omitempty" validate:"omitempty,max=2000"`
}

type VendorProfile struct {
	ID            string        `json:"id" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string        `json:"user" bson:"user" validate:"required,mongodb"`
	CompanyName   string        `json:"companyName" bson:"companyName" validate:"required,min=2,max=120"`
	Description   string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Services      []string      `json:"services" bson:"services" validate:"omitempty,max=8,dive,oneof=Venue Catering Decor Photography Music Entertainment Makeup Other"`
	Location      Location      `json:"location" bson:"location"`
	PriceRange    PriceRange    `json:"priceRange" bson:"priceRange"`
	Website       string        `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Experience    int           `json:"experience" bson:"experience" validate:"min=0,max=100"`
	TeamSize      int           `json:"teamSize" bson:"teamSize" validate:"min=0,max=10000"`
	Portfolio     []string      `json:"portfolio" bson:"portfolio" validate:"omitempty,max=50,dive,url"`
	Documents     Documents     `json:"documents" bson:"documents"`
	Rating        Rating        `json:"rating" bson:"rating"`
	SocialLinks   SocialLinks   `json:"socialLinks" bson:"socialLinks"`
	BookingPolicy BookingPolicy `json:"bookingPolicy" bson:"bookingPolicy"`
	ServiceCities []string      `json:"serviceCities" bson:"serviceCities" validate:"omitempty,max=50,dive,required,max=100"`
	FoundedYear   int           `json:"foundedYear,omitempty" bson:"foundedYear,omitempty" validate:"omitempty,min=1800,max=2100"`
	Awards        []string      `json:"awards" bson:"awards" validate:"omitempty,max=50,dive,required,max=200"`
	IsApproved    bool          `json:"isApproved" bson:"isApproved"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// VendorProfileUpdate carries a partial edit. Nil fields are left untouched.
// IsApproved and Rating are applied only on the admin path.
type VendorProfileUpdate struct {
	CompanyName   *string        `json:"companyName,omitempty" validate:"omitempty,min=2,max=120"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Services      []string       `json:"services,omitempty" validate:"omitempty,max=8,dive,oneof=Venue Catering Decor Photography Music Entertainment Makeup Other"`
	Location      *Location      `json:"location,omitempty" validate:"omitempty"`
	PriceRange    *PriceRange    `json:"priceRange,omitempty" validate:"omitempty"`
	Website       *string        `json:"website,omitempty" validate:"omitempty,url"`
	Experience    *int           `json:"experience,omitempty" validate:"omitempty,min=0,max=100"`
	TeamSize      *int           `json:"teamSize,omitempty" validate:"omitempty,min=0,max=10000"`
	Portfolio     []string       `json:"portfolio,omitempty" validate:"omitempty,max=50,dive,url"`
	Documents     *Documents     `json:"documents,omitempty" validate:"omitempty"`
	SocialLinks   *SocialLinks   `json:"socialLinks,omitempty" validate:"omitempty"`
	BookingPolicy *BookingPolicy `json:"bookingPolicy,omitempty" validate:"omitempty"`
	ServiceCities []string       `json:"serviceCities,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	FoundedYear   *int           `json:"foundedYear,omitempty" validate:"omitempty,min=1800,max=2100"`
	Awards        []string       `json:"awards,omitempty" validate:"omitempty,max=50,dive,required,max=200"`

	Rating     *Rating `json:"rating,omitempty" validate:"omitempty"`
	IsApproved *bool   `json:"isApproved,omitempty"`
}

// VendorSearchFilter narrows the public directory. Zero values do not filter.
type VendorSearchFilter struct {
	Service  string
	City     string
	MinPrice *float64
}

type VendorSummary struct {
	ID          string `json:"id" bson:"_id"`
	UserID      string `json:"user,omitempty" bson:"user"`
	CompanyName string `json:"companyName" bson:"companyName"`
}

func (p *VendorProfile) Summary() *VendorSummary {
	return &VendorSummary{ID: p.ID, UserID: p.UserID, CompanyName: p.CompanyName}
}

func (p *VendorProfile) OffersService(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// VendorListing is the admin view of a profile with its owning account.
type VendorListing struct {
	*VendorProfile
	Owner        *AccountSummary `json:"owner,omitempty"`
	VendorStatus string          `json:"vendorStatus,omitempty"`
}
