package service

import (
	"context"
	"errors"
	accounterrors "shubakar/internal/accounts/errors"
	"shubakar/internal/notifications"
	vendorerrors "shubakar/internal/vendors/errors"
	"shubakar/internal/vendors/repository"
	"shubakar/internal/vendors/validator"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/kafka"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"
)

type VendorService interface {
	CreateProfile(ctx context.Context, accountID string, p *model.VendorProfile) (*model.VendorProfile, error)
	GetOwnProfile(ctx context.Context, accountID string) (*model.VendorProfile, error)
	UpdateOwnProfile(ctx context.Context, accountID string, u *model.VendorProfileUpdate) (*model.VendorProfile, error)
	Search(ctx context.Context, filter model.VendorSearchFilter) ([]*model.VendorProfile, error)
	ListAll(ctx context.Context, limit int, offset int64) ([]*model.VendorListing, int64, error)
	Approve(ctx context.Context, profileID string, req *model.ApproveVendorRequest) (*model.VendorProfile, error)
	AdminUpdate(ctx context.Context, profileID string, u *model.VendorProfileUpdate) (*model.VendorProfile, error)
	AdminDelete(ctx context.Context, profileID string) error
}

// AccountStore is the slice of the account repository that moderation
// touches. Calls made with a transaction context join that transaction.
type AccountStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
	LinkVendorProfile(ctx context.Context, id, profileID, vendorStatus string) error
	SetVendorStatus(ctx context.Context, id, vendorStatus string) error
	ResetToCustomer(ctx context.Context, id string) error
}

type vendorService struct {
	repo      repository.VendorRepository
	accounts  AccountStore
	events    notifications.Publisher
	validator *validator.VendorValidator
	cfg       *config.Config
}

func NewVendorService(
	repo repository.VendorRepository,
	accounts AccountStore,
	events notifications.Publisher,
	validator *validator.VendorValidator,
	cfg *config.Config,
) VendorService {
	return &vendorService{
		repo:      repo,
		accounts:  accounts,
		events:    events,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *vendorService) CreateProfile(ctx context.Context, accountID string, p *model.VendorProfile) (*model.VendorProfile, error) {
	sanitizeProfile(p)
	p.UserID = accountID
	p.IsApproved = false
	p.Rating = model.Rating{}
	if p.Portfolio == nil {
		p.Portfolio = []string{}
	}

	if err := s.validator.ValidateProfile(p); err != nil {
		s.cfg.Log.Warn("Vendor profile validation failed", "account_id", accountID, "error", err)
		return nil, validation.ToAppError("Vendor profile validation failed", err)
	}

	if _, err := s.repo.FindByUserID(ctx, accountID); err == nil {
		return nil, apperrors.AlreadyExists("Vendor profile")
	} else if !errors.Is(err, vendorerrors.ErrNotFound) {
		return nil, s.translateError(err, "Failed to create vendor profile", accountID)
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		p.ID = ""
		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}
		return s.accounts.LinkVendorProfile(txCtx, accountID, p.ID, model.VendorStatusPending)
	})
	if err != nil {
		if errors.Is(err, vendorerrors.ErrDuplicate) {
			return nil, apperrors.AlreadyExists("Vendor profile")
		}
		s.cfg.Log.Error("Failed to create vendor profile", "account_id", accountID, "error", err)
		return nil, apperrors.Internal("Failed to create vendor profile", err)
	}

	s.cfg.Log.Info("Vendor profile created successfully",
		"id", p.ID,
		"account_id", accountID,
		"company", p.CompanyName,
	)
	return p, nil
}

func (s *vendorService) GetOwnProfile(ctx context.Context, accountID string) (*model.VendorProfile, error) {
	p, err := s.repo.FindByUserID(ctx, accountID)
	if err != nil {
		if errors.Is(err, vendorerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Vendor profile")
		}
		return nil, s.translateError(err, "Failed to retrieve vendor profile", accountID)
	}
	return p, nil
}

func (s *vendorService) UpdateOwnProfile(ctx context.Context, accountID string, u *model.VendorProfileUpdate) (*model.VendorProfile, error) {
	u.Rating = nil
	u.IsApproved = nil
	sanitizeUpdate(u)

	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, validation.ToAppError("Vendor profile validation failed", err)
	}

	current, err := s.GetOwnProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPriceRange(current, u); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, current.ID, repository.UpdateSet(u, false))
	if err != nil {
		return nil, s.translateError(err, "Failed to update vendor profile", current.ID)
	}

	s.cfg.Log.Info("Vendor profile updated by owner", "id", updated.ID, "account_id", accountID)
	return updated, nil
}

func (s *vendorService) Search(ctx context.Context, filter model.VendorSearchFilter) ([]*model.VendorProfile, error) {
	filter.Service = sanitizer.TrimAndNormalize(filter.Service)
	filter.City = sanitizer.TrimAndNormalize(filter.City)

	profiles, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Vendor search failed", "service", filter.Service, "city", filter.City, "error", err)
		return nil, apperrors.Internal("Failed to search vendors", err)
	}
	return profiles, nil
}

func (s *vendorService) ListAll(ctx context.Context, limit int, offset int64) ([]*model.VendorListing, int64, error) {
	profiles, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list vendor profiles", "error", err)
		return nil, 0, apperrors.Internal("Failed to list vendors", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count vendor profiles", "error", err)
		return nil, 0, apperrors.Internal("Failed to list vendors", err)
	}

	ownerIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ownerIDs = append(ownerIDs, p.UserID)
	}
	owners, err := s.accounts.FindByIDs(ctx, ownerIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load vendor owners", "error", err)
		return nil, 0, apperrors.Internal("Failed to list vendors", err)
	}
	byID := make(map[string]*model.Account, len(owners))
	for _, a := range owners {
		byID[a.ID] = a
	}

	listings := make([]*model.VendorListing, 0, len(profiles))
	for _, p := range profiles {
		listing := &model.VendorListing{VendorProfile: p}
		if owner, ok := byID[p.UserID]; ok {
			listing.Owner = owner.Summary()
			listing.VendorStatus = owner.VendorStatus
		}
		listings = append(listings, listing)
	}
	return listings, total, nil
}

// Approve flips the profile flag and the owner's vendor status in one
// transaction so the two never disagree.
func (s *vendorService) Approve(ctx context.Context, profileID string, req *model.ApproveVendorRequest) (*model.VendorProfile, error) {
	if err := s.validator.ValidateApproval(req); err != nil {
		return nil, validation.ToAppError("Invalid status", err)
	}

	approved := req.Status == model.VendorStatusApproved
	vendorStatus := model.VendorStatusFor(approved, req.Status)

	var profile *model.VendorProfile
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.repo.SetApproved(txCtx, profileID, approved)
		if err != nil {
			return err
		}
		profile = p
		return s.accounts.SetVendorStatus(txCtx, p.UserID, vendorStatus)
	})
	if err != nil {
		return nil, s.translateError(err, "Failed to moderate vendor", profileID)
	}

	s.cfg.Log.Info("Vendor moderated",
		"id", profile.ID,
		"account_id", profile.UserID,
		"status", vendorStatus,
	)
	s.publishModerated(ctx, profile, vendorStatus)
	return profile, nil
}

func (s *vendorService) AdminUpdate(ctx context.Context, profileID string, u *model.VendorProfileUpdate) (*model.VendorProfile, error) {
	sanitizeUpdate(u)
	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, validation.ToAppError("Vendor profile validation failed", err)
	}

	current, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, s.translateError(err, "Failed to update vendor profile", profileID)
	}
	if err := s.checkPriceRange(current, u); err != nil {
		return nil, err
	}

	var updated *model.VendorProfile
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.repo.Update(txCtx, profileID, repository.UpdateSet(u, true))
		if err != nil {
			return err
		}
		updated = p
		if u.IsApproved == nil {
			return nil
		}
		return s.accounts.SetVendorStatus(txCtx, p.UserID, model.VendorStatusFor(*u.IsApproved, model.VendorStatusRejected))
	})
	if err != nil {
		return nil, s.translateError(err, "Failed to update vendor profile", profileID)
	}

	s.cfg.Log.Info("Vendor profile updated by admin", "id", profileID)
	if u.IsApproved != nil && *u.IsApproved != current.IsApproved {
		s.publishModerated(ctx, updated, model.VendorStatusFor(*u.IsApproved, model.VendorStatusRejected))
	}
	return updated, nil
}

// AdminDelete removes the profile and turns its owner back into a customer.
func (s *vendorService) AdminDelete(ctx context.Context, profileID string) error {
	current, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return s.translateError(err, "Failed to delete vendor profile", profileID)
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, profileID); err != nil {
			return err
		}
		return s.accounts.ResetToCustomer(txCtx, current.UserID)
	})
	if err != nil {
		return s.translateError(err, "Failed to delete vendor profile", profileID)
	}

	s.cfg.Log.Info("Vendor profile deleted", "id", profileID, "account_id", current.UserID)
	return nil
}

// checkPriceRange validates the range a partial edit would leave behind.
func (s *vendorService) checkPriceRange(current *model.VendorProfile, u *model.VendorProfileUpdate) error {
	if u.PriceRange == nil {
		return nil
	}
	merged := *current
	merged.PriceRange = *u.PriceRange
	if u.Services != nil {
		merged.Services = u.Services
	}
	if err := s.validator.ValidateProfile(&merged); err != nil {
		return validation.ToAppError("Vendor profile validation failed", err)
	}
	return nil
}

func (s *vendorService) publishModerated(ctx context.Context, p *model.VendorProfile, vendorStatus string) {
	err := s.events.Publish(ctx, kafka.EventVendorModerated, p.ID, notifications.VendorModerated{
		ProfileID:    p.ID,
		AccountID:    p.UserID,
		Approved:     p.IsApproved,
		VendorStatus: vendorStatus,
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish vendor moderation event", "id", p.ID, "error", err)
	}
}

func (s *vendorService) translateError(err error, message, id string) error {
	switch {
	case errors.Is(err, vendorerrors.ErrNotFound), errors.Is(err, vendorerrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Vendor profile", id)
	case errors.Is(err, accounterrors.ErrNotFound), errors.Is(err, accounterrors.ErrInvalidID):
		s.cfg.Log.Warn("Vendor profile owner account is missing", "id", id, "error", err)
		return apperrors.NotFound("Vendor owner account")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func sanitizeProfile(p *model.VendorProfile) {
	p.CompanyName = sanitizer.NormalizeName(p.CompanyName)
	p.Description = sanitizer.NormalizeText(p.Description)
	p.Website = sanitizer.SanitizeURL(p.Website)
	p.Location.City = sanitizer.NormalizeCity(p.Location.City)
	p.Location.Address = sanitizer.TrimAndNormalize(p.Location.Address)
	p.Portfolio = sanitizer.NormalizeURLs(p.Portfolio)
	p.ServiceCities = sanitizer.NormalizeCities(p.ServiceCities)
	p.Awards = sanitizer.NormalizeTexts(p.Awards)
}

func sanitizeUpdate(u *model.VendorProfileUpdate) {
	if u.CompanyName != nil {
		v := sanitizer.NormalizeName(*u.CompanyName)
		u.CompanyName = &v
	}
	if u.Description != nil {
		v := sanitizer.NormalizeText(*u.Description)
		u.Description = &v
	}
	if u.Website != nil {
		v := sanitizer.SanitizeURL(*u.Website)
		u.Website = &v
	}
	if u.Location != nil {
		u.Location.City = sanitizer.NormalizeCity(u.Location.City)
	}
	if u.Portfolio != nil {
		u.Portfolio = sanitizer.NormalizeURLs(u.Portfolio)
	}
	if u.ServiceCities != nil {
		u.ServiceCities = sanitizer.NormalizeCities(u.ServiceCities)
	}
	if u.Awards != nil {
		u.Awards = sanitizer.NormalizeTexts(u.Awards)
	}
}
