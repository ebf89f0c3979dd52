package service

import (
	"context"
	"errors"
	"fmt"
	accounterrors "shubakar/internal/accounts/errors"
	"shubakar/internal/accounts/repository"
	"shubakar/internal/accounts/validator"
	vendorvalidator "shubakar/internal/vendors/validator"
	"shubakar/pkg/auth"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const invalidCredentialsMessage = "Incorrect email or password"

type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	UpdateProfile(ctx context.Context, id string, req *model.UpdateProfileRequest) (*model.Account, error)
	UpdatePassword(ctx context.Context, id string, req *model.UpdatePasswordRequest) (*model.Session, error)
	EnsureSuperAdmin(ctx context.Context, name, email, password string) (*model.Account, error)
}

// ProfileCreator persists the vendor profile created alongside a vendor
// registration.
type ProfileCreator interface {
	Create(ctx context.Context, p *model.VendorProfile) error
}

type accountService struct {
	repo            repository.AccountRepository
	profiles        ProfileCreator
	hasher          auth.PasswordHasher
	tokens          auth.TokenIssuer
	validator       *validator.AccountValidator
	vendorValidator *vendorvalidator.VendorValidator
	cfg             *config.Config

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(
	repo repository.AccountRepository,
	profiles ProfileCreator,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	validator *validator.AccountValidator,
	vendorValidator *vendorvalidator.VendorValidator,
	cfg *config.Config,
) AccountService {
	return &accountService{
		repo:            repo,
		profiles:        profiles,
		hasher:          hasher,
		tokens:          tokens,
		validator:       validator,
		vendorValidator: vendorValidator,
		cfg:             cfg,
	}
}

func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error) {
	s.sanitizeRegister(req)

	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "email", req.Email, "error", err)
		return nil, validation.ToAppError("Registration validation failed", err)
	}

	role := model.SelfServiceRole(req.Role)
	if req.Role != "" && req.Role != role {
		s.cfg.Log.Warn("Requested role downgraded", "email", req.Email, "requested", req.Role, "granted", role)
	}

	var profile *model.VendorProfile
	if role == model.RoleVendor {
		profile = profileFromRegistration(req)
		profile.UserID = primitive.NilObjectID.Hex()
		if err := s.vendorValidator.ValidateProfile(profile); err != nil {
			s.cfg.Log.Warn("Vendor profile validation failed", "email", req.Email, "error", err)
			return nil, validation.ToAppError("Vendor profile validation failed", err)
		}
	}

	hash, err := s.hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		VendorStatus: model.DefaultVendorStatus(role),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		account.ID, account.VendorProfileID = "", ""
		if err := s.repo.Create(txCtx, account); err != nil {
			return err
		}
		if profile == nil {
			return nil
		}

		profile.ID = ""
		profile.UserID = account.ID
		if err := s.profiles.Create(txCtx, profile); err != nil {
			return err
		}
		account.VendorProfileID = profile.ID
		return s.repo.LinkVendorProfile(txCtx, account.ID, profile.ID, model.VendorStatusPending)
	})
	if err != nil {
		if errors.Is(err, accounterrors.ErrDuplicateEmail) {
			return nil, apperrors.DuplicateEmail(req.Email)
		}
		s.cfg.Log.Error("Failed to register account", "email", req.Email, "role", role, "error", err)
		return nil, apperrors.Internal("Failed to register account", err)
	}

	s.cfg.Log.Info("Account registered successfully",
		"id", account.ID,
		"role", account.Role,
		"vendor_profile", account.VendorProfileID,
	)

	return s.issueSession(account)
}

func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, validation.ToAppError("Please provide email and password", err)
	}

	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, accounterrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to look up account", "error", err)
			return nil, apperrors.Internal("Failed to log in", err)
		}
		// Burn a comparison so a missing account costs the same as a wrong password.
		_ = s.hasher.Compare(s.placeholderHash(), req.Password)
		s.cfg.Log.Warn("Login failed", "reason", "unknown email")
		return nil, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		s.cfg.Log.Warn("Login failed", "account_id", account.ID, "reason", "password mismatch")
		return nil, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	s.cfg.Log.Info("Login succeeded", "account_id", account.ID)
	return s.issueSession(account)
}

func (s *accountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "Failed to retrieve account", id)
	}
	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, id string, req *model.UpdateProfileRequest) (*model.Account, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	if err := s.validator.ValidateUpdateProfile(req); err != nil {
		return nil, validation.ToAppError("Profile validation failed", err)
	}

	account, err := s.repo.UpdateName(ctx, id, req.Name)
	if err != nil {
		return nil, s.translateError(err, "Failed to update profile", id)
	}

	s.cfg.Log.Info("Account profile updated", "id", id)
	return account, nil
}

func (s *accountService) UpdatePassword(ctx context.Context, id string, req *model.UpdatePasswordRequest) (*model.Session, error) {
	if err := s.validator.ValidateUpdatePassword(req); err != nil {
		return nil, validation.ToAppError("Password validation failed", err)
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "Failed to update password", id)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.CurrentPassword); err != nil {
		return nil, apperrors.Unauthorized("Your current password is wrong")
	}

	hash, err := s.hashPassword("newPassword", req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return nil, s.translateError(err, "Failed to update password", id)
	}
	account.PasswordHash = hash

	s.cfg.Log.Info("Password updated", "id", id)
	return s.issueSession(account)
}

// EnsureSuperAdmin creates the account or promotes an existing one.
func (s *accountService) EnsureSuperAdmin(ctx context.Context, name, email, password string) (*model.Account, error) {
	email = sanitizer.NormalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != model.RoleSuperAdmin {
			if err := s.repo.SetRole(ctx, existing.ID, model.RoleSuperAdmin); err != nil {
				return nil, apperrors.Internal("Failed to promote account", err)
			}
			existing.Role = model.RoleSuperAdmin
			s.cfg.Log.Info("Account promoted to super-admin", "id", existing.ID)
		}
		return existing, nil
	case !errors.Is(err, accounterrors.ErrNotFound):
		return nil, apperrors.Internal("Failed to look up account", err)
	}

	req := &model.RegisterRequest{Name: name, Email: email, Password: password}
	s.sanitizeRegister(req)
	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, validation.ToAppError("Admin validation failed", err)
	}

	hash, err := s.hashPassword("password", password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		VendorStatus: model.VendorStatusNotVendor,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, accounterrors.ErrDuplicateEmail) {
			return nil, apperrors.DuplicateEmail(email)
		}
		return nil, apperrors.Internal("Failed to create admin", err)
	}

	s.cfg.Log.Info("Super-admin created", "id", account.ID)
	return account, nil
}

// hashPassword reports an over-long password against field instead of
// failing the request as internal.
func (s *accountService) hashPassword(field, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", validation.ToAppError("Password validation failed", validation.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d bytes", validation.MaxPasswordBytes),
		})
	case err != nil:
		return "", apperrors.Internal("Failed to secure password", err)
	}
	return hash, nil
}

func (s *accountService) issueSession(account *model.Account) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to issue session token", "account_id", account.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue session", err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, User: account}, nil
}

func (s *accountService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}

func (s *accountService) translateError(err error, message, id string) error {
	switch {
	case errors.Is(err, accounterrors.ErrNotFound), errors.Is(err, accounterrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Account", id)
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *accountService) sanitizeRegister(req *model.RegisterRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Role = sanitizer.TrimAndNormalize(req.Role)
	req.CompanyName = sanitizer.NormalizeName(req.CompanyName)
	req.ServiceType = sanitizer.TrimAndNormalize(req.ServiceType)
	req.Description = sanitizer.NormalizeText(req.Description)
	req.Website = sanitizer.SanitizeURL(req.Website)
	req.ServiceCities = sanitizer.NormalizeCities(req.ServiceCities)
	req.Awards = sanitizer.NormalizeTexts(req.Awards)
}

// profileFromRegistration builds the initial profile. The company name falls
// back to the service type, then to "<name>'s Service".
func profileFromRegistration(req *model.RegisterRequest) *model.VendorProfile {
	companyName := req.CompanyName
	if companyName == "" {
		companyName = req.ServiceType
	}
	if companyName == "" {
		companyName = req.Name + "'s Service"
	}

	services := req.Services
	if len(services) == 0 && req.ServiceType != "" {
		services = []string{req.ServiceType}
	}

	p := &model.VendorProfile{
		CompanyName:   companyName,
		Description:   req.Description,
		Services:      services,
		Website:       req.Website,
		Experience:    req.Experience,
		TeamSize:      req.TeamSize,
		ServiceCities: req.ServiceCities,
		FoundedYear:   req.FoundedYear,
		Awards:        req.Awards,
		Portfolio:     []string{},
	}
	if req.Location != nil {
		p.Location = *req.Location
		p.Location.City = sanitizer.NormalizeCity(p.Location.City)
	}
	if req.PriceRange != nil {
		p.PriceRange = *req.PriceRange
	}
	if req.SocialLinks != nil {
		p.SocialLinks = *req.SocialLinks
	}
	if req.BookingPolicy != nil {
		p.BookingPolicy = *req.BookingPolicy
	}
	return p
}
