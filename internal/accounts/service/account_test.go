package service

import (
	"context"
	"errors"
	"fmt"
	accounterrors "shubakar/internal/accounts/errors"
	"shubakar/internal/accounts/validator"
	vendorvalidator "shubakar/internal/vendors/validator"
	"shubakar/pkg/auth"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockAccountRepository keeps accounts in memory. Function fields override
// individual calls.
type mockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*model.Account

	createFunc func(ctx context.Context, a *model.Account) error
	linkFunc   func(ctx context.Context, id, profileID, status string) error
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{accounts: map[string]*model.Account{}}
}

func (m *mockAccountRepository) Create(ctx context.Context, a *model.Account) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return fmt.Errorf("%w: %s", accounterrors.ErrDuplicateEmail, a.Email)
		}
	}
	a.ID = primitive.NewObjectID().Hex()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, accounterrors.ErrNotFound
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, accounterrors.ErrNotFound
}

func (m *mockAccountRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	var out []*model.Account
	for _, id := range ids {
		if a, err := m.FindByID(ctx, id); err == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAccountRepository) mutate(id string, fn func(a *model.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return accounterrors.ErrNotFound
	}
	fn(a)
	return nil
}

func (m *mockAccountRepository) UpdateName(ctx context.Context, id, name string) (*model.Account, error) {
	if err := m.mutate(id, func(a *model.Account) { a.Name = name }); err != nil {
		return nil, err
	}
	return m.FindByID(ctx, id)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.mutate(id, func(a *model.Account) { a.PasswordHash = hash })
}

func (m *mockAccountRepository) LinkVendorProfile(ctx context.Context, id, profileID, status string) error {
	if m.linkFunc != nil {
		return m.linkFunc(ctx, id, profileID, status)
	}
	return m.mutate(id, func(a *model.Account) {
		a.VendorProfileID = profileID
		a.VendorStatus = status
	})
}

func (m *mockAccountRepository) SetVendorStatus(ctx context.Context, id, status string) error {
	return m.mutate(id, func(a *model.Account) { a.VendorStatus = status })
}

func (m *mockAccountRepository) ResetToCustomer(ctx context.Context, id string) error {
	return m.mutate(id, func(a *model.Account) {
		a.Role = model.RoleCustomer
		a.VendorStatus = model.VendorStatusNotVendor
		a.VendorProfileID = ""
	})
}

func (m *mockAccountRepository) SetRole(ctx context.Context, id, role string) error {
	return m.mutate(id, func(a *model.Account) { a.Role = role })
}

func (m *mockAccountRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockProfileCreator struct {
	created []*model.VendorProfile
	err     error
}

func (m *mockProfileCreator) Create(ctx context.Context, p *model.VendorProfile) error {
	if m.err != nil {
		return m.err
	}
	p.ID = primitive.NewObjectID().Hex()
	m.created = append(m.created, p)
	return nil
}

func newTestService(t *testing.T) (AccountService, *mockAccountRepository, *mockProfileCreator, auth.TokenIssuer) {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	tokens, err := auth.NewJWTIssuer("a-very-long-test-secret", time.Hour, "shubakar-test")
	if err != nil {
		t.Fatal(err)
	}
	repo := newMockAccountRepository()
	profiles := &mockProfileCreator{}
	svc := NewAccountService(
		repo,
		profiles,
		auth.NewBcryptHasher(4),
		tokens,
		validator.NewAccountValidator(),
		vendorvalidator.NewVendorValidator(),
		&config.Config{Log: log},
	)
	return svc, repo, profiles, tokens
}

func TestRegister_Customer(t *testing.T) {
	svc, repo, profiles, tokens := newTestService(t)

	session, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "  Alice  ",
		Email:    "Alice@Test.com",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if session.User.Email != "alice@test.com" || session.User.Name != "Alice" {
		t.Errorf("account not normalized: %+v", session.User)
	}
	if session.User.Role != model.RoleCustomer || session.User.VendorStatus != model.VendorStatusNotVendor {
		t.Errorf("role/status = %s/%s", session.User.Role, session.User.VendorStatus)
	}
	if len(profiles.created) != 0 {
		t.Error("customers must not get a vendor profile")
	}

	stored, _ := repo.FindByID(context.Background(), session.User.ID)
	if stored.PasswordHash == "pw123456" || stored.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	claims, err := tokens.Verify(session.Token)
	if err != nil || claims.AccountID != session.User.ID {
		t.Errorf("token does not identify the account: %v", err)
	}
}

func TestRegister_RoleElevationDowngraded(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, role := range []string{model.RoleAdmin, model.RoleSuperAdmin, "root"} {
		session, err := svc.Register(context.Background(), &model.RegisterRequest{
			Name:     "Mallory",
			Email:    role + "@test.com",
			Password: "pw123456",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("Register(%s) error = %v", role, err)
		}
		if session.User.Role != model.RoleCustomer {
			t.Errorf("requested %s, got %s", role, session.User.Role)
		}
	}
}

func TestRegister_VendorCreatesLinkedProfile(t *testing.T) {
	svc, repo, profiles, _ := newTestService(t)

	session, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:        "Bob",
		Email:       "bob@test.com",
		Password:    "pw123456",
		Role:        model.RoleVendor,
		CompanyName: "Bob Events",
		Services:    []string{model.ServiceCatering},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if len(profiles.created) != 1 {
		t.Fatalf("profiles created = %d", len(profiles.created))
	}
	profile := profiles.created[0]
	if profile.UserID != session.User.ID || profile.CompanyName != "Bob Events" || profile.IsApproved {
		t.Errorf("profile = %+v", profile)
	}

	stored, _ := repo.FindByID(context.Background(), session.User.ID)
	if stored.VendorProfileID != profile.ID || stored.VendorStatus != model.VendorStatusPending {
		t.Errorf("account link = %s/%s", stored.VendorProfileID, stored.VendorStatus)
	}
}

func TestRegister_CompanyNameFallbacks(t *testing.T) {
	tests := []struct {
		name string
		req  model.RegisterRequest
		want string
	}{
		{"company name", model.RegisterRequest{CompanyName: "Lens Co"}, "Lens Co"},
		{"service type", model.RegisterRequest{ServiceType: model.ServicePhotography}, model.ServicePhotography},
		{"owner name", model.RegisterRequest{Name: "Carol"}, "Carol's Service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := profileFromRegistration(&tt.req).CompanyName; got != tt.want {
				t.Errorf("company name = %q, want %q", got, tt.want)
			}
		})
	}

	p := profileFromRegistration(&model.RegisterRequest{ServiceType: model.ServiceDecor})
	if len(p.Services) != 1 || p.Services[0] != model.ServiceDecor {
		t.Errorf("services = %v, want service type", p.Services)
	}
}

func TestRegister_InvalidVendorProfileCreatesNothing(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Bob",
		Email:    "bob@test.com",
		Password: "pw123456",
		Role:     model.RoleVendor,
		Services: []string{"Fireworks"},
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if len(repo.accounts) != 0 {
		t.Error("no account should be created when the profile is invalid")
	}
}

func TestRegister_ProfileFailureIsReported(t *testing.T) {
	svc, _, profiles, _ := newTestService(t)
	profiles.err = errors.New("write conflict")

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name: "Bob", Email: "bob@test.com", Password: "pw123456", Role: model.RoleVendor,
	})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("err = %v, want internal", err)
	}
}

func TestRegister_DuplicateEmailAnyCase(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: "pw123456"}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Alice Two", Email: "ALICE@test.COM", Password: "pw654321"})
	if !apperrors.HasCode(err, apperrors.CodeDuplicateEmail) {
		t.Fatalf("err = %v, want DUPLICATE_EMAIL", err)
	}
	if apperrors.AsAppError(err).StatusCode() != 409 {
		t.Errorf("status = %d", apperrors.AsAppError(err).StatusCode())
	}
}

func TestLogin_NoEnumeration(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: "pw123456"}); err != nil {
		t.Fatal(err)
	}

	_, wrongPassword := svc.Login(ctx, &model.LoginRequest{Email: "alice@test.com", Password: "nope1234"})
	_, unknownEmail := svc.Login(ctx, &model.LoginRequest{Email: "ghost@test.com", Password: "pw123456"})

	a, b := apperrors.AsAppError(wrongPassword), apperrors.AsAppError(unknownEmail)
	if a.Code != apperrors.CodeUnauthorized || a.Code != b.Code || a.Message != b.Message {
		t.Errorf("errors differ: %+v vs %+v", a, b)
	}

	session, err := svc.Login(ctx, &model.LoginRequest{Email: " Alice@Test.com ", Password: "pw123456"})
	if err != nil || session.Token == "" {
		t.Errorf("valid login failed: %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: "pw123456"})
	id := session.User.ID

	_, err := svc.UpdatePassword(ctx, id, &model.UpdatePasswordRequest{CurrentPassword: "wrong123", NewPassword: "newpass1"})
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("wrong current password: err = %v", err)
	}

	renewed, err := svc.UpdatePassword(ctx, id, &model.UpdatePasswordRequest{CurrentPassword: "pw123456", NewPassword: "newpass1"})
	if err != nil || renewed.Token == "" {
		t.Fatalf("UpdatePassword() = %v", err)
	}

	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "alice@test.com", Password: "pw123456"}); err == nil {
		t.Error("old password should no longer work")
	}
	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "alice@test.com", Password: "newpass1"}); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestPasswordByteLimit(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	accented := strings.Repeat("é", 40) // 40 characters, 80 bytes

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: accented})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("Register() err = %v, want validation error", err)
	}
	if _, err := repo.FindByEmail(ctx, "alice@test.com"); err == nil {
		t.Error("rejected registration must not store an account")
	}

	session, err := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: strings.Repeat("é", 36)})
	if err != nil {
		t.Fatalf("72 byte password: Register() error = %v", err)
	}

	_, err = svc.UpdatePassword(ctx, session.User.ID, &model.UpdatePasswordRequest{
		CurrentPassword: strings.Repeat("é", 36),
		NewPassword:     accented,
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("UpdatePassword() err = %v, want validation error", err)
	}
}

type longPasswordHasher struct{ auth.PasswordHasher }

func (longPasswordHasher) Hash(string) (string, error) { return "", auth.ErrPasswordTooLong }

func TestHashPassword_TooLongIsValidationError(t *testing.T) {
	svc := &accountService{hasher: longPasswordHasher{}, cfg: &config.Config{Log: logger.Nop()}}

	_, err := svc.hashPassword("password", "pw123456")
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("hashPassword() err = %v, want validation error", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, _ := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: "pw123456"})

	account, err := svc.UpdateProfile(ctx, session.User.ID, &model.UpdateProfileRequest{Name: "  Alice   Liddell "})
	if err != nil || account.Name != "Alice Liddell" {
		t.Errorf("UpdateProfile() = %+v, %v", account, err)
	}

	_, err = svc.UpdateProfile(ctx, primitive.NewObjectID().Hex(), &model.UpdateProfileRequest{Name: "Ghost"})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing account: err = %v", err)
	}
}

func TestEnsureSuperAdmin(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureSuperAdmin(ctx, "Root", "root@test.com", "rootpass1")
	if err != nil || created.Role != model.RoleSuperAdmin {
		t.Fatalf("EnsureSuperAdmin() = %+v, %v", created, err)
	}

	session, _ := svc.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@test.com", Password: "pw123456"})
	promoted, err := svc.EnsureSuperAdmin(ctx, "Alice", "alice@test.com", "ignored1")
	if err != nil || promoted.ID != session.User.ID {
		t.Fatalf("promotion = %+v, %v", promoted, err)
	}
	stored, _ := repo.FindByID(ctx, session.User.ID)
	if stored.Role != model.RoleSuperAdmin {
		t.Errorf("role = %s", stored.Role)
	}
}
