package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"shubakar/pkg/auth"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, caller *model.Account, req *model.CreateBookingRequest) (*model.Booking, error)
	listFunc   func(ctx context.Context, caller *model.Account, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error)
	updateFunc func(ctx context.Context, caller *model.Account, id string, req *model.UpdateStatusRequest) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, caller *model.Account, req *model.CreateBookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, caller, req)
}

func (m *mockBookingService) List(ctx context.Context, caller *model.Account, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error) {
	return m.listFunc(ctx, caller, filter, limit, offset)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, caller *model.Account, id string, req *model.UpdateStatusRequest) (*model.Booking, error) {
	return m.updateFunc(ctx, caller, id, req)
}

func (m *mockBookingService) GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

type staticAccounts map[string]*model.Account

func (s staticAccounts) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, apperrors.NotFound("Account")
}

var (
	customer = &model.Account{ID: "65f000000000000000000001", Name: "Alice", Role: model.RoleCustomer}
	vendor   = &model.Account{ID: "65f000000000000000000002", Name: "Bob", Role: model.RoleVendor}
	admin    = &model.Account{ID: "65f000000000000000000003", Name: "Root", Role: model.RoleSuperAdmin}
)

func newRouter(t *testing.T, svc *mockBookingService) (*httprouter.Router, func(*model.Account) string) {
	t.Helper()
	tokens, err := auth.NewJWTIssuer("a-very-long-test-secret", time.Hour, "shubakar-test")
	require.NoError(t, err)

	guard := middleware.NewGuard(tokens, staticAccounts{customer.ID: customer, vendor.ID: vendor, admin.ID: admin}, "jwt", logger.Nop())
	router := httprouter.New()
	NewBookingHandler(svc, guard, logger.Nop()).RegisterRoutes(router)

	return router, func(a *model.Account) string {
		token, _, err := tokens.Issue(a.ID)
		require.NoError(t, err)
		return token
	}
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, caller *model.Account, req *model.CreateBookingRequest) (*model.Booking, error) {
			assert.Equal(t, customer.ID, caller.ID)
			assert.Equal(t, 10000.0, req.Price)
			return &model.Booking{ID: "65f0000000000000000000b1", CustomerID: caller.ID, VendorID: req.VendorID, Status: model.BookingStatusPending}, nil
		},
	}
	router, tokenFor := newRouter(t, svc)

	w := do(router, http.MethodPost, "/api/v1/bookings", tokenFor(customer),
		`{"vendorId":"65f0000000000000000000aa","serviceType":"Catering","date":"2025-12-01","price":10000}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"booking"`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestCreate_VendorForbidden(t *testing.T) {
	router, tokenFor := newRouter(t, &mockBookingService{})

	w := do(router, http.MethodPost, "/api/v1/bookings", tokenFor(vendor), `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodPost, "/api/v1/bookings", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList_Filters(t *testing.T) {
	var got model.BookingFilter
	svc := &mockBookingService{
		listFunc: func(ctx context.Context, caller *model.Account, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error) {
			got = filter
			return []*model.BookingView{{Booking: &model.Booking{ID: "65f0000000000000000000b1"}}}, 1, nil
		},
	}
	router, tokenFor := newRouter(t, svc)

	w := do(router, http.MethodGet, "/api/v1/bookings?vendorId=65f0000000000000000000aa&status=accepted", tokenFor(admin), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "65f0000000000000000000aa", got.VendorID)
	assert.Equal(t, model.BookingStatusAccepted, got.Status)
	assert.Contains(t, w.Body.String(), `"results":1`)
	assert.Contains(t, w.Body.String(), `"bookings"`)
}

func TestList_InvalidStatus(t *testing.T) {
	router, tokenFor := newRouter(t, &mockBookingService{})

	w := do(router, http.MethodGet, "/api/v1/bookings?status=paid", tokenFor(customer), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"accepted", nil, http.StatusOK},
		{"not owner", apperrors.Forbidden("this booking does not belong to you"), http.StatusForbidden},
		{"terminal", apperrors.InvalidState("cannot change booking status from rejected to accepted"), http.StatusBadRequest},
		{"missing", apperrors.NotFound("Booking"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				updateFunc: func(ctx context.Context, caller *model.Account, id string, req *model.UpdateStatusRequest) (*model.Booking, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Booking{ID: id, Status: req.Status}, nil
				},
			}
			router, tokenFor := newRouter(t, svc)

			w := do(router, http.MethodPatch, "/api/v1/bookings/65f0000000000000000000b1", tokenFor(vendor), `{"status":"accepted"}`)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}
