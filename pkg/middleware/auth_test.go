package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"shubakar/pkg/auth"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccountLoader struct {
	accounts map[string]*model.Account
}

func (m *mockAccountLoader) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, apperrors.NotFound("Account")
}

func newTestGuard(t *testing.T) (*Guard, auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewJWTIssuer("a-very-long-test-secret", time.Hour, "shubakar-test")
	require.NoError(t, err)

	loader := &mockAccountLoader{accounts: map[string]*model.Account{
		"65f000000000000000000001": {ID: "65f000000000000000000001", Name: "Cleo", Role: model.RoleCustomer},
		"65f000000000000000000002": {ID: "65f000000000000000000002", Name: "Ada", Role: model.RoleAdmin},
	}}
	return NewGuard(issuer, loader, "jwt", logger.Nop()), issuer
}

func serveGuarded(g *Guard, r *http.Request, roles ...string) (*httptest.ResponseRecorder, *model.Account) {
	var seen *model.Account
	h := g.Protect(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen, _ = AccountFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}, roles...)

	rec := httptest.NewRecorder()
	h(rec, r, nil)
	return rec, seen
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestGuard_BearerAndCookie(t *testing.T) {
	g, issuer := newTestGuard(t)
	token, _, err := issuer.Issue("65f000000000000000000001")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec, account := serveGuarded(g, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, account)
	assert.Equal(t, "Cleo", account.Name)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rec, account = serveGuarded(g, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, account)
}

func TestGuard_UniformUnauthorized(t *testing.T) {
	g, issuer := newTestGuard(t)
	orphan, _, err := issuer.Issue("65f0000000000000000000ff")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer not-a-token"},
		{"wrong scheme", "Basic abc"},
		{"deleted account", "Bearer " + orphan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec, account := serveGuarded(g, r)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, account)
			assert.Equal(t, invalidSessionMessage, decodeMessage(t, rec))
		})
	}
}

func TestGuard_RoleCheck(t *testing.T) {
	g, issuer := newTestGuard(t)
	customer, _, _ := issuer.Issue("65f000000000000000000001")
	admin, _, _ := issuer.Issue("65f000000000000000000002")

	r := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/admin/all", nil)
	r.Header.Set("Authorization", "Bearer "+customer)
	rec, _ := serveGuarded(g, r, model.RoleAdmin, model.RoleSuperAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/vendors/admin/all", nil)
	r.Header.Set("Authorization", "Bearer "+admin)
	rec, _ = serveGuarded(g, r, model.RoleAdmin, model.RoleSuperAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_ExtractToken_Query(t *testing.T) {
	g, _ := newTestGuard(t)
	r := httptest.NewRequest(http.MethodGet, "/ws/chat?token=abc", nil)

	assert.Equal(t, "", g.ExtractToken(r, false))
	assert.Equal(t, "abc", g.ExtractToken(r, true))
}
