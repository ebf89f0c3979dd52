package middleware

import (
	"context"
	"net/http"
	"shubakar/pkg/auth"
	apperrors "shubakar/pkg/errors"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const (
	AccountKey contextKey = "account"

	invalidSessionMessage = "invalid token or session expired"
)

// AccountLoader resolves the account a verified token refers to.
type AccountLoader interface {
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

// Guard authenticates requests with a session token taken from the
// Authorization header or the session cookie, and gates routes by role.
type Guard struct {
	tokens     auth.TokenIssuer
	accounts   AccountLoader
	cookieName string
	log        *logger.Logger
}

func NewGuard(tokens auth.TokenIssuer, accounts AccountLoader, cookieName string, log *logger.Logger) *Guard {
	return &Guard{
		tokens:     tokens,
		accounts:   accounts,
		cookieName: cookieName,
		log:        log,
	}
}

// Authenticate returns the caller's account. Every failure, whether a
// missing, expired or tampered token or a deleted account, yields the same
// Unauthorized error.
func (g *Guard) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized(invalidSessionMessage)
	}

	account, err := g.accounts.GetByID(ctx, claims.AccountID)
	if err != nil || account == nil {
		if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
			g.log.Warn("Failed to load account for session", "account_id", claims.AccountID, "error", err)
		}
		return nil, apperrors.Unauthorized(invalidSessionMessage)
	}
	return account, nil
}

// Protect wraps a route. With no roles any authenticated account passes.
func (g *Guard) Protect(next httprouter.Handle, roles ...string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		account, err := g.Authenticate(r.Context(), g.ExtractToken(r, false))
		if err != nil {
			_ = httputil.WriteError(w, err)
			return
		}

		if !HasRole(account, roles...) {
			g.log.Warn("Role check failed",
				"request_id", RequestIDFrom(r.Context()),
				"account_id", account.ID,
				"role", account.Role,
				"allowed", roles,
			)
			_ = httputil.WriteError(w, apperrors.Forbidden("you do not have permission to perform this action"))
			return
		}

		next(w, r.WithContext(WithAccount(r.Context(), account)), ps)
	}
}

// ExtractToken reads a bearer header, then the session cookie. allowQuery
// also accepts ?token=, for browser websocket clients that cannot set headers.
func (g *Guard) ExtractToken(r *http.Request, allowQuery bool) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

func HasRole(account *model.Account, roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if account.Role == role {
			return true
		}
	}
	return false
}

func WithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}

func AccountFrom(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(AccountKey).(*model.Account)
	return account, ok && account != nil
}
