package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/vintrade/parts-market/internal/domain/account"
)

// accountKey is the context key for the authenticated account.
type accountKey struct{}

// AccountFromContext returns the authenticated account, or nil for anonymous
// requests.
func AccountFromContext(ctx context.Context) *account.Account {
	if a, ok := ctx.Value(accountKey{}).(*account.Account); ok {
		return a
	}
	return nil
}

// Authenticator resolves bearer session tokens to accounts. Tokens are hashed
// with HMAC-SHA256 and a server-side pepper before lookup, so the sessions
// table never holds usable token material.
type Authenticator struct {
	accounts account.Repository
	pepper   []byte
}

// NewAuthenticator creates an Authenticator with the given account repository
// and HMAC pepper.
func NewAuthenticator(accounts account.Repository, pepper []byte) *Authenticator {
	return &Authenticator{accounts: accounts, pepper: pepper}
}

// Middleware attaches the authenticated account to the request context when a
// valid session token is presented. Requests without a token (or with an
// unknown or expired one) proceed anonymously; endpoints that require a role
// reject them with 401 or 403 themselves.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			acct, err := a.accounts.FindBySessionHash(r.Context(), a.hash(token))
			if err != nil {
				if !errors.Is(err, account.ErrSessionNotFound) {
					writeInternalError(w, r, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey{}, acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authenticator) hash(token string) string {
	mac := hmac.New(sha256.New, a.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// bearerToken extracts the session token from the Authorization header,
// falling back to the X-Session-Token header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}
