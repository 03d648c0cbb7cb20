package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"busline/pkg/auth"
	apperrors "busline/pkg/errors"
	httputil "busline/pkg/http"
	"busline/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const identityKey contextKey = "identity"

// Authenticator gates routes behind a bearer token.
type Authenticator struct {
	secret string
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	return &Authenticator{secret: secret, log: log}
}

// IdentityFrom returns the authenticated identity stored in ctx.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// Require validates the Authorization header and stores the caller's
// identity in the request context.
func (a *Authenticator) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, err := a.authenticate(r)
		if err != nil {
			a.log.Warn("Authentication failed",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				a.log.Error("Failed to write error response", "error", writeErr)
			}
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole authenticates and additionally checks the caller's role.
func (a *Authenticator) RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return a.Require(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, _ := IdentityFrom(r.Context())
		if identity.Role != role {
			a.log.Warn("Insufficient role",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
				"role", identity.Role,
			)
			appErr := apperrors.Forbidden("insufficient permissions")
			if writeErr := httputil.WriteError(w, appErr); writeErr != nil {
				a.log.Error("Failed to write error response", "error", writeErr)
			}
			return
		}
		next(w, r, ps)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Identity{}, apperrors.Unauthorized("missing authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return auth.Identity{}, apperrors.Unauthorized("authorization header must use the Bearer scheme")
	}

	identity, err := auth.ParseAccessToken(a.secret, token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return auth.Identity{}, apperrors.Unauthorized("token has expired")
		}
		return auth.Identity{}, apperrors.Unauthorized("invalid token")
	}

	return identity, nil
}
