package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/retailpos-backend/api/responses"
	pkgAuth "github.com/angelmondragon/retailpos-backend/pkg/auth"
	"github.com/angelmondragon/retailpos-backend/pkg/auth/session"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// revocations may be nil.
func Auth(cfg config.JWTConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token id"))
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation"))
					return
				}
				if revoked {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token revoked"))
					return
				}
			}

			id := Identity{
				SubjectID:  claims.SubjectID.String(),
				BusinessID: claims.BusinessID.String(),
				Role:       string(claims.Role),
			}
			if claims.CustomerID != nil {
				id.CustomerID = claims.CustomerID.String()
			}
			if claims.BranchID != nil {
				id.BranchID = claims.BranchID.String()
			}
			ctx := WithIdentity(r.Context(), id)

			if logg != nil {
				ctx = logg.WithActorRole(ctx, id.Role)
				ctx = logg.WithField(ctx, "business_id", id.BusinessID)
				if id.CustomerID != "" {
					ctx = logg.WithCustomerID(ctx, id.CustomerID)
				}
				if id.BranchID != "" {
					ctx = logg.WithBranchID(ctx, id.BranchID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
