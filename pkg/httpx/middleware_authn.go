package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

// AuthnMiddleware accepts only session tokens. Signature, issuer, audience,
// expiry and purpose are all checked by v.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(authz, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(raw), jwtx.PurposeSession)
			if err != nil {
				code, _ := jwtx.CodeOf(err)
				log.Warn("bearer token rejected", "code", code, "err", err)
				if code == jwtx.CodeExpired {
					writeBearerError(w, "token expired")
					return
				}
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = slogx.With(contextWithAuth(ctx, claims), "user", claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthenticated",
		"error_description": desc,
	})
}
