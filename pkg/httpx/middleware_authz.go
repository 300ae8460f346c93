package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole lets the request through when the session carries at least
// one of the given roles. It must run after AuthnMiddleware.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[strings.ToLower(s)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range rolesFromCtx(r.Context()) {
				if _, ok := want[strings.ToLower(role)]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":             "forbidden",
				"error_description": "requires one of roles: " + strings.Join(required, ", "),
			})
		})
	}
}
