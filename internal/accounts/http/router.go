package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/qayimli/internal/accounts/service"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
	"github.com/aussiebroadwan/qayimli/pkg/httpx"
	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Accounts *service.AccountService

	// LookupRoles gates GET /v1/accounts/users/{email}. Empty means any
	// authenticated caller.
	LookupRoles []string
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSession()
	r.registerSystem()
}

// ServeHTTP applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Accounts: r.Accounts}

	// Credential checks are limited per IP and target email.
	r.Mux.Handle("POST /v1/accounts/register",
		httpx.Chain(http.HandlerFunc(h.Register),
			httpx.RateLimitByIPAndJSONField(httpx.AuthLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/accounts/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitByIPAndJSONField(httpx.AuthLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/accounts/google",
		httpx.Chain(http.HandlerFunc(h.GoogleLogin),
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)

	r.Mux.Handle("POST /v1/accounts/forgot-password",
		httpx.Chain(http.HandlerFunc(h.ForgotPassword),
			httpx.RateLimitByIPAndJSONField(httpx.MailLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/accounts/reset-password",
		httpx.Chain(http.HandlerFunc(h.ResetPassword),
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)

	r.Mux.Handle("GET /v1/accounts/email-exists",
		httpx.Chain(http.HandlerFunc(h.EmailExists),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSession() {
	h := &AccountsHandler{Accounts: r.Accounts}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.UserLimit),
		)
	}

	r.Mux.Handle("GET /v1/accounts/me", secured(h.CurrentUser))
	r.Mux.Handle("GET /v1/accounts/address", secured(h.Address))
	r.Mux.Handle("PUT /v1/accounts/address", secured(h.UpdateAddress))

	lookup := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if len(r.LookupRoles) > 0 {
		lookup = append(lookup, httpx.RequireAnyRole(r.LookupRoles...))
	}
	lookup = append(lookup, httpx.RateLimitByUser(httpx.UserLimit))
	r.Mux.Handle("GET /v1/accounts/users/{email}", httpx.Chain(http.HandlerFunc(h.UserByEmail), lookup...))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.verifier))
}
