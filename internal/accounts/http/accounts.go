package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/internal/accounts/service"
	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
	"github.com/aussiebroadwan/qayimli/pkg/httpx"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

type AccountsHandler struct {
	Accounts *service.AccountService
}

// Register handles POST /v1/accounts/register.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	res, err := h.Accounts.Register(r.Context(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		PictureURL:  req.PictureURL,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(res))
}

// Login handles POST /v1/accounts/login.
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	res, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(res))
}

// GoogleLogin handles POST /v1/accounts/google.
func (h *AccountsHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.GoogleLoginRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	res, err := h.Accounts.FederatedLogin(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(res))
}

// EmailExists handles GET /v1/accounts/email-exists?email=.
func (h *AccountsHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		authsdk.ErrInvalidRequest.With("email is required").WriteError(w)
		return
	}

	exists, err := h.Accounts.EmailExists(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.EmailExistsResponse{Exists: exists})
}

// ForgotPassword handles POST /v1/accounts/forgot-password.
func (h *AccountsHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoContent(w)
}

// ResetPassword handles POST /v1/accounts/reset-password.
func (h *AccountsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req authsdk.ResetPasswordRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	err := h.Accounts.ResetPassword(r.Context(), req.Token, req.NewPassword)
	// A valid token for an account that no longer exists is still a bad token.
	if errors.Is(err, service.ErrUserNotFound) {
		log.Warn("reset token for unknown user")
		authsdk.ErrInvalidResetToken.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoContent(w)
}

// CurrentUser handles GET /v1/accounts/me.
func (h *AccountsHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	email, ok := httpx.EmailFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthenticated.With("session has no email").WriteError(w)
		return
	}

	res, err := h.Accounts.CurrentUser(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(res))
}

// UserByEmail handles GET /v1/accounts/users/{email}.
func (h *AccountsHandler) UserByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if email == "" {
		authsdk.ErrInvalidRequest.With("email is required").WriteError(w)
		return
	}

	u, err := h.Accounts.UserByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserProfile{
		DisplayName: u.DisplayName,
		Email:       u.Email,
		UserName:    u.UserName,
		PictureURL:  u.PictureURL,
		PhoneNumber: u.PhoneNumber,
	})
}

// Address handles GET /v1/accounts/address.
func (h *AccountsHandler) Address(w http.ResponseWriter, r *http.Request) {
	email, ok := httpx.EmailFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthenticated.With("session has no email").WriteError(w)
		return
	}

	a, err := h.Accounts.Address(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, addressDTO(a))
}

// UpdateAddress handles PUT /v1/accounts/address.
func (h *AccountsHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	email, ok := httpx.EmailFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthenticated.With("session has no email").WriteError(w)
		return
	}

	var req authsdk.Address
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	a, err := h.Accounts.UpdateAddress(r.Context(), email, domain.Address{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Street:    req.Street,
		City:      req.City,
		Country:   req.Country,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, addressDTO(a))
}

func userResponse(res domain.AuthResult) authsdk.UserResponse {
	return authsdk.UserResponse{
		DisplayName: res.DisplayName,
		Email:       res.Email,
		PictureURL:  res.PictureURL,
		Token:       res.Token,
	}
}

func addressDTO(a domain.Address) authsdk.Address {
	return authsdk.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Street:    a.Street,
		City:      a.City,
		Country:   a.Country,
	}
}
