package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/internal/accounts/mail"
	"github.com/aussiebroadwan/qayimli/pkg/cryptox"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

// AccountService composes the user store, token service, federation and
// mailer into the account flows exposed over HTTP.
type AccountService struct {
	Users      UserStore
	Tokens     *TokenService
	Federation *FederationService
	Mailer     mail.Sender

	// FrontBaseURL is where the web front end serves /resetpassword/<token>.
	FrontBaseURL string
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
	PictureURL  string
	PhoneNumber string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.AuthResult, error) {
	l := slogx.FromContext(ctx)

	_, err := s.Users.FindByEmail(ctx, in.Email)
	if err == nil {
		return domain.AuthResult{}, ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return domain.AuthResult{}, err
	}

	u, err := s.Users.CreateUser(ctx, domain.User{
		Email:       in.Email,
		DisplayName: in.DisplayName,
		PictureURL:  in.PictureURL,
		PhoneNumber: in.PhoneNumber,
	}, in.Password)
	if err != nil {
		return domain.AuthResult{}, err
	}

	l.Info("user registered", "user_id", u.ID)
	return s.authResult(ctx, u)
}

// Login does not distinguish an unknown email from a wrong password.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		l.Warn("login for unknown email")
		return domain.AuthResult{}, ErrUnauthenticated
	}
	if err != nil {
		return domain.AuthResult{}, err
	}

	ok, err := s.Users.CheckPassword(ctx, u, password)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if !ok {
		l.Warn("login with wrong password", "user_id", u.ID)
		return domain.AuthResult{}, ErrUnauthenticated
	}

	return s.authResult(ctx, u)
}

// FederatedLogin signs in with a provider ID token, creating the account on
// first use.
func (s *AccountService) FederatedLogin(ctx context.Context, providerToken string) (domain.AuthResult, error) {
	l := slogx.FromContext(ctx)

	id, err := s.Federation.VerifyFederated(ctx, providerToken)
	if err != nil {
		return domain.AuthResult{}, err
	}

	u, err := s.Users.FindByEmail(ctx, id.Email)
	if errors.Is(err, ErrUserNotFound) {
		u, err = s.Users.CreateUser(ctx, domain.User{
			Email:       id.Email,
			DisplayName: id.Name,
			PictureURL:  id.Picture,
		}, "")
		// Lost a race with a concurrent first login for the same email.
		if errors.Is(err, ErrEmailTaken) {
			u, err = s.Users.FindByEmail(ctx, id.Email)
		} else if err == nil {
			l.Info("federated user created", "user_id", u.ID)
		}
	}
	if err != nil {
		return domain.AuthResult{}, err
	}

	return s.authResult(ctx, u)
}

// ForgotPassword mails a reset link. An unknown email yields ErrUserNotFound.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.Tokens.IssueReset(u.Email)
	if err != nil {
		return err
	}

	body, err := mail.RenderResetPassword(s.resetURL(token))
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, u.Email, mail.ResetPasswordSubject, body); err != nil {
		l.Error("failed to send reset email", "user_id", u.ID, "err", err)
		return err
	}

	l.Info("reset email sent", "user_id", u.ID, "token_fp", cryptox.FingerprintToken(token))
	return nil
}

func (s *AccountService) resetURL(token string) string {
	return strings.TrimRight(s.FrontBaseURL, "/") + "/resetpassword/" + token
}

// ResetPassword validates the emailed token and hands the store its own reset
// proof. Token failures are returned as *jwtx.ValidationError.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.ValidateReset(token)
	if err != nil {
		l.Warn("reset token rejected", "token_fp", cryptox.FingerprintToken(token), "err", err)
		return err
	}

	u, err := s.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}

	internal, err := s.Users.GeneratePasswordResetToken(ctx, u)
	if err != nil {
		return err
	}
	if err := s.Users.ResetPassword(ctx, u, internal, newPassword); err != nil {
		return err
	}

	l.Info("password reset", "user_id", u.ID)
	return nil
}

// CurrentUser re-issues a session token for the authenticated email.
func (s *AccountService) CurrentUser(ctx context.Context, email string) (domain.AuthResult, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return domain.AuthResult{}, err
	}
	return s.authResult(ctx, u)
}

func (s *AccountService) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Users.FindByEmail(ctx, email)
}

func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Users.EmailExists(ctx, email)
}

func (s *AccountService) Address(ctx context.Context, email string) (domain.Address, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return domain.Address{}, err
	}
	return s.Users.GetAddress(ctx, u)
}

func (s *AccountService) UpdateAddress(ctx context.Context, email string, a domain.Address) (domain.Address, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return domain.Address{}, err
	}
	if err := s.Users.UpdateAddress(ctx, u, a); err != nil {
		return domain.Address{}, err
	}
	return s.Users.GetAddress(ctx, u)
}

func (s *AccountService) authResult(ctx context.Context, u domain.User) (domain.AuthResult, error) {
	roles, err := s.Users.GetRoles(ctx, u)
	if err != nil {
		return domain.AuthResult{}, err
	}

	token, err := s.Tokens.IssueSession(u, roles)
	if err != nil {
		return domain.AuthResult{}, err
	}

	return domain.AuthResult{
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PictureURL:  u.PictureURL,
		Token:       token,
	}, nil
}
