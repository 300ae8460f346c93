package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
	"github.com/aussiebroadwan/qayimli/pkg/cryptox"
	"github.com/aussiebroadwan/qayimli/pkg/idx"
)

// DefaultMinPasswordLength applies when IdentityStore.MinPasswordLength is unset.
const DefaultMinPasswordLength = 8

// UserStore is the account persistence collaborator used by AccountService.
type UserStore interface {
	// CreateUser persists u. An empty password creates a federated-only user.
	CreateUser(ctx context.Context, u domain.User, password string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	CheckPassword(ctx context.Context, u domain.User, password string) (bool, error)
	GetRoles(ctx context.Context, u domain.User) ([]string, error)
	UpdateUser(ctx context.Context, u domain.User) error
	EmailExists(ctx context.Context, email string) (bool, error)

	// GeneratePasswordResetToken returns the store's own proof of a reset
	// request. It is never sent to the user.
	GeneratePasswordResetToken(ctx context.Context, u domain.User) (string, error)
	ResetPassword(ctx context.Context, u domain.User, resetToken, newPassword string) error

	GetAddress(ctx context.Context, u domain.User) (domain.Address, error)
	UpdateAddress(ctx context.Context, u domain.User, a domain.Address) error
}

// IdentityStore implements UserStore over a store.Store with argon2 hashed
// passwords. Reset tokens are bound to the user's security stamp so they stop
// working once the password changes.
type IdentityStore struct {
	Store             store.Store
	DefaultRoles      []string
	MinPasswordLength int
}

var _ UserStore = (*IdentityStore)(nil)

func (s *IdentityStore) CreateUser(ctx context.Context, u domain.User, password string) (domain.User, error) {
	u.Email = domain.NormalizeEmail(u.Email)
	if u.Email == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if u.UserName == "" {
		u.UserName = domain.UserNameFromEmail(u.Email)
	}

	if password != "" {
		if err := s.checkPassword(password); err != nil {
			return domain.User{}, err
		}
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		u.PasswordHash = hash
	}

	stamp, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.User{}, err
	}
	u.SecurityStamp = stamp
	u.ID = idx.New().String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		for _, name := range s.DefaultRoles {
			role, err := ensureRole(ctx, tx, name)
			if err != nil {
				return err
			}
			if err := tx.Roles().AssignRole(ctx, u.ID, role.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, err
	}

	return s.FindByEmail(ctx, u.Email)
}

func ensureRole(ctx context.Context, tx store.Tx, name string) (domain.Role, error) {
	role, err := tx.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role = domain.Role{ID: idx.New().String(), Name: name}
	if err := tx.Roles().CreateRole(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *IdentityStore) CheckPassword(_ context.Context, u domain.User, password string) (bool, error) {
	if !u.HasPassword() {
		return false, nil
	}

	err := cryptox.VerifyPassword(password, u.PasswordHash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		return false, nil
	default:
		return false, err
	}
}

func (s *IdentityStore) GetRoles(ctx context.Context, u domain.User) ([]string, error) {
	return s.Store.Roles().ListUserRoles(ctx, u.ID)
}

func (s *IdentityStore) UpdateUser(ctx context.Context, u domain.User) error {
	err := s.Store.Users().UpdateProfile(ctx, u)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *IdentityStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Store.Users().ExistsByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *IdentityStore) GeneratePasswordResetToken(_ context.Context, u domain.User) (string, error) {
	return s.sealReset(u.ID, u.SecurityStamp)
}

func (s *IdentityStore) ResetPassword(ctx context.Context, u domain.User, resetToken, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, u.ID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		expected, err := s.sealReset(current.ID, current.SecurityStamp)
		if err != nil {
			return err
		}
		if !cryptox.TokensEqual(expected, resetToken) {
			return ErrInvalidResetToken
		}

		hash, err := cryptox.HashPassword(newPassword)
		if err != nil {
			return err
		}
		stamp, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return err
		}
		return tx.Users().UpdateCredentials(ctx, current.ID, hash, stamp)
	})
}

func (s *IdentityStore) GetAddress(ctx context.Context, u domain.User) (domain.Address, error) {
	a, err := s.Store.Addresses().GetAddress(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Address{}, ErrAddressNotFound
	}
	return a, err
}

func (s *IdentityStore) UpdateAddress(ctx context.Context, u domain.User, a domain.Address) error {
	return s.Store.Addresses().UpsertAddress(ctx, u.ID, a)
}

func (s *IdentityStore) checkPassword(password string) error {
	minLen := s.MinPasswordLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	if len([]rune(password)) < minLen || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordRejected, minLen)
	}
	return nil
}

func (s *IdentityStore) sealReset(userID, stamp string) (string, error) {
	pepper, err := cryptox.LoadPepper()
	if err != nil {
		return "", err
	}
	return cryptox.Seal(pepper, "reset-password", userID, stamp), nil
}
