package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/qayimli/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUser(email string) domain.User {
	return domain.User{
		ID:            idx.New().String(),
		Email:         email,
		UserName:      domain.UserNameFromEmail(email),
		DisplayName:   "Test User",
		SecurityStamp: "stamp-1",
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	users := st.Users()

	u := newUser("sara@example.com")
	u.PasswordHash = "$argon2id$fake"
	require.NoError(t, users.CreateUser(ctx, u))

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := users.GetUserByEmail(ctx, "SARA@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "sara", got.UserName)
		require.Equal(t, "$argon2id$fake", got.PasswordHash)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := newUser("Sara@Example.com")
		require.ErrorIs(t, users.CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := users.ExistsByEmail(ctx, "sara@example.com")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = users.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := users.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		changed := u
		changed.DisplayName = "Sara K"
		changed.PhoneNumber = "0501234567"
		require.NoError(t, users.UpdateProfile(ctx, changed))

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "Sara K", got.DisplayName)
		require.Equal(t, "0501234567", got.PhoneNumber)
	})

	t.Run("update credentials", func(t *testing.T) {
		require.NoError(t, users.UpdateCredentials(ctx, u.ID, "$argon2id$new", "stamp-2"))

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "$argon2id$new", got.PasswordHash)
		require.Equal(t, "stamp-2", got.SecurityStamp)

		err = users.UpdateCredentials(ctx, idx.New().String(), "x", "y")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("federated user has no password", func(t *testing.T) {
		fed := newUser("fed@example.com")
		require.NoError(t, users.CreateUser(ctx, fed))

		got, err := users.GetUserByEmail(ctx, "fed@example.com")
		require.NoError(t, err)
		require.False(t, got.HasPassword())
	})
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	u := newUser("admin@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	admin := domain.Role{ID: idx.New().String(), Name: "Admin"}
	member := domain.Role{ID: idx.New().String(), Name: "Member"}
	require.NoError(t, st.Roles().CreateRole(ctx, member))
	require.NoError(t, st.Roles().CreateRole(ctx, admin))
	require.ErrorIs(t, st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "admin"}),
		store.ErrAlreadyExists)

	got, err := st.Roles().GetRoleByName(ctx, "Admin")
	require.NoError(t, err)
	require.Equal(t, admin.ID, got.ID)

	_, err = st.Roles().GetRoleByName(ctx, "Ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Assignment order is preserved and repeats are ignored.
	require.NoError(t, st.Roles().AssignRole(ctx, u.ID, admin.ID))
	require.NoError(t, st.Roles().AssignRole(ctx, u.ID, member.ID))
	require.NoError(t, st.Roles().AssignRole(ctx, u.ID, admin.ID))

	names, err := st.Roles().ListUserRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Admin", "Member"}, names)

	none, err := st.Roles().ListUserRoles(ctx, idx.New().String())
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAddresses(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	u := newUser("addr@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	_, err := st.Addresses().GetAddress(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	first := domain.Address{FirstName: "Sara", LastName: "K", Street: "1 Main", City: "Riyadh", Country: "SA"}
	require.NoError(t, st.Addresses().UpsertAddress(ctx, u.ID, first))

	second := first
	second.City = "Jeddah"
	require.NoError(t, st.Addresses().UpsertAddress(ctx, u.ID, second))

	got, err := st.Addresses().GetAddress(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().CreateUser(ctx, newUser("rolled@example.com")))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = st.Users().GetUserByEmail(ctx, "rolled@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().CreateUser(ctx, newUser("kept@example.com"))
		})
		require.NoError(t, err)

		_, err = st.Users().GetUserByEmail(ctx, "kept@example.com")
		require.NoError(t, err)
	})

	t.Run("no nesting", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
