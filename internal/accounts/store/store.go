package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this
// and expose sub-repositories so a Tx can hand out the same repos bound to
// the transaction.
type Store interface {
	Users() Users
	Roles() Roles
	Addresses() Addresses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. The transaction is rolled
	// back when fn returns an error and committed otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmail is a cheap existence probe used by sign-up forms.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user (id is provided by the caller via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile writes display name, picture and phone, bumps updated_at.
	UpdateProfile(ctx context.Context, u domain.User) error

	// UpdateCredentials replaces the password hash and security stamp together.
	UpdateCredentials(ctx context.Context, userID, passwordHash, securityStamp string) error
}

type Roles interface {
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	CreateRole(ctx context.Context, r domain.Role) error

	// AssignRole appends the role to the user's role list; assigning twice
	// is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// ListUserRoles returns role names in assignment order.
	ListUserRoles(ctx context.Context, userID string) ([]string, error)
}

type Addresses interface {
	GetAddress(ctx context.Context, userID string) (domain.Address, error)
	UpsertAddress(ctx context.Context, userID string, a domain.Address) error
}
