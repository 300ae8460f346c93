package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
)

const userColumns = `id, email, user_name, display_name, picture_url, phone_number,
	password_hash, security_stamp, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, user_name, display_name, picture_url, phone_number,
			password_hash, security_stamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.UserName,
		u.DisplayName,
		u.PictureURL,
		u.PhoneNumber,
		mapStringNull(u.PasswordHash),
		u.SecurityStamp,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = ?, picture_url = ?, phone_number = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		u.DisplayName, u.PictureURL, u.PhoneNumber, u.ID,
	)
	return requireAffected(res, err)
}

func (r *usersRepo) UpdateCredentials(ctx context.Context, userID, passwordHash, securityStamp string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, security_stamp = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapStringNull(passwordHash), securityStamp, userID,
	)
	return requireAffected(res, err)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u            domain.User
		passwordHash sql.NullString
		created      time.Time
		updated      time.Time
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.UserName,
		&u.DisplayName,
		&u.PictureURL,
		&u.PhoneNumber,
		&passwordHash,
		&u.SecurityStamp,
		&created,
		&updated,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.PasswordHash = mapNullString(passwordHash)
	u.CreatedAt = created.UTC()
	u.UpdatedAt = updated.UTC()
	return u, nil
}

func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
