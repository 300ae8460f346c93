package sqlite

import (
	"context"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
)

type addressesRepo struct {
	db dbtx
}

func (r *addressesRepo) GetAddress(ctx context.Context, userID string) (domain.Address, error) {
	var a domain.Address
	err := r.db.QueryRowContext(ctx, `
		SELECT first_name, last_name, street, city, country
		FROM addresses WHERE user_id = ?`,
		userID,
	).Scan(&a.FirstName, &a.LastName, &a.Street, &a.City, &a.Country)
	if err != nil {
		return domain.Address{}, mapNotFound(err)
	}
	return a, nil
}

func (r *addressesRepo) UpsertAddress(ctx context.Context, userID string, a domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (user_id, first_name, last_name, street, city, country)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			street     = excluded.street,
			city       = excluded.city,
			country    = excluded.country,
			updated_at = CURRENT_TIMESTAMP`,
		userID, a.FirstName, a.LastName, a.Street, a.City, a.Country,
	)
	return err
}
