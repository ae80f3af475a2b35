package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"account-service/internal/domain"
	"account-service/internal/xerrors"
)

// AccountRepository is the pgx-backed relational store for accounts.
type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	uuid, email, name, bio, gender, specialization, pic_url,
	tarif, is_member, is_ban, created_at, updated_at
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	acc := &domain.Account{}
	err := row.Scan(
		&acc.UUID,
		&acc.Email,
		&acc.Name,
		&acc.Bio,
		&acc.Gender,
		&acc.Specialization,
		&acc.PicURL,
		&acc.Tarif,
		&acc.IsMember,
		&acc.IsBan,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}
	return acc, nil
}

// GetByUUID fetches an account by its identity-provider uuid.
func (r *AccountRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE uuid = $1`
	return scanAccount(r.db.QueryRow(ctx, q, uuid))
}

// Upsert inserts the account or, on uuid conflict, overwrites the supplied
// fields. Conflict resolution is the store's: no client-side locking.
func (r *AccountRepository) Upsert(ctx context.Context, acc *domain.Account) (*domain.Account, error) {
	q := `
		INSERT INTO accounts (uuid, email, name, tarif, is_member, is_ban, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (uuid) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			tarif = EXCLUDED.tarif,
			is_member = EXCLUDED.is_member,
			is_ban = EXCLUDED.is_ban,
			updated_at = NOW()
		RETURNING ` + accountColumns

	return scanAccount(r.db.QueryRow(ctx, q,
		acc.UUID, acc.Email, acc.Name, acc.Tarif, acc.IsMember, acc.IsBan,
	))
}

// UpdateFields issues a single UPDATE covering exactly the present fields
// of the patch. Values must already be validated and normalized; explicit
// nulls clear the column.
func (r *AccountRepository) UpdateFields(ctx context.Context, uuid string, patch domain.FieldPatch) (*domain.UpdatedFields, error) {
	setClauses := []string{}
	args := []interface{}{uuid}
	returning := []string{}

	add := func(col string, val interface{}) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
		returning = append(returning, col)
	}

	if patch.Name.Present {
		add("name", patch.Name.Value)
	}
	if patch.Bio.Present {
		add("bio", patch.Bio.Ptr())
	}
	if patch.Gender.Present {
		add("gender", patch.Gender.Ptr())
	}
	if patch.Specialization.Present {
		add("specialization", patch.Specialization.Ptr())
	}

	if len(setClauses) == 0 {
		return &domain.UpdatedFields{}, nil
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	q := fmt.Sprintf(`
		UPDATE accounts
		SET %s
		WHERE uuid = $1
		RETURNING %s
	`, strings.Join(setClauses, ", "), strings.Join(returning, ", "))

	dest := []interface{}{}
	out := &domain.UpdatedFields{}
	for _, col := range returning {
		switch col {
		case "name":
			dest = append(dest, &out.Name)
		case "bio":
			dest = append(dest, &out.Bio)
		case "gender":
			dest = append(dest, &out.Gender)
		case "specialization":
			dest = append(dest, &out.Specialization)
		}
	}

	if err := r.db.QueryRow(ctx, q, args...).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}
	return out, nil
}

// UpdatePicURL points the account at a new picture object.
func (r *AccountRepository) UpdatePicURL(ctx context.Context, uuid, picURL string) error {
	q := `
		UPDATE accounts
		SET pic_url = $2, updated_at = NOW()
		WHERE uuid = $1
	`
	tag, err := r.db.Exec(ctx, q, uuid, picURL)
	if err != nil {
		return fmt.Errorf("update pic_url (pg=%s): %w", xerrors.ParsePGErrorCode(err), err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// ClearPicURL nulls the picture reference and returns the previous URL,
// empty when there was none.
func (r *AccountRepository) ClearPicURL(ctx context.Context, uuid string) (string, error) {
	// RETURNING sees the new row, so the old value comes from a CTE snapshot.
	q := `
		WITH old AS (
			SELECT pic_url FROM accounts WHERE uuid = $1
		)
		UPDATE accounts
		SET pic_url = NULL, updated_at = NOW()
		WHERE uuid = $1
		RETURNING (SELECT COALESCE(pic_url, '') FROM old)
	`

	var oldURL string
	if err := r.db.QueryRow(ctx, q, uuid).Scan(&oldURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", xerrors.ErrUserNotFound
		}
		return "", err
	}
	return oldURL, nil
}
