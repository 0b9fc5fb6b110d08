package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository keeps codes in the one_time_codes table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, email string, code string) (*models.OneTimeCode, error) {
	query :=
		`INSERT INTO one_time_codes (email, code)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	otp := &models.OneTimeCode{Email: email, Code: code}
	if err := r.db.QueryRowContext(ctx, query, email, code).Scan(&otp.ID, &otp.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

func (r *PostgresRepository) Find(ctx context.Context, email string, code string) (*models.OneTimeCode, error) {
	query :=
		`SELECT id, email, code, created_at FROM one_time_codes
		 WHERE email = $1 AND code = $2
		 ORDER BY created_at DESC
		 LIMIT 1`

	otp := &models.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, email, code).Scan(&otp.ID, &otp.Email, &otp.Code, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, otp *models.OneTimeCode) error {
	query := `DELETE FROM one_time_codes WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, otp.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM one_time_codes WHERE email = $1`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
