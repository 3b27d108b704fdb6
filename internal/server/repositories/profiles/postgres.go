package profiles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/dbx"
	"github.com/dmitrijs2005/sharebox/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO profiles (code, endpoint, region, bucket, access_key, secret_key, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (code) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		p.Code, p.Endpoint, p.Region, p.Bucket, p.AccessKey, p.SealedSecret, p.Description, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorConflict, p.Code)
}

func (r *PostgresRepository) Get(ctx context.Context, code string) (*models.Profile, error) {
	query :=
		`SELECT code, endpoint, region, bucket, access_key, secret_key, description, created_at
		 FROM profiles WHERE code = $1`

	return getOne(r.db.QueryRowContext(ctx, query, code), code)
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Profile, error) {
	query :=
		`SELECT code, endpoint, region, bucket, access_key, secret_key, description, created_at
		 FROM profiles ORDER BY created_at DESC, code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return listAll(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Profile) error {
	query :=
		`UPDATE profiles
		 SET endpoint = $2, region = $3, bucket = $4, access_key = $5, secret_key = $6, description = $7
		 WHERE code = $1`

	res, err := r.db.ExecContext(ctx, query,
		p.Code, p.Endpoint, p.Region, p.Bucket, p.AccessKey, p.SealedSecret, p.Description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorNotFound, p.Code)
}

func (r *PostgresRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorNotFound, code)
}
