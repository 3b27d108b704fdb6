package profiles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/dbx"
	"github.com/dmitrijs2005/sharebox/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO profiles (code, endpoint, region, bucket, access_key, secret_key, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (code) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		p.Code, p.Endpoint, p.Region, p.Bucket, p.AccessKey, p.SealedSecret, p.Description, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorConflict, p.Code)
}

func (r *SQLiteRepository) Get(ctx context.Context, code string) (*models.Profile, error) {
	query :=
		`SELECT code, endpoint, region, bucket, access_key, secret_key, description, created_at
		 FROM profiles WHERE code = ?`

	return getOne(r.db.QueryRowContext(ctx, query, code), code)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Profile, error) {
	query :=
		`SELECT code, endpoint, region, bucket, access_key, secret_key, description, created_at
		 FROM profiles ORDER BY created_at DESC, code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return listAll(rows)
}

func (r *SQLiteRepository) Update(ctx context.Context, p *models.Profile) error {
	query :=
		`UPDATE profiles
		 SET endpoint = ?, region = ?, bucket = ?, access_key = ?, secret_key = ?, description = ?
		 WHERE code = ?`

	res, err := r.db.ExecContext(ctx, query,
		p.Endpoint, p.Region, p.Bucket, p.AccessKey, p.SealedSecret, p.Description, p.Code)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorNotFound, p.Code)
}

func (r *SQLiteRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, common.ErrorNotFound, code)
}
