// Package profiles stores connection profiles. Create reports a duplicate
// code as common.ErrorConflict; Get, Update and Delete report an absent
// code as common.ErrorNotFound.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, code string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, code string) error
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.Scan(&p.Code, &p.Endpoint, &p.Region, &p.Bucket, &p.AccessKey,
		&p.SealedSecret, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// affected maps a write touching no rows to want.
func affected(res sql.Result, want error, code string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("profile %q: %w", code, want)
	}
	return nil
}

func getOne(row *sql.Row, code string) (*models.Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", code, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func listAll(rows *sql.Rows) ([]models.Profile, error) {
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
