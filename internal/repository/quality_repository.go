package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mescore/api/internal/models"
)

type QualityRepository struct {
	pool *pgxpool.Pool
}

func NewQualityRepository(pool *pgxpool.Pool) *QualityRepository {
	return &QualityRepository{pool: pool}
}

func (r *QualityRepository) Create(ctx context.Context, check models.QualityCheck) error {
	const query = `
		INSERT INTO quality_checks (id, work_order_id, checked_by, result, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		check.ID,
		check.WorkOrderID,
		check.CheckedBy,
		check.Result,
		check.Notes,
	)
	return err
}

func (r *QualityRepository) List(ctx context.Context, workOrderID string, limit int, offset int) ([]models.QualityCheck, error) {
	query := `
		SELECT id, work_order_id, checked_by, result, notes, created_at
		FROM quality_checks
	`
	args := []any{}
	if workOrderID != "" {
		query += ` WHERE work_order_id = $1`
		args = append(args, workOrderID)
	}
	query += ` ORDER BY created_at DESC`
	if workOrderID != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.QualityCheck
	for rows.Next() {
		var check models.QualityCheck
		if err := rows.Scan(
			&check.ID,
			&check.WorkOrderID,
			&check.CheckedBy,
			&check.Result,
			&check.Notes,
			&check.CreatedAt,
		); err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}
