package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mescore/api/internal/models"
)

var (
	ErrLineNotFound      = errors.New("production line not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
)

type PlantRepository struct {
	pool *pgxpool.Pool
}

func NewPlantRepository(pool *pgxpool.Pool) *PlantRepository {
	return &PlantRepository{pool: pool}
}

func (r *PlantRepository) CreateLine(ctx context.Context, line models.ProductionLine) error {
	const query = `
		INSERT INTO production_lines (id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, line.ID, line.Name, line.Description, line.Status)
	return err
}

func (r *PlantRepository) GetLine(ctx context.Context, id string) (models.ProductionLine, error) {
	const query = `
		SELECT id, name, description, status, created_at, updated_at
		FROM production_lines WHERE id = $1
	`
	var line models.ProductionLine
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&line.ID, &line.Name, &line.Description, &line.Status, &line.CreatedAt, &line.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProductionLine{}, ErrLineNotFound
		}
		return models.ProductionLine{}, err
	}
	return line, nil
}

func (r *PlantRepository) ListLines(ctx context.Context) ([]models.ProductionLine, error) {
	const query = `
		SELECT id, name, description, status, created_at, updated_at
		FROM production_lines ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.ProductionLine
	for rows.Next() {
		var line models.ProductionLine
		if err := rows.Scan(
			&line.ID, &line.Name, &line.Description, &line.Status, &line.CreatedAt, &line.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PlantRepository) UpdateLine(ctx context.Context, line models.ProductionLine) error {
	const query = `
		UPDATE production_lines
		SET name = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, line.ID, line.Name, line.Description, line.Status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *PlantRepository) CreateEquipment(ctx context.Context, eq models.Equipment) error {
	const query = `
		INSERT INTO equipment (id, line_id, name, model, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, eq.ID, eq.LineID, eq.Name, eq.Model, eq.Status)
	return err
}

func (r *PlantRepository) GetEquipment(ctx context.Context, id string) (models.Equipment, error) {
	const query = `
		SELECT id, line_id, name, model, status, created_at, updated_at
		FROM equipment WHERE id = $1
	`
	var eq models.Equipment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&eq.ID, &eq.LineID, &eq.Name, &eq.Model, &eq.Status, &eq.CreatedAt, &eq.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Equipment{}, ErrEquipmentNotFound
		}
		return models.Equipment{}, err
	}
	return eq, nil
}

func (r *PlantRepository) ListEquipment(ctx context.Context, lineID string) ([]models.Equipment, error) {
	query := `
		SELECT id, line_id, name, model, status, created_at, updated_at
		FROM equipment
	`
	args := []any{}
	if lineID != "" {
		query += ` WHERE line_id = $1`
		args = append(args, lineID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Equipment
	for rows.Next() {
		var eq models.Equipment
		if err := rows.Scan(
			&eq.ID, &eq.LineID, &eq.Name, &eq.Model, &eq.Status, &eq.CreatedAt, &eq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, eq)
	}
	return list, rows.Err()
}

func (r *PlantRepository) UpdateEquipment(ctx context.Context, eq models.Equipment) error {
	const query = `
		UPDATE equipment
		SET name = $2, model = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, eq.ID, eq.Name, eq.Model, eq.Status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}

func (r *PlantRepository) UpdateEquipmentStatus(ctx context.Context, id string, status models.EquipmentStatus) error {
	const query = `UPDATE equipment SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}
