package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mescore/api/internal/models"
)

var (
	ErrWorkOrderNotFound  = errors.New("work order not found")
	ErrOrderNumberTaken   = errors.New("order number already in use")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

const workOrderColumns = `
	id, order_number, line_id, product, qty_planned, qty_produced, status,
	due_date, created_by, created_at, updated_at
`

type WorkOrderRepository struct {
	pool *pgxpool.Pool
}

func NewWorkOrderRepository(pool *pgxpool.Pool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

func scanWorkOrder(row pgx.Row) (models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := row.Scan(
		&wo.ID,
		&wo.OrderNumber,
		&wo.LineID,
		&wo.Product,
		&wo.QtyPlanned,
		&wo.QtyProduced,
		&wo.Status,
		&wo.DueDate,
		&wo.CreatedBy,
		&wo.CreatedAt,
		&wo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkOrder{}, ErrWorkOrderNotFound
		}
		return models.WorkOrder{}, err
	}
	return wo, nil
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo models.WorkOrder) error {
	const query = `
		INSERT INTO work_orders (
			id, order_number, line_id, product, qty_planned, qty_produced, status,
			due_date, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		wo.ID,
		wo.OrderNumber,
		wo.LineID,
		wo.Product,
		wo.QtyPlanned,
		wo.QtyProduced,
		wo.Status,
		wo.DueDate,
		wo.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrOrderNumberTaken
		}
		return err
	}
	return nil
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id string) (models.WorkOrder, error) {
	const query = `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`
	return scanWorkOrder(r.pool.QueryRow(ctx, query, id))
}

// List returns work orders newest first. A non-empty createdBy restricts the
// result to one owner, which is how non-admin callers see only their own.
func (r *WorkOrderRepository) List(ctx context.Context, createdBy string, limit int, offset int) ([]models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders`
	args := []any{}
	if createdBy != "" {
		query += ` WHERE created_by = $1`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at DESC`
	if createdBy != "" {
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

	var orders []models.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepository) Update(ctx context.Context, wo models.WorkOrder) error {
	const query = `
		UPDATE work_orders
		SET line_id = $2, product = $3, qty_planned = $4, qty_produced = $5,
		    status = $6, due_date = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		wo.ID,
		wo.LineID,
		wo.Product,
		wo.QtyPlanned,
		wo.QtyProduced,
		wo.Status,
		wo.DueDate,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkOrderNotFound
	}
	return nil
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM work_orders WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkOrderNotFound
	}
	return nil
}

func (r *WorkOrderRepository) CreateAttachment(ctx context.Context, att models.Attachment) error {
	const query = `
		INSERT INTO work_order_attachments (
			id, work_order_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		att.ID,
		att.WorkOrderID,
		att.FileName,
		att.ObjectKey,
		att.ContentType,
		att.SizeBytes,
		att.UploadedBy,
	)
	return err
}

func (r *WorkOrderRepository) GetAttachment(ctx context.Context, id string) (models.Attachment, error) {
	const query = `
		SELECT id, work_order_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at
		FROM work_order_attachments WHERE id = $1
	`
	var att models.Attachment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&att.ID,
		&att.WorkOrderID,
		&att.FileName,
		&att.ObjectKey,
		&att.ContentType,
		&att.SizeBytes,
		&att.UploadedBy,
		&att.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Attachment{}, ErrAttachmentNotFound
		}
		return models.Attachment{}, err
	}
	return att, nil
}

func (r *WorkOrderRepository) ListAttachments(ctx context.Context, workOrderID string) ([]models.Attachment, error) {
	const query = `
		SELECT id, work_order_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at
		FROM work_order_attachments
		WHERE work_order_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Attachment
	for rows.Next() {
		var att models.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.WorkOrderID,
			&att.FileName,
			&att.ObjectKey,
			&att.ContentType,
			&att.SizeBytes,
			&att.UploadedBy,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, att)
	}
	return list, rows.Err()
}
