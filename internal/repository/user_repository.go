package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mescore/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const userColumns = `
	id, email, password_hash, first_name, last_name, phone, department, position,
	role, status, email_verified, verification_token, reset_token, reset_token_expiry,
	last_login_at, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Department,
		&user.Position,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&user.VerificationToken,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Create inserts a new account inside a transaction that first checks for an
// existing row with the same email. Two concurrent registrations with the
// same email cannot both succeed: the loser hits either the existence check
// or the unique index, and both surface as ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, user.Email,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	const query = `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone, department, position,
			role, status, email_verified, verification_token, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Department,
		user.Position,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.VerificationToken,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

// MarkEmailVerified flips the verified flag and clears the token in one
// update, so a verification token can never be redeemed twice.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET email_verified = TRUE, verification_token = NULL, updated_at = NOW()
		WHERE id = $1 AND email_verified = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	const query = `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

// SetResetToken overwrites any outstanding reset token; only the newest
// token is ever valid.
func (r *UserRepository) SetResetToken(ctx context.Context, id string, token string, expiry time.Time) error {
	const query = `
		UPDATE users
		SET reset_token = $2, reset_token_expiry = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, token, expiry)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindByValidResetToken matches on the token and requires the expiry to be
// in the future. An expired token behaves exactly like a non-existent one.
func (r *UserRepository) FindByValidResetToken(ctx context.Context, token string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token = $1 AND reset_token_expiry > NOW()
	`
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

// UpdatePassword stores the new hash and clears the reset token and expiry
// in the same statement so the token cannot be reused.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ClearExpiredResetTokens nulls out reset tokens whose expiry has passed.
// Expired tokens are already inert for resets; this keeps the columns tidy.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	const query = `
		UPDATE users
		SET reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE reset_token IS NOT NULL AND reset_token_expiry <= NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
