package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	SetOTP(ctx context.Context, email, name, code string, expires time.Time) (*domain.User, error)
	MarkVerified(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, name, phoneNumber string) (*domain.User, error)
}

type userRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

const userColumns = `id, name, email, phone_number, password_hash, verified,
		role, otp_code, otp_expires, created_at, updated_at`

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&u.Verified, &u.Role, &u.OTPCode, &u.OTPExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", user.Email),
	)

	query := `
		INSERT INTO users (name, email, phone_number, password_hash, verified, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.Verified,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrEmailTaken
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error inserting user",
			zap.String("email", user.Email),
			zap.Error(err),
		)

		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to find user by id",
			zap.Int64("user_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &u, nil
}

// GetByIdentifier looks a user up by email or phone number; login accepts
// either.
func (r *userRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByIdentifier")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 OR phone_number = $1;`

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, identifier), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &u, nil
}

// SetOTP stores a fresh one-time code for the address, creating a stub
// account on first contact so OTP signup works without a prior profile.
func (r *userRepo) SetOTP(ctx context.Context, email, name, code string, expires time.Time) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SetOTP")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	query := `
		INSERT INTO users (name, email, role, otp_code, otp_expires)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET otp_code = EXCLUDED.otp_code,
			otp_expires = EXCLUDED.otp_expires,
			updated_at = NOW()
		RETURNING ` + userColumns + `;
	`

	var u domain.User
	if err := scanUser(
		r.pool.QueryRow(ctx, query, name, email, domain.RoleCustomer, code, expires), &u,
	); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to store OTP",
			zap.String("email", email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error storing otp: %w", err)
	}

	return &u, nil
}

func (r *userRepo) MarkVerified(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.MarkVerified")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE users
		SET verified = TRUE, otp_code = '', otp_expires = NULL, updated_at = NOW()
		WHERE id = $1;
	`

	commandTag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("error verifying user: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id int64, name, phoneNumber string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdateProfile")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE users
		SET name = $2, phone_number = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns + `;
	`

	var u domain.User
	if err := scanUser(
		r.pool.QueryRow(ctx, query, id, name, phoneNumber), &u,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update profile",
			zap.Int64("user_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	return &u, nil
}
