package postgres

import (
	"context"
	"database/sql"
	"time"

	"sharesphere-backend/internal/domain"
	apperrors "sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, full_name, location, phone, password_hash,
	tokens, pending_penalties, star_rating, total_reviews, complaint_count,
	success_rate, completed_transactions, failed_transactions,
	is_active, is_banned, is_admin, created_at`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO users (` + userColumns + `)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Username, u.FullName, u.Location, u.Phone, u.PasswordHash,
		u.Tokens, u.PendingPenalties, u.StarRating, u.TotalReviews, u.ComplaintCount,
		u.SuccessRate, u.CompletedTransactions, u.FailedTransactions,
		u.IsActive, u.IsBanned, u.IsAdmin, u.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.Validation("email or username already registered")
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.getWhere(ctx, "email = $1 OR username = $1", identifier)
}

func (r *userRepository) getWhere(ctx context.Context, where string, args ...any) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.Location, &u.Phone, &u.PasswordHash,
		&u.Tokens, &u.PendingPenalties, &u.StarRating, &u.TotalReviews, &u.ComplaintCount,
		&u.SuccessRate, &u.CompletedTransactions, &u.FailedTransactions,
		&u.IsActive, &u.IsBanned, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateRating(ctx context.Context, userID string, rating float64, totalReviews int32) error {
	query := `UPDATE users SET star_rating = $2, total_reviews = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, rating, totalReviews)
	return err
}

func (r *userRepository) UpdateSuccessRate(ctx context.Context, userID string, rate float64, completed, failed int32) error {
	query := `UPDATE users SET success_rate = $2, completed_transactions = $3, failed_transactions = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, rate, completed, failed)
	return err
}

func (r *userRepository) CountActive(ctx context.Context) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE is_active`).Scan(&count)
	return count, err
}
