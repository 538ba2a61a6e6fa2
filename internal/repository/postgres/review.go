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

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO reviews (id, transaction_id, reviewer_id, reviewee_id, item_id, rating, comment, created_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.TransactionID, rv.ReviewerID, rv.RevieweeID, rv.ItemID, rv.Rating, rv.Comment, rv.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.StateConflict("transaction already reviewed by this user")
	}
	return err
}

func (r *reviewRepository) ExistsForReviewer(ctx context.Context, transactionID, reviewerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE transaction_id = $1 AND reviewer_id = $2)`,
		transactionID, reviewerID).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) CountForTransaction(ctx context.Context, transactionID string) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM reviews WHERE transaction_id = $1`, transactionID).Scan(&count)
	return count, err
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID string, limit int32) ([]domain.Review, error) {
	query := `SELECT id, transaction_id, reviewer_id, reviewee_id, item_id, rating, comment, created_at
	          FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, revieweeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.TransactionID, &rv.ReviewerID, &rv.RevieweeID, &rv.ItemID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) RatingStats(ctx context.Context, revieweeID string) (float64, int32, error) {
	var average sql.NullFloat64
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT avg(rating), count(*) FROM reviews WHERE reviewee_id = $1`, revieweeID).
		Scan(&average, &count)
	return average.Float64, count, err
}
