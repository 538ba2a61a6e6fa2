package postgres

import (
	"context"
	"database/sql"
	"time"

	"sharesphere-backend/internal/domain"
	apperrors "sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type complaintRepository struct {
	db *sql.DB
}

func NewComplaintRepository(db *sql.DB) repository.ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `id, transaction_id, complainant_id, defendant_id, title,
	description, severity, proof_images, is_valid, is_resolved, created_at, resolved_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO complaints (id, transaction_id, complainant_id, defendant_id, title,
	            description, severity, proof_images, is_valid, is_resolved, created_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,FALSE,$9)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TransactionID, c.ComplainantID, c.DefendantID, c.Title,
		c.Description, c.Severity, pq.Array(c.ProofImages), c.CreatedAt)
	return err
}

func scanComplaint(row rowScanner) (*domain.Complaint, error) {
	c := &domain.Complaint{}
	var resolvedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.TransactionID, &c.ComplainantID, &c.DefendantID, &c.Title,
		&c.Description, &c.Severity, pq.Array(&c.ProofImages),
		&c.IsValid, &c.IsResolved, &c.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		c.ResolvedAt = &resolvedAt.Time
	}
	return c, nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	c, err := scanComplaint(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("complaint not found")
	}
	return c, err
}

func (r *complaintRepository) Resolve(ctx context.Context, id string, valid bool, banThreshold int32, at time.Time) (*domain.Complaint, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// Validity is set exactly once; the is_resolved guard makes a second
	// resolution a conflict rather than a double count.
	query := `UPDATE complaints SET is_resolved = TRUE, is_valid = $2, resolved_at = $3
	          WHERE id = $1 AND NOT is_resolved RETURNING ` + complaintColumns
	c, err := scanComplaint(tx.QueryRowContext(ctx, query, id, valid, at))
	if err == sql.ErrNoRows {
		return nil, false, apperrors.StateConflict("complaint already resolved")
	}
	if err != nil {
		return nil, false, err
	}

	banned := false
	if valid {
		// The ban decision happens here rather than in SQL: lock the row,
		// bump the count, and compare against the threshold.
		var count int32
		err = tx.QueryRowContext(ctx,
			`SELECT complaint_count FROM users WHERE id = $1 FOR UPDATE`,
			c.DefendantID).Scan(&count)
		if err == sql.ErrNoRows {
			return nil, false, apperrors.NotFound("user not found")
		}
		if err != nil {
			return nil, false, err
		}
		count++
		banned = count >= banThreshold
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET complaint_count = $2, is_banned = is_banned OR $3
			 WHERE id = $1`,
			c.DefendantID, count, banned)
		if err != nil {
			return nil, false, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transactions SET status = $2 WHERE id = $1`,
			c.TransactionID, domain.TransactionStatusDisputed)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return c, banned, nil
}

func (r *complaintRepository) ListByComplainant(ctx context.Context, userID string) ([]domain.Complaint, error) {
	return r.listWhere(ctx, "complainant_id = $1", userID)
}

func (r *complaintRepository) ListByDefendant(ctx context.Context, userID string) ([]domain.Complaint, error) {
	return r.listWhere(ctx, "defendant_id = $1", userID)
}

func (r *complaintRepository) listWhere(ctx context.Context, where string, args ...any) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE ` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}
