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

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// appendEntry writes one ledger entry and moves the cached balance in the
// same statement set. Debits are a compare-and-set against the balance so a
// shortfall writes nothing.
func appendEntry(ctx context.Context, q execer, e *domain.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var res sql.Result
	var err error
	if e.Amount < 0 {
		res, err = q.ExecContext(ctx,
			`UPDATE users SET tokens = tokens + $1 WHERE id = $2 AND tokens + $1 >= 0`,
			e.Amount, e.UserID)
	} else {
		res, err = q.ExecContext(ctx,
			`UPDATE users SET tokens = tokens + $1 WHERE id = $2`,
			e.Amount, e.UserID)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if e.Amount < 0 {
			return apperrors.InsufficientFunds("balance cannot cover %d tokens", -e.Amount)
		}
		return apperrors.NotFound("user not found")
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, user_id, amount, transaction_type, description, related_transaction_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.UserID, e.Amount, e.Type, e.Description, e.RelatedTransactionID, e.CreatedAt)
	return err
}

// addPendingPenalty records an uncovered penalty and bumps the cached
// pending total.
func addPendingPenalty(ctx context.Context, q execer, p *domain.PendingPenalty) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO pending_penalties (id, user_id, transaction_id, amount, reason, is_paid, created_at)
		 VALUES ($1,$2,$3,$4,$5,FALSE,$6)`,
		p.ID, p.UserID, p.TransactionID, p.Amount, p.Reason, p.CreatedAt)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE users SET pending_penalties = pending_penalties + $1 WHERE id = $2`,
		p.Amount, p.UserID)
	return err
}

func (r *ledgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := appendEntry(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	query := `SELECT id, user_id, amount, transaction_type, description, related_transaction_id, created_at
	          FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Type, &e.Description, &e.RelatedTransactionID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID string) (int32, error) {
	var balance int32
	err := r.db.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = $1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, apperrors.NotFound("user not found")
	}
	return balance, err
}

func (r *ledgerRepository) ListPendingPenalties(ctx context.Context, userID string) ([]domain.PendingPenalty, error) {
	query := `SELECT id, user_id, transaction_id, amount, reason, is_paid, created_at
	          FROM pending_penalties WHERE user_id = $1 AND NOT is_paid ORDER BY created_at DESC`
	return r.queryPenalties(ctx, query, userID)
}

func (r *ledgerRepository) ListUnpaidPenalties(ctx context.Context) ([]domain.PendingPenalty, error) {
	query := `SELECT id, user_id, transaction_id, amount, reason, is_paid, created_at
	          FROM pending_penalties WHERE NOT is_paid ORDER BY created_at`
	return r.queryPenalties(ctx, query)
}

func (r *ledgerRepository) queryPenalties(ctx context.Context, query string, args ...any) ([]domain.PendingPenalty, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var penalties []domain.PendingPenalty
	for rows.Next() {
		var p domain.PendingPenalty
		if err := rows.Scan(&p.ID, &p.UserID, &p.TransactionID, &p.Amount, &p.Reason, &p.IsPaid, &p.CreatedAt); err != nil {
			return nil, err
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}

func (r *ledgerRepository) PayPendingPenalty(ctx context.Context, userID, penaltyID string) (*domain.PendingPenalty, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := &domain.PendingPenalty{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, transaction_id, amount, reason, is_paid, created_at
		 FROM pending_penalties WHERE id = $1 AND user_id = $2 AND NOT is_paid FOR UPDATE`,
		penaltyID, userID).Scan(&p.ID, &p.UserID, &p.TransactionID, &p.Amount, &p.Reason, &p.IsPaid, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("pending penalty not found")
	}
	if err != nil {
		return nil, err
	}

	txID := p.TransactionID
	entry := &domain.LedgerEntry{
		UserID:               userID,
		Amount:               -p.Amount,
		Type:                 domain.LedgerTypePenalty,
		Description:          p.Reason,
		RelatedTransactionID: &txID,
	}
	if err := appendEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET pending_penalties = pending_penalties - $1 WHERE id = $2`,
		p.Amount, userID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_penalties SET is_paid = TRUE WHERE id = $1`, p.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	p.IsPaid = true
	return p, nil
}
