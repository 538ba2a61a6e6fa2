package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sharesphere-backend/internal/domain"
	apperrors "sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, item_id, owner_id, borrower_id, status,
	start_date, end_date, days_requested, total_tokens,
	owner_delivery_confirmed, borrower_delivery_confirmed,
	owner_return_confirmed, borrower_return_confirmed,
	delivery_proof_images, return_proof_images,
	damage_reported, damage_severity, damage_images, penalty_tokens,
	is_reviewed, created_at, approved_at, delivered_at, returned_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var severity sql.NullString
	var approvedAt, deliveredAt, returnedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.ItemID, &t.OwnerID, &t.BorrowerID, &t.Status,
		&t.StartDate, &t.EndDate, &t.DaysRequested, &t.TotalTokens,
		&t.OwnerDeliveryConfirmed, &t.BorrowerDeliveryConfirmed,
		&t.OwnerReturnConfirmed, &t.BorrowerReturnConfirmed,
		pq.Array(&t.DeliveryProofImages), pq.Array(&t.ReturnProofImages),
		&t.DamageReported, &severity, pq.Array(&t.DamageImages), &t.PenaltyTokens,
		&t.IsReviewed, &t.CreatedAt, &approvedAt, &deliveredAt, &returnedAt)
	if err != nil {
		return nil, err
	}
	if severity.Valid {
		s := domain.DamageSeverity(severity.String)
		t.DamageSeverity = &s
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if deliveredAt.Valid {
		t.DeliveredAt = &deliveredAt.Time
	}
	if returnedAt.Valid {
		t.ReturnedAt = &returnedAt.Time
	}
	return t, nil
}

func (r *transactionRepository) CreateWithEscrow(ctx context.Context, t *domain.Transaction, description string) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Escrow: the borrower pays up front; the tokens sit with the platform
	// until settlement or refund.
	txID := t.ID
	entry := &domain.LedgerEntry{
		UserID:               t.BorrowerID,
		Amount:               -t.TotalTokens,
		Type:                 domain.LedgerTypeSpent,
		Description:          description,
		RelatedTransactionID: &txID,
	}
	if err := appendEntry(ctx, tx, entry); err != nil {
		return err
	}

	query := `INSERT INTO transactions (id, item_id, owner_id, borrower_id, status,
	            start_date, end_date, days_requested, total_tokens,
	            delivery_proof_images, return_proof_images, damage_images, created_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err = tx.ExecContext(ctx, query,
		t.ID, t.ItemID, t.OwnerID, t.BorrowerID, t.Status,
		t.StartDate, t.EndDate, t.DaysRequested, t.TotalTokens,
		pq.Array([]string{}), pq.Array([]string{}), pq.Array([]string{}), t.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("transaction not found")
	}
	return t, err
}

func (r *transactionRepository) Approve(ctx context.Context, id string, at time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Guarded on both the pending status and the item still being in: two
	// racing approvals on one item leave only one of them approved.
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2, approved_at = $3
		 WHERE id = $1 AND status = $4
		   AND (SELECT status FROM items WHERE id = transactions.item_id) = $5`,
		id, domain.TransactionStatusApproved, at, domain.TransactionStatusPending, domain.ItemStatusAvailable)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = $2 WHERE id = (SELECT item_id FROM transactions WHERE id = $1)`,
		id, domain.ItemStatusBorrowed)
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *transactionRepository) RejectWithRefund(ctx context.Context, t *domain.Transaction, description string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2 WHERE id = $1 AND status = $3`,
		t.ID, domain.TransactionStatusRejected, domain.TransactionStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return false, err
	}

	// The status flip above is the guard: the refund can only ever be
	// written together with the single pending -> rejected transition.
	txID := t.ID
	entry := &domain.LedgerEntry{
		UserID:               t.BorrowerID,
		Amount:               t.TotalTokens,
		Type:                 domain.LedgerTypeRefund,
		Description:          description,
		RelatedTransactionID: &txID,
	}
	if err := appendEntry(ctx, tx, entry); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func confirmationColumns(role domain.Role, edge string) (flagCol, imageCol string) {
	switch {
	case edge == "delivery" && role == domain.RoleOwner:
		return "owner_delivery_confirmed", "delivery_proof_images"
	case edge == "delivery":
		return "borrower_delivery_confirmed", "delivery_proof_images"
	case role == domain.RoleOwner:
		return "owner_return_confirmed", "return_proof_images"
	default:
		return "borrower_return_confirmed", "return_proof_images"
	}
}

func (r *transactionRepository) setConfirmed(ctx context.Context, id string, role domain.Role, edge string, images []string) (*domain.Transaction, error) {
	flagCol, imageCol := confirmationColumns(role, edge)
	query := fmt.Sprintf(
		`UPDATE transactions SET %s = TRUE, %s = %s || $2 WHERE id = $1 RETURNING `+transactionColumns,
		flagCol, imageCol, imageCol)
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, pq.Array(images)))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("transaction not found")
	}
	return t, err
}

func (r *transactionRepository) SetDeliveryConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error) {
	return r.setConfirmed(ctx, id, role, "delivery", images)
}

func (r *transactionRepository) SetReturnConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error) {
	return r.setConfirmed(ctx, id, role, "return", images)
}

func (r *transactionRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	// Guarded on status and both flags: when two confirmations race, only
	// one of them flips the status.
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $2, delivered_at = $3
		 WHERE id = $1 AND status = $4
		   AND owner_delivery_confirmed AND borrower_delivery_confirmed`,
		id, domain.TransactionStatusDelivered, at, domain.TransactionStatusApproved)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *transactionRepository) SettleReturn(ctx context.Context, s *domain.Settlement) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2, returned_at = $3, penalty_tokens = $4
		 WHERE id = $1 AND status = $5
		   AND owner_return_confirmed AND borrower_return_confirmed`,
		s.TransactionID, domain.TransactionStatusReturned, s.ReturnedAt,
		s.BorrowerPenalty, domain.TransactionStatusDelivered)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return false, err
	}

	// Rental fee leaves escrow and lands with the owner only now.
	txID := s.TransactionID
	credit := &domain.LedgerEntry{
		UserID:               s.OwnerID,
		Amount:               s.OwnerCredit,
		Type:                 domain.LedgerTypeEarned,
		Description:          "Lending fee settled",
		RelatedTransactionID: &txID,
	}
	if err := appendEntry(ctx, tx, credit); err != nil {
		return false, err
	}

	if s.BorrowerPenalty > 0 {
		debit := &domain.LedgerEntry{
			UserID:               s.BorrowerID,
			Amount:               -s.BorrowerPenalty,
			Type:                 domain.LedgerTypePenalty,
			Description:          s.PenaltyReason,
			RelatedTransactionID: &txID,
		}
		err := appendEntry(ctx, tx, debit)
		if apperrors.Is(err, apperrors.KindInsufficientFunds) {
			// Balance cannot cover the penalty; park it for explicit
			// payment later.
			pending := &domain.PendingPenalty{
				UserID:        s.BorrowerID,
				TransactionID: s.TransactionID,
				Amount:        s.BorrowerPenalty,
				Reason:        s.PenaltyReason,
			}
			if err := addPendingPenalty(ctx, tx, pending); err != nil {
				return false, err
			}
		} else if err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = $2, total_borrows = total_borrows + 1 WHERE id = $1`,
		s.ItemID, domain.ItemStatusAvailable)
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *transactionRepository) RecordDamage(ctx context.Context, report *domain.DamageReport, itemValue int32) (bool, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// One-shot latch with the penalty cap applied in the same statement.
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET damage_reported = TRUE, damage_severity = $2, damage_images = damage_images || $3,
		     penalty_tokens = LEAST(penalty_tokens + $4, $5)
		 WHERE id = $1 AND status = $6 AND NOT damage_reported`,
		report.TransactionID, report.Severity, pq.Array(report.ProofImages),
		report.PenaltyTokens, itemValue, domain.TransactionStatusDelivered)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO damage_reports (id, transaction_id, reporter_id, severity, description, proof_images, penalty_tokens, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		report.ID, report.TransactionID, report.ReporterID, report.Severity,
		report.Description, pq.Array(report.ProofImages), report.PenaltyTokens, report.CreatedAt)
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *transactionRepository) MarkDisputed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $2 WHERE id = $1`,
		id, domain.TransactionStatusDisputed)
	return err
}

func (r *transactionRepository) MarkCompleted(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $2, is_reviewed = TRUE WHERE id = $1 AND status = $3`,
		id, domain.TransactionStatusCompleted, domain.TransactionStatusReturned)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *transactionRepository) ListForUser(ctx context.Context, userID string, limit int32) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE owner_id = $1 OR borrower_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.queryMany(ctx, query, userID, limit)
}

func (r *transactionRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE status = '` + string(domain.TransactionStatusDelivered) + `' AND end_date < $1 ORDER BY end_date`
	return r.queryMany(ctx, query, asOf)
}

func (r *transactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *transactionRepository) CountPendingForOwner(ctx context.Context, ownerID string) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM transactions WHERE owner_id = $1 AND status = $2`,
		ownerID, domain.TransactionStatusPending).Scan(&count)
	return count, err
}

func (r *transactionRepository) CountOutcomes(ctx context.Context, userID string) (int32, int32, error) {
	var completed, disputed int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FILTER (WHERE status = $2), count(*) FILTER (WHERE status = $3)
		 FROM transactions WHERE owner_id = $1 OR borrower_id = $1`,
		userID, domain.TransactionStatusCompleted, domain.TransactionStatusDisputed).
		Scan(&completed, &disputed)
	return completed, disputed, err
}

func (r *transactionRepository) HasActiveForItem(ctx context.Context, itemID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE item_id = $1 AND status = ANY($2))`,
		itemID, pq.Array([]string{
			string(domain.TransactionStatusPending),
			string(domain.TransactionStatusApproved),
			string(domain.TransactionStatusDelivered),
		})).Scan(&exists)
	return exists, err
}
