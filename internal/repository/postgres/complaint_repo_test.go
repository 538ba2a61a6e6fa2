package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/repository/postgres"
)

func complaintRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "transaction_id", "complainant_id", "defendant_id", "title",
		"description", "severity", "proof_images", "is_valid", "is_resolved",
		"created_at", "resolved_at",
	}).AddRow("c-1", "tx-1", "owner-1", "borrower-1", "Broken",
		"Lens cracked", "medium", "{crack.jpg}", true, true, now(), now())
}

func TestComplaintRepository_Resolve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewComplaintRepository(db)
	ctx := context.Background()
	at := now()

	t.Run("Nineteenth valid complaint does not ban", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE complaints SET is_resolved").
			WithArgs("c-1", true, at).
			WillReturnRows(complaintRows())
		mock.ExpectQuery("SELECT complaint_count FROM users").
			WithArgs("borrower-1").
			WillReturnRows(sqlmock.NewRows([]string{"complaint_count"}).AddRow(int32(18)))
		mock.ExpectExec("UPDATE users SET complaint_count").
			WithArgs("borrower-1", int32(19), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusDisputed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, banned, err := repo.Resolve(ctx, "c-1", true, 20, at)
		assert.NoError(t, err)
		assert.False(t, banned)
		assert.True(t, c.IsValid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Twentieth valid complaint bans", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE complaints SET is_resolved").
			WithArgs("c-1", true, at).
			WillReturnRows(complaintRows())
		mock.ExpectQuery("SELECT complaint_count FROM users").
			WithArgs("borrower-1").
			WillReturnRows(sqlmock.NewRows([]string{"complaint_count"}).AddRow(int32(19)))
		mock.ExpectExec("UPDATE users SET complaint_count").
			WithArgs("borrower-1", int32(20), true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusDisputed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, banned, err := repo.Resolve(ctx, "c-1", true, 20, at)
		assert.NoError(t, err)
		assert.True(t, banned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid resolution touches nothing else", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE complaints SET is_resolved").
			WithArgs("c-1", false, at).
			WillReturnRows(complaintRows())
		mock.ExpectCommit()

		_, banned, err := repo.Resolve(ctx, "c-1", false, 20, at)
		assert.NoError(t, err)
		assert.False(t, banned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second resolution conflicts", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE complaints SET is_resolved").
			WithArgs("c-1", true, at).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, _, err := repo.Resolve(ctx, "c-1", true, 20, at)
		assert.True(t, errors.Is(err, errors.KindStateConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
