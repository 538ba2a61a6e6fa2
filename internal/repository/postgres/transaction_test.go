package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/repository/postgres"
)

func TestTransactionRepository_CreateWithEscrow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx := context.Background()

	t.Run("Escrow debit and insert share one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(-30), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx := &domain.Transaction{
			ItemID:      "item-1",
			OwnerID:     "owner-1",
			BorrowerID:  "borrower-1",
			Status:      domain.TransactionStatusPending,
			TotalTokens: 30,
		}
		err := repo.CreateWithEscrow(ctx, tx, "Borrowing Projector")
		assert.NoError(t, err)
		assert.NotEmpty(t, tx.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Shortfall rolls everything back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(-30), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.CreateWithEscrow(ctx, &domain.Transaction{
			ItemID: "item-1", OwnerID: "owner-1", BorrowerID: "borrower-1", TotalTokens: 30,
		}, "Borrowing Projector")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx := context.Background()
	at := now()

	t.Run("Pending flips once and parks the item", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusApproved, at, domain.TransactionStatusPending, domain.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE items SET status").
			WithArgs("tx-1", domain.ItemStatusBorrowed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.Approve(ctx, "tx-1", at)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second approve loses the race", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusApproved, at, domain.TransactionStatusPending, domain.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ok, err := repo.Approve(ctx, "tx-1", at)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// The guard also covers an item that went out through another approved
	// request while this one sat pending; the CAS touches zero rows.
	t.Run("Item already out", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusApproved, at, domain.TransactionStatusPending, domain.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ok, err := repo.Approve(ctx, "tx-1", at)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_RejectWithRefund(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx := context.Background()
	tx := &domain.Transaction{ID: "tx-1", BorrowerID: "borrower-1", TotalTokens: 30}

	t.Run("Refund rides the status flip", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusRejected, domain.TransactionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(30), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.RejectWithRefund(ctx, tx, "Refund")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No refund without the flip", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusRejected, domain.TransactionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ok, err := repo.RejectWithRefund(ctx, tx, "Refund")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_MarkDelivered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx := context.Background()
	at := now()

	t.Run("Fires only with both confirmations", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusDelivered, at, domain.TransactionStatusApproved).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkDelivered(ctx, "tx-1", at)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Racing caller loses", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs("tx-1", domain.TransactionStatusDelivered, at, domain.TransactionStatusApproved).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkDelivered(ctx, "tx-1", at)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTransactionRepository_SettleReturn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx := context.Background()

	settlement := func() *domain.Settlement {
		return &domain.Settlement{
			TransactionID:   "tx-1",
			ItemID:          "item-1",
			OwnerID:         "owner-1",
			BorrowerID:      "borrower-1",
			OwnerCredit:     30,
			BorrowerPenalty: 40,
			PenaltyReason:   "Damage penalty",
			ReturnedAt:      now(),
		}
	}

	t.Run("Penalty covered by the balance", func(t *testing.T) {
		s := settlement()
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Owner credit.
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(30), "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Borrower debit.
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(-40), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE items SET status").
			WithArgs("item-1", domain.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		fired, err := repo.SettleReturn(ctx, s)
		assert.NoError(t, err)
		assert.True(t, fired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Uncovered penalty is parked as pending", func(t *testing.T) {
		s := settlement()
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(30), "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Debit fails the balance guard.
		mock.ExpectExec("UPDATE users SET tokens").
			WithArgs(int32(-40), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO pending_penalties").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET pending_penalties").
			WithArgs(int32(40), "borrower-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE items SET status").
			WithArgs("item-1", domain.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		fired, err := repo.SettleReturn(ctx, s)
		assert.NoError(t, err)
		assert.True(t, fired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second settle is a no-op", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		fired, err := repo.SettleReturn(ctx, settlement())
		assert.NoError(t, err)
		assert.False(t, fired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
