package jobs

import (
	"context"
	"fmt"
	"time"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/logger"
)

// SendOverdueReminders nudges borrowers whose borrow window has passed but
// whose return handshake has not completed. Late fees keep accruing until
// the return settles, so the reminder spells out the daily cost.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue, err := jr.store.ListOverdue(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to list overdue transactions", "error", err)
			return
		}

		count := 0
		for i := range overdue {
			t := &overdue[i]
			item, err := jr.store.ItemRepository.GetByID(ctx, t.ItemID)
			if err != nil {
				logger.Error("Failed to load item for overdue reminder", "transaction_id", t.ID, "error", err)
				continue
			}

			daysLate := domain.RentalDays(t.EndDate, time.Now().UTC()) - 1
			msg := fmt.Sprintf("%q was due back on %s. A late fee of %d tokens per day is accruing until both parties confirm the return.",
				item.Title, t.EndDate.Format("2006-01-02"), item.TokensPerDay)
			jr.services.Notifier.Notify(ctx, t.BorrowerID, domain.NotificationReminder, "Item overdue", msg, &t.ID)

			if borrower, err := jr.store.UserRepository.GetByID(ctx, t.BorrowerID); err == nil {
				if err := jr.services.Email.Send(ctx, borrower.Email, borrower.FullName, "Overdue item reminder", msg); err != nil {
					logger.Warn("Failed to send overdue reminder email", "user_id", t.BorrowerID, "error", err)
				}
			}

			logger.Debug("Sent overdue reminder",
				"transaction_id", t.ID, "borrower_id", t.BorrowerID, "days_late", daysLate)
			count++
		}

		logger.Info("Sent overdue reminders", "count", count)
	})
}

// SendPenaltyReminders reminds debtors about unpaid pending penalties. The
// penalties never auto-collect; only an explicit payment clears them.
func (jr *JobRunner) SendPenaltyReminders() {
	jr.runWithRecovery("SendPenaltyReminders", func() {
		ctx := context.Background()

		unpaid, err := jr.store.ListUnpaidPenalties(ctx)
		if err != nil {
			logger.Error("Failed to list unpaid penalties", "error", err)
			return
		}

		// One reminder per user, whatever the number of open penalties.
		totals := make(map[string]int32)
		for _, p := range unpaid {
			totals[p.UserID] += p.Amount
		}

		for userID, total := range totals {
			msg := fmt.Sprintf("You have %d tokens in unpaid penalties. Settle them from your token balance page.", total)
			jr.services.Notifier.Notify(ctx, userID, domain.NotificationReminder, "Unpaid penalties", msg, nil)

			if user, err := jr.store.UserRepository.GetByID(ctx, userID); err == nil {
				if err := jr.services.Email.Send(ctx, user.Email, user.FullName, "Unpaid penalty reminder", msg); err != nil {
					logger.Warn("Failed to send penalty reminder email", "user_id", userID, "error", err)
				}
			}
		}

		logger.Info("Sent penalty reminders", "users", len(totals), "penalties", len(unpaid))
	})
}
