package service

import (
	"context"
	"fmt"
	"time"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/push"
	"sharesphere-backend/internal/repository"
)

type transactionService struct {
	txRepo   repository.TransactionRepository
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
	notifier *Notifier
	emailSvc EmailService
	pusher   Pusher
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier *Notifier,
	emailSvc EmailService,
	pusher Pusher,
) TransactionService {
	return &transactionService{
		txRepo:   txRepo,
		itemRepo: itemRepo,
		userRepo: userRepo,
		notifier: notifier,
		emailSvc: emailSvc,
		pusher:   pusher,
	}
}

func (s *transactionService) RequestBorrow(ctx context.Context, borrowerID, itemID string, startDate, endDate time.Time, message string) (*domain.TransactionView, error) {
	days := domain.RentalDays(startDate, endDate)
	if days < 1 {
		return nil, errors.Validation("end date must not precede start date")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == borrowerID {
		return nil, errors.Validation("cannot borrow your own item")
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, errors.StateConflict("item is not available for borrowing")
	}

	t := &domain.Transaction{
		ItemID:        item.ID,
		OwnerID:       item.OwnerID,
		BorrowerID:    borrowerID,
		Status:        domain.TransactionStatusPending,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: days,
		TotalTokens:   domain.RentalCost(item.TokensPerDay, startDate, endDate),
	}
	if err := s.txRepo.CreateWithEscrow(ctx, t, "Borrowing "+item.Title); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Borrow request created",
		"transaction_id", t.ID, "item_id", item.ID, "borrower_id", borrowerID, "tokens", t.TotalTokens)

	body := fmt.Sprintf("You have a new borrow request for %q (%d days, %d tokens).", item.Title, days, t.TotalTokens)
	if message != "" {
		body += "\n\nMessage from the borrower: " + message
	}
	s.notifier.Notify(ctx, item.OwnerID, domain.NotificationRequest, "New borrow request", body, &t.ID)
	s.sendMail(ctx, item.OwnerID, "New borrow request on ShareSphere", body)

	return s.view(ctx, t, borrowerID)
}

func (s *transactionService) Approve(ctx context.Context, ownerID, transactionID string) (*domain.TransactionView, error) {
	t, err := s.loadForRole(ctx, transactionID, ownerID, domain.RoleOwner)
	if err != nil {
		return nil, err
	}

	// An item with several pending requests can only honor one of them:
	// once it is out, the remaining requests cannot be approved.
	item, err := s.itemRepo.GetByID(ctx, t.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, errors.StateConflict("item is no longer available")
	}

	ok, err := s.txRepo.Approve(ctx, transactionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.StateConflict("transaction is no longer pending")
	}

	msg := fmt.Sprintf("Your request to borrow %q was approved. Arrange the item handover with the owner.", item.Title)
	s.notifier.Notify(ctx, t.BorrowerID, domain.NotificationApproval, "Request approved", msg, &t.ID)
	s.sendMail(ctx, t.BorrowerID, "Borrow request approved", msg)

	return s.refresh(ctx, transactionID, ownerID)
}

func (s *transactionService) Reject(ctx context.Context, ownerID, transactionID string) (*domain.TransactionView, error) {
	t, err := s.loadForRole(ctx, transactionID, ownerID, domain.RoleOwner)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, t.ItemID)
	if err != nil {
		return nil, err
	}
	ok, err := s.txRepo.RejectWithRefund(ctx, t, "Refund for rejected request: "+item.Title)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.StateConflict("transaction is no longer pending")
	}

	msg := fmt.Sprintf("Your request to borrow %q was declined. The %d escrowed tokens were returned to your balance.", item.Title, t.TotalTokens)
	s.notifier.Notify(ctx, t.BorrowerID, domain.NotificationRejection, "Request declined", msg, &t.ID)

	return s.refresh(ctx, transactionID, ownerID)
}

func (s *transactionService) ConfirmDelivery(ctx context.Context, userID, transactionID string, proofImages []string) (*domain.TransactionView, error) {
	if len(proofImages) == 0 {
		return nil, errors.Validation("at least one proof image is required to confirm delivery")
	}
	t, role, err := s.loadForParty(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TransactionStatusApproved {
		return nil, errors.StateConflict("delivery can only be confirmed on an approved transaction")
	}

	t, err = s.txRepo.SetDeliveryConfirmed(ctx, transactionID, role, proofImages)
	if err != nil {
		return nil, err
	}

	if t.DeliveryHandshake().Complete() {
		fired, err := s.txRepo.MarkDelivered(ctx, transactionID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if fired {
			s.notifyBoth(ctx, t, domain.NotificationDeliveryComplete, "Item delivered",
				"Both parties confirmed delivery. The borrow period is now running.")
		}
	} else {
		other := t.PartyID(role.Other())
		s.notifier.Notify(ctx, other, domain.NotificationDelivery, "Delivery confirmation pending",
			"The other party confirmed delivery. Confirm on your side to start the borrow period.", &t.ID)
	}

	return s.refresh(ctx, transactionID, userID)
}

func (s *transactionService) ConfirmReturn(ctx context.Context, userID, transactionID string, proofImages []string) (*domain.TransactionView, error) {
	if len(proofImages) == 0 {
		return nil, errors.Validation("at least one proof image is required to confirm return")
	}
	t, role, err := s.loadForParty(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TransactionStatusDelivered {
		return nil, errors.StateConflict("return can only be confirmed on a delivered transaction")
	}

	t, err = s.txRepo.SetReturnConfirmed(ctx, transactionID, role, proofImages)
	if err != nil {
		return nil, err
	}

	if t.ReturnHandshake().Complete() {
		if err := s.settle(ctx, t); err != nil {
			return nil, err
		}
	} else {
		other := t.PartyID(role.Other())
		s.notifier.Notify(ctx, other, domain.NotificationReturn, "Return confirmation pending",
			"The other party confirmed the return. Confirm on your side to settle the transaction.", &t.ID)
	}

	return s.refresh(ctx, transactionID, userID)
}

// settle fires the delivered -> returned edge and applies the token
// settlement. The repository guards the edge, so when both confirmations
// race only one caller performs the ledger movements.
func (s *transactionService) settle(ctx context.Context, t *domain.Transaction) error {
	item, err := s.itemRepo.GetByID(ctx, t.ItemID)
	if err != nil {
		return err
	}
	settlement := domain.ComputeSettlement(t, item, time.Now().UTC())
	fired, err := s.txRepo.SettleReturn(ctx, &settlement)
	if err != nil {
		return err
	}
	if !fired {
		return nil
	}

	logger.InfoContext(ctx, "Transaction settled",
		"transaction_id", t.ID, "owner_credit", settlement.OwnerCredit,
		"borrower_penalty", settlement.BorrowerPenalty, "late_penalty", settlement.LatePenalty)

	s.notifyBoth(ctx, t, domain.NotificationReturnComplete, "Return complete",
		fmt.Sprintf("Both parties confirmed the return of %q. %d tokens were credited to the owner.", item.Title, settlement.OwnerCredit))
	if settlement.BorrowerPenalty > 0 {
		s.notifier.Notify(ctx, t.BorrowerID, domain.NotificationPenalty, "Penalty applied",
			fmt.Sprintf("A penalty of %d tokens was applied for %q (late fee: %d).", settlement.BorrowerPenalty, item.Title, settlement.LatePenalty), &t.ID)
	}
	s.notifier.Notify(ctx, t.BorrowerID, domain.NotificationReview, "Leave a review",
		fmt.Sprintf("How was borrowing %q? Leave a review to complete the transaction.", item.Title), &t.ID)
	s.notifier.Notify(ctx, t.OwnerID, domain.NotificationReview, "Leave a review",
		fmt.Sprintf("How was lending %q? Leave a review to complete the transaction.", item.Title), &t.ID)
	return nil
}

func (s *transactionService) ReportDamage(ctx context.Context, ownerID, transactionID string, severity domain.DamageSeverity, description string, proofImages []string) (*domain.TransactionView, error) {
	if !severity.Valid() {
		return nil, errors.Validation("unknown damage severity %q", severity)
	}
	if len(proofImages) == 0 {
		return nil, errors.Validation("at least one proof image is required to report damage")
	}
	t, err := s.loadForRole(ctx, transactionID, ownerID, domain.RoleOwner)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TransactionStatusDelivered {
		return nil, errors.StateConflict("damage can only be reported while the item is out")
	}
	if t.DamageReported {
		return nil, errors.StateConflict("damage was already reported for this transaction")
	}

	item, err := s.itemRepo.GetByID(ctx, t.ItemID)
	if err != nil {
		return nil, err
	}
	report := &domain.DamageReport{
		TransactionID: transactionID,
		ReporterID:    ownerID,
		Severity:      severity,
		Description:   description,
		ProofImages:   proofImages,
		PenaltyTokens: domain.DamagePenalty(item.Value, severity),
	}
	recorded, err := s.txRepo.RecordDamage(ctx, report, item.Value)
	if err != nil {
		return nil, err
	}
	if !recorded {
		return nil, errors.StateConflict("damage was already reported for this transaction")
	}

	s.notifier.Notify(ctx, t.BorrowerID, domain.NotificationDamage, "Damage reported",
		fmt.Sprintf("The owner reported %s damage on %q. %d penalty tokens will be charged at settlement.", severity, item.Title, report.PenaltyTokens), &t.ID)

	return s.refresh(ctx, transactionID, ownerID)
}

func (s *transactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionView, error) {
	t, _, err := s.loadForParty(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, t, userID)
}

func (s *transactionService) ListTransactions(ctx context.Context, userID string, limit int32) ([]domain.TransactionView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txs, err := s.txRepo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.TransactionView, 0, len(txs))
	for i := range txs {
		v, err := s.view(ctx, &txs[i], userID)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// loadForParty fetches the transaction and verifies userID is one of its two
// parties.
func (s *transactionService) loadForParty(ctx context.Context, transactionID, userID string) (*domain.Transaction, domain.Role, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, "", err
	}
	role, ok := t.PartyRole(userID)
	if !ok {
		return nil, "", errors.Authorization("you are not a party to this transaction")
	}
	return t, role, nil
}

// loadForRole additionally requires userID to be on a specific side.
func (s *transactionService) loadForRole(ctx context.Context, transactionID, userID string, want domain.Role) (*domain.Transaction, error) {
	t, role, err := s.loadForParty(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if role != want {
		return nil, errors.Authorization("only the %s may perform this action", want)
	}
	return t, nil
}

// view assembles the per-user query projection: embedded item and party
// profiles, the requester's side, and the actions currently open to them.
func (s *transactionService) view(ctx context.Context, t *domain.Transaction, userID string) (*domain.TransactionView, error) {
	role, _ := t.PartyRole(userID)
	v := &domain.TransactionView{
		Transaction:      *t,
		IsBorrower:       role == domain.RoleBorrower,
		AvailableActions: t.AvailableActions(role),
	}
	if item, err := s.itemRepo.GetByID(ctx, t.ItemID); err == nil {
		v.Item = item
	}
	if owner, err := s.userRepo.GetByID(ctx, t.OwnerID); err == nil {
		p := owner.Profile()
		v.Owner = &p
	}
	if borrower, err := s.userRepo.GetByID(ctx, t.BorrowerID); err == nil {
		p := borrower.Profile()
		v.Borrower = &p
	}
	return v, nil
}

// refresh reloads the transaction, pushes the fresh views to both parties
// and returns the requester's view.
func (s *transactionService) refresh(ctx context.Context, transactionID, userID string) (*domain.TransactionView, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	for _, partyID := range []string{t.OwnerID, t.BorrowerID} {
		if partyID == userID {
			continue
		}
		if v, err := s.view(ctx, t, partyID); err == nil {
			s.pusher.Publish(partyID, push.EventTransactionUpdate, v)
		}
	}
	v, err := s.view(ctx, t, userID)
	if err != nil {
		return nil, err
	}
	s.pusher.Publish(userID, push.EventTransactionUpdate, v)
	return v, nil
}

func (s *transactionService) notifyBoth(ctx context.Context, t *domain.Transaction, typ domain.NotificationType, title, message string) {
	s.notifier.Notify(ctx, t.OwnerID, typ, title, message, &t.ID)
	s.notifier.Notify(ctx, t.BorrowerID, typ, title, message, &t.ID)
}

// sendMail looks the recipient up and delivers best effort.
func (s *transactionService) sendMail(ctx context.Context, userID, subject, body string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping email, recipient lookup failed", "user_id", userID, "error", err)
		return
	}
	if err := s.emailSvc.Send(ctx, user.Email, user.FullName, subject, body); err != nil {
		logger.WarnContext(ctx, "Failed to send email", "user_id", userID, "error", err)
	}
}
