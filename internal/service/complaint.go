package service

import (
	"context"
	"fmt"
	"time"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
)

type complaintService struct {
	complaintRepo repository.ComplaintRepository
	txRepo        repository.TransactionRepository
	userRepo      repository.UserRepository
	notifier      *Notifier
	emailSvc      EmailService
	banThreshold  int32
}

func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	notifier *Notifier,
	emailSvc EmailService,
	banThreshold int32,
) ComplaintService {
	return &complaintService{
		complaintRepo: complaintRepo,
		txRepo:        txRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		emailSvc:      emailSvc,
		banThreshold:  banThreshold,
	}
}

// complaintableStatuses are the lifecycle states a complaint may be filed
// from: the borrow has to have run its course first.
func complaintable(status domain.TransactionStatus) bool {
	switch status {
	case domain.TransactionStatusReturned, domain.TransactionStatusCompleted, domain.TransactionStatusDisputed:
		return true
	}
	return false
}

func (s *complaintService) File(ctx context.Context, complainantID string, in FileComplaintInput) (*domain.Complaint, error) {
	if in.Title == "" || in.Description == "" {
		return nil, errors.Validation("complaint title and description are required")
	}
	if !in.Severity.Valid() {
		return nil, errors.Validation("unknown severity %q", in.Severity)
	}
	if len(in.ProofImages) == 0 {
		return nil, errors.Validation("at least one proof image is required to file a complaint")
	}

	t, err := s.txRepo.GetByID(ctx, in.TransactionID)
	if err != nil {
		return nil, err
	}
	role, ok := t.PartyRole(complainantID)
	if !ok {
		return nil, errors.Authorization("you are not a party to this transaction")
	}
	if !complaintable(t.Status) {
		return nil, errors.StateConflict("complaints can only be filed after the return")
	}

	c := &domain.Complaint{
		TransactionID: t.ID,
		ComplainantID: complainantID,
		DefendantID:   t.PartyID(role.Other()),
		Title:         in.Title,
		Description:   in.Description,
		Severity:      in.Severity,
		ProofImages:   in.ProofImages,
	}
	if err := s.complaintRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Complaint filed",
		"complaint_id", c.ID, "transaction_id", t.ID, "defendant_id", c.DefendantID, "severity", c.Severity)

	s.notifier.Notify(ctx, c.DefendantID, domain.NotificationComplaint, "Complaint filed against you",
		fmt.Sprintf("A complaint was filed against you: %s. It will be reviewed by the moderation team.", c.Title), &c.ID)

	return c, nil
}

func (s *complaintService) Resolve(ctx context.Context, complaintID string, valid bool) (*domain.Complaint, error) {
	c, banned, err := s.complaintRepo.Resolve(ctx, complaintID, valid, s.banThreshold, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Complaint resolved",
		"complaint_id", c.ID, "valid", valid, "defendant_banned", banned)

	if valid {
		s.notifier.Notify(ctx, c.DefendantID, domain.NotificationComplaint, "Complaint upheld",
			fmt.Sprintf("The complaint %q against you was found valid and now counts against your record.", c.Title), &c.ID)
	}
	s.notifier.Notify(ctx, c.ComplainantID, domain.NotificationComplaint, "Complaint resolved",
		fmt.Sprintf("Your complaint %q was reviewed and marked %s.", c.Title, validity(valid)), &c.ID)

	if banned {
		s.notifier.Notify(ctx, c.DefendantID, domain.NotificationBan, "Account restricted",
			"Your account accumulated too many valid complaints and is now read only.", nil)
		if defendant, err := s.userRepo.GetByID(ctx, c.DefendantID); err == nil {
			if err := s.emailSvc.Send(ctx, defendant.Email, defendant.FullName,
				"Your ShareSphere account has been restricted",
				"Your account accumulated too many valid complaints and can no longer borrow, lend or trade tokens."); err != nil {
				logger.WarnContext(ctx, "Failed to send ban email", "user_id", c.DefendantID, "error", err)
			}
		}
	}

	return c, nil
}

func (s *complaintService) ListMine(ctx context.Context, userID string) ([]domain.Complaint, []domain.Complaint, error) {
	filed, err := s.complaintRepo.ListByComplainant(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	against, err := s.complaintRepo.ListByDefendant(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return filed, against, nil
}

func validity(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
