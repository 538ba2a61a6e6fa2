package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusDelivered TransactionStatus = "delivered"
	TransactionStatusReturned  TransactionStatus = "returned"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusDisputed  TransactionStatus = "disputed"
)

// Role identifies which side of a transaction a user is on.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleBorrower Role = "borrower"
)

func (r Role) Other() Role {
	if r == RoleOwner {
		return RoleBorrower
	}
	return RoleOwner
}

type DamageSeverity string

const (
	SeverityLight  DamageSeverity = "light"
	SeverityMedium DamageSeverity = "medium"
	SeverityHigh   DamageSeverity = "high"
	SeveritySevere DamageSeverity = "severe"
)

func (s DamageSeverity) Valid() bool {
	switch s {
	case SeverityLight, SeverityMedium, SeverityHigh, SeveritySevere:
		return true
	}
	return false
}

type Transaction struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	OwnerID    string `json:"owner_id"`
	BorrowerID string `json:"borrower_id"`

	Status TransactionStatus `json:"status"`

	// Rental window, inclusive of both dates. TotalTokens is fixed at
	// creation and never recomputed.
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	DaysRequested int32     `json:"days_requested"`
	TotalTokens   int32     `json:"total_tokens"`

	// Bilateral confirmation flags. They only ever flip false -> true; the
	// delivered/returned edges fire on the flip that makes a pair complete.
	OwnerDeliveryConfirmed    bool `json:"owner_delivery_confirmed"`
	BorrowerDeliveryConfirmed bool `json:"borrower_delivery_confirmed"`
	OwnerReturnConfirmed      bool `json:"owner_return_confirmed"`
	BorrowerReturnConfirmed   bool `json:"borrower_return_confirmed"`

	DeliveryProofImages []string `json:"delivery_proof_images"`
	ReturnProofImages   []string `json:"return_proof_images"`

	// DamageReported is a one-shot latch; PenaltyTokens accumulates late and
	// damage fees and never exceeds the item value.
	DamageReported bool            `json:"damage_reported"`
	DamageSeverity *DamageSeverity `json:"damage_severity,omitempty"`
	DamageImages   []string        `json:"damage_images"`
	PenaltyTokens  int32           `json:"penalty_tokens"`

	IsReviewed bool `json:"is_reviewed"`

	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
}

// PartyRole reports which side of the transaction userID is on, if any.
func (t *Transaction) PartyRole(userID string) (Role, bool) {
	switch userID {
	case t.OwnerID:
		return RoleOwner, true
	case t.BorrowerID:
		return RoleBorrower, true
	}
	return "", false
}

func (t *Transaction) PartyID(r Role) string {
	if r == RoleOwner {
		return t.OwnerID
	}
	return t.BorrowerID
}

// Handshake is the two-party confirmation record for a single lifecycle edge.
type Handshake struct {
	Owner    bool
	Borrower bool
}

func (h Handshake) Confirmed(r Role) bool {
	if r == RoleOwner {
		return h.Owner
	}
	return h.Borrower
}

// With returns a copy with the role's flag set. Setting an already-true flag
// is a no-op, so confirmations are idempotent.
func (h Handshake) With(r Role) Handshake {
	if r == RoleOwner {
		h.Owner = true
	} else {
		h.Borrower = true
	}
	return h
}

// Complete reports whether both parties have confirmed.
func (h Handshake) Complete() bool {
	return h.Owner && h.Borrower
}

func (t *Transaction) DeliveryHandshake() Handshake {
	return Handshake{Owner: t.OwnerDeliveryConfirmed, Borrower: t.BorrowerDeliveryConfirmed}
}

func (t *Transaction) ReturnHandshake() Handshake {
	return Handshake{Owner: t.OwnerReturnConfirmed, Borrower: t.BorrowerReturnConfirmed}
}

// Action is a user-facing operation offered by the query view.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionConfirmDelivery Action = "confirm_delivery"
	ActionConfirmReturn   Action = "confirm_return"
	ActionReportDamage    Action = "report_damage"
	ActionReview          Action = "review"
	ActionFileComplaint   Action = "file_complaint"
)

// AvailableActions computes the operations the given role may currently
// trigger. Pure projection over the current state; it never mutates.
func (t *Transaction) AvailableActions(role Role) []Action {
	var actions []Action
	switch t.Status {
	case TransactionStatusPending:
		if role == RoleOwner {
			actions = append(actions, ActionApprove, ActionReject)
		}
	case TransactionStatusApproved:
		if !t.DeliveryHandshake().Confirmed(role) {
			actions = append(actions, ActionConfirmDelivery)
		}
	case TransactionStatusDelivered:
		if !t.ReturnHandshake().Confirmed(role) {
			actions = append(actions, ActionConfirmReturn)
		}
		if role == RoleOwner && !t.DamageReported {
			actions = append(actions, ActionReportDamage)
		}
	case TransactionStatusReturned:
		if !t.IsReviewed {
			actions = append(actions, ActionReview)
		}
		actions = append(actions, ActionFileComplaint)
	case TransactionStatusCompleted:
		actions = append(actions, ActionFileComplaint)
	}
	return actions
}

// TransactionView is the query-view projection of a transaction for one
// requesting user. Rebuilt on every read, never cached.
type TransactionView struct {
	Transaction
	Item             *Item        `json:"item,omitempty"`
	Owner            *UserProfile `json:"owner,omitempty"`
	Borrower         *UserProfile `json:"borrower,omitempty"`
	IsBorrower       bool         `json:"is_borrower"`
	AvailableActions []Action     `json:"available_actions"`
}

type DamageReport struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	ReporterID    string         `json:"reporter_id"`
	Severity      DamageSeverity `json:"severity"`
	Description   string         `json:"description"`
	ProofImages   []string       `json:"proof_images"`
	PenaltyTokens int32          `json:"penalty_tokens"`
	CreatedAt     time.Time      `json:"created_at"`
}
