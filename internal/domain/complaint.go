package domain

import "time"

type Complaint struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ComplainantID string          `json:"complainant_id"`
	DefendantID   string          `json:"defendant_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Severity      DamageSeverity  `json:"severity"`
	ProofImages   []string        `json:"proof_images"`
	// IsValid is decided by the resolution process, never by the filer, and
	// is set exactly once.
	IsValid    bool       `json:"is_valid"`
	IsResolved bool       `json:"is_resolved"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
