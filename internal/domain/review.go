package domain

import "time"

// Review is one post-return rating, at most one per transaction per
// direction.
type Review struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	ReviewerID    string    `json:"reviewer_id"`
	RevieweeID    string    `json:"reviewee_id"`
	ItemID        string    `json:"item_id"`
	Rating        int32     `json:"rating"` // 1..5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}
