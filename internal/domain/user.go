package domain

import "time"

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Location     string `json:"location"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	// Tokens is the spendable balance cached from the ledger. It is only
	// ever mutated together with a ledger entry, inside the same database
	// transaction.
	Tokens int32 `json:"tokens"`
	// PendingPenalties is the total owed but not yet deducted, cached from
	// the pending_penalties table under the same rule.
	PendingPenalties      int32     `json:"pending_penalties"`
	StarRating            float64   `json:"star_rating"`
	TotalReviews          int32     `json:"total_reviews"`
	ComplaintCount        int32     `json:"complaint_count"`
	SuccessRate           float64   `json:"success_rate"`
	CompletedTransactions int32     `json:"completed_transactions"`
	FailedTransactions    int32     `json:"failed_transactions"`
	IsActive              bool      `json:"is_active"`
	IsBanned              bool      `json:"is_banned"`
	IsAdmin               bool      `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
}

// UserProfile is the public subset of User exposed to other members.
type UserProfile struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	FullName         string  `json:"full_name"`
	Location         string  `json:"location"`
	Phone            string  `json:"phone"`
	StarRating       float64 `json:"star_rating"`
	TotalReviews     int32   `json:"total_reviews"`
	ComplaintCount   int32   `json:"complaint_count"`
	SuccessRate      float64 `json:"success_rate"`
	Tokens           int32   `json:"tokens"`
	PendingPenalties int32   `json:"pending_penalties"`
	IsActive         bool    `json:"is_active"`
	IsBanned         bool    `json:"is_banned"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.FullName,
		Location:         u.Location,
		Phone:            u.Phone,
		StarRating:       u.StarRating,
		TotalReviews:     u.TotalReviews,
		ComplaintCount:   u.ComplaintCount,
		SuccessRate:      u.SuccessRate,
		Tokens:           u.Tokens,
		PendingPenalties: u.PendingPenalties,
		IsActive:         u.IsActive,
		IsBanned:         u.IsBanned,
	}
}
