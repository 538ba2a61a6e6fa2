package domain

import "time"

type ItemCategory string

const (
	CategoryTools           ItemCategory = "Tools"
	CategoryElectronics     ItemCategory = "Electronics"
	CategoryOutdoor         ItemCategory = "Outdoor"
	CategoryHomeKitchen     ItemCategory = "Home & Kitchen"
	CategoryBooksStationery ItemCategory = "Books & Stationery"
	CategorySportsFitness   ItemCategory = "Sports & Fitness"
	CategoryEventGear       ItemCategory = "Event Gear"
	CategoryMiscellaneous   ItemCategory = "Miscellaneous"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryTools, CategoryElectronics, CategoryOutdoor, CategoryHomeKitchen,
		CategoryBooksStationery, CategorySportsFitness, CategoryEventGear, CategoryMiscellaneous:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusBorrowed    ItemStatus = "borrowed"
	ItemStatusUnavailable ItemStatus = "unavailable"
)

type Item struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Owner       *UserProfile `json:"owner,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    ItemCategory `json:"category"`
	// Value is the replacement value in tokens. It is the ceiling for the
	// total penalty a transaction on this item can accumulate.
	Value          int32      `json:"value"`
	TokensPerDay   int32      `json:"tokens_per_day"`
	AvailableFrom  time.Time  `json:"available_from"`
	AvailableUntil time.Time  `json:"available_until"`
	Location       string     `json:"location"`
	Status         ItemStatus `json:"status"`
	Images         []string   `json:"images"`
	TotalBorrows   int32      `json:"total_borrows"`
	AverageRating  float64    `json:"average_rating"`
	CreatedAt      time.Time  `json:"created_at"`
}

// dailyRatePermille maps categories to a suggested daily rate, in thousandths
// of the item value.
var dailyRatePermille = map[ItemCategory]int32{
	CategoryElectronics:     50,
	CategoryTools:           30,
	CategoryOutdoor:         40,
	CategoryHomeKitchen:     20,
	CategoryBooksStationery: 10,
	CategorySportsFitness:   30,
	CategoryEventGear:       60,
	CategoryMiscellaneous:   25,
}

// SuggestTokensPerDay proposes a daily rental rate for an item, clamped to
// [1, 500] tokens.
func SuggestTokensPerDay(value int32, category ItemCategory) int32 {
	permille, ok := dailyRatePermille[category]
	if !ok {
		permille = 30
	}
	suggested := value * permille / 1000
	if suggested < 1 {
		return 1
	}
	if suggested > 500 {
		return 500
	}
	return suggested
}
