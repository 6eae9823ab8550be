package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Approver authorizes monetary amounts within an inclusive value band.
// Lookup is by user_id uniqueness; multiple records per user are not
// supported.
type Approver struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	ApprovalLevel int             `json:"approval_level"`
	MinValue      decimal.Decimal `json:"min_value"`
	MaxValue      decimal.Decimal `json:"max_value"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CoversAmount reports whether the amount falls within the approver's
// authorized band. Bounds are inclusive.
func (a *Approver) CoversAmount(amount decimal.Decimal) bool {
	return amount.Cmp(a.MinValue) >= 0 && amount.Cmp(a.MaxValue) <= 0
}

// Buyer is a user assigned to source quotes for approved requisitions.
type Buyer struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
