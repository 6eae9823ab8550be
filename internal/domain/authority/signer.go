// Package authority models who is allowed to sign off on a monetary amount.
//
// Two distinct authorities share the approve/reject transition on a budget:
// the original requester (customer-side acceptance) and a financial approver
// bounded by a configured value range. The tagged union below keeps that
// distinction explicit instead of threading boolean flags through the
// workflow.
package authority

import (
	"github.com/shopspring/decimal"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

// Signer is either a Requester or a FinancialApprover.
type Signer interface {
	// ActorID is the user id of the signer.
	ActorID() string

	// IsRequester reports whether the signer acted as the requisition's
	// own requester rather than as financial control.
	IsRequester() bool

	// CanSign reports whether the signer is authorized for the amount.
	CanSign(amount decimal.Decimal) bool
}

// Requester signs as the customer-side acceptor of their own requisition.
// A requester may always sign, regardless of amount.
type Requester struct {
	UserID string
}

// ActorID implements Signer.
func (r Requester) ActorID() string { return r.UserID }

// IsRequester implements Signer.
func (r Requester) IsRequester() bool { return true }

// CanSign implements Signer.
func (r Requester) CanSign(decimal.Decimal) bool { return true }

// FinancialApprover signs under a configured inclusive value band.
type FinancialApprover struct {
	Approver *entity.Approver
}

// ActorID implements Signer.
func (f FinancialApprover) ActorID() string { return f.Approver.UserID }

// IsRequester implements Signer.
func (f FinancialApprover) IsRequester() bool { return false }

// CanSign implements Signer.
func (f FinancialApprover) CanSign(amount decimal.Decimal) bool {
	return f.Approver.IsActive && f.Approver.CoversAmount(amount)
}
