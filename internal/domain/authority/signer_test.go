package authority

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

func TestRequester_SignsAnyAmount(t *testing.T) {
	signer := Requester{UserID: "user-1"}

	assert.Equal(t, "user-1", signer.ActorID())
	assert.True(t, signer.IsRequester())
	assert.True(t, signer.CanSign(decimal.NewFromInt(1)))
	assert.True(t, signer.CanSign(decimal.NewFromInt(10_000_000)))
}

func TestFinancialApprover_CanSign(t *testing.T) {
	approver := &entity.Approver{
		UserID:   "approver-1",
		MinValue: decimal.NewFromInt(0),
		MaxValue: decimal.NewFromInt(5000),
		IsActive: true,
	}
	signer := FinancialApprover{Approver: approver}

	assert.Equal(t, "approver-1", signer.ActorID())
	assert.False(t, signer.IsRequester())
	assert.True(t, signer.CanSign(decimal.NewFromInt(5000)), "upper bound is inclusive")
	assert.False(t, signer.CanSign(decimal.NewFromInt(5001)))

	approver.IsActive = false
	assert.False(t, signer.CanSign(decimal.NewFromInt(100)), "inactive approver must not sign")
}
