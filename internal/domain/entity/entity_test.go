package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonnelCodePrefix(t *testing.T) {
	assert.Equal(t, "NIA-PERS-BODE-", PersonnelCodePrefix("Bodega 2"))
	assert.Equal(t, "NIA-PERS-GEN-", PersonnelCodePrefix("B1"))
	assert.Equal(t, "NIA-PERS-GEN-", PersonnelCodePrefix(""))
	assert.Equal(t, "NIA-PERS-AULA-0007", PersonnelCode(PersonnelCodePrefix("Aula Magna"), 7))
}

func TestCustodyPointer(t *testing.T) {
	assert.True(t, CustodyPointer{}.IsEmpty())
	assert.False(t, CustodyPointer{UserID: "u", LocationID: "l"}.Valid())

	c, ok := CustodyPointer{LocationID: "l"}.Custodian()
	assert.True(t, ok)
	assert.Equal(t, LocationCustodian("l"), c)
	assert.True(t, CustodyPointer{LocationID: "l"}.Matches(c))
	assert.False(t, CustodyPointer{UserID: "l"}.Matches(c))
}

func TestTransiciones(t *testing.T) {
	assert.True(t, CanTransitionRequisition(RequisitionPending, RequisitionSupplyApproved))
	assert.False(t, CanTransitionRequisition(RequisitionApproved, RequisitionRejected))
	assert.False(t, CanTransitionRequisition(RequisitionFulfilled, RequisitionPending))

	assert.True(t, CanTransitionReceipt(ReceiptLost, ReceiptReturned))
	assert.False(t, CanTransitionReceipt(ReceiptDamaged, ReceiptReturned))
	assert.False(t, CanTransitionReceipt(ReceiptReturned, ReceiptIssued))
}
