package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	PaymentModeFull         PaymentMode = "FULL"
	PaymentModePerMilestone PaymentMode = "PER_MILESTONE"
)

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "DRAFT"
	ContractStatusSigned     ContractStatus = "SIGNED"
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusCompleted  ContractStatus = "COMPLETED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

// Contract is immutable once signed except for status and termination fields.
type Contract struct {
	ID                     uuid.UUID
	ProjectID              uuid.UUID
	OwnerID                uuid.UUID
	ClientID               uuid.UUID
	Title                  string
	TotalAmount            decimal.Decimal
	PaymentMode            PaymentMode
	CompensationPercentage *decimal.Decimal
	PersonalIncomeTax      decimal.Decimal
	ValueAddedTax          decimal.Decimal
	Status                 ContractStatus
	SignedAt               *time.Time
	CreatedAt              time.Time
}

// OriginalTax is the withheld PIT+VAT on the whole contract.
func (c Contract) OriginalTax() decimal.Decimal {
	return c.PersonalIncomeTax.Add(c.ValueAddedTax)
}

// CompensationPct treats a missing percentage as zero.
func (c Contract) CompensationPct() decimal.Decimal {
	if c.CompensationPercentage == nil {
		return decimal.Zero
	}
	return *c.CompensationPercentage
}
