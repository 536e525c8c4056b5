package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "PENDING"
	MilestoneStatusInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneStatusCompleted  MilestoneStatus = "COMPLETED"
)

type Milestone struct {
	ID                uuid.UUID
	ContractID        uuid.UUID
	Name              string
	Amount            decimal.Decimal
	PersonalIncomeTax decimal.Decimal
	ValueAddedTax     decimal.Decimal
	Status            MilestoneStatus
	EditQuota         int
	ProductQuota      int
	DueAt             *time.Time
	CreatedAt         time.Time
}

func (m Milestone) OriginalTax() decimal.Decimal {
	return m.PersonalIncomeTax.Add(m.ValueAddedTax)
}
