package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SplitStatus string

const (
	SplitStatusProposed SplitStatus = "PROPOSED"
	SplitStatusApproved SplitStatus = "APPROVED"
	SplitStatusRejected SplitStatus = "REJECTED"
)

// TeamMoneySplit is an allocation of a milestone's gross amount to one
// collaborator. Immutable once approved; the sum of approved splits never
// exceeds the milestone total (enforced at approval time, not here).
type TeamMoneySplit struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	MilestoneID *uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	Status      SplitStatus
	ApprovedAt  *time.Time
	CreatedAt   time.Time
}
