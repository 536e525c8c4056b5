package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceReason string

const (
	ReasonTeamCompensation  BalanceReason = "TERMINATION_TEAM_COMPENSATION"
	ReasonOwnerCompensation BalanceReason = "TERMINATION_OWNER_COMPENSATION"
	ReasonClientRefund      BalanceReason = "TERMINATION_CLIENT_REFUND"
	ReasonTaxRefund         BalanceReason = "TERMINATION_TAX_REFUND"
)

// BalanceTransaction is an append-only ledger entry capturing the balance
// before and after a single mutation.
type BalanceTransaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reason        BalanceReason
	ContractID    uuid.UUID
	Description   string
	CreatedAt     time.Time
}

type PayoutSource string

const (
	PayoutSourceTerminationCompensation PayoutSource = "TERMINATION_COMPENSATION"
)

// TaxPayoutRecord is the append-only per-payee gross/tax/net record consumed
// by the external tax declaration export, stamped with its tax period.
type TaxPayoutRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Gross       decimal.Decimal
	Tax         decimal.Decimal
	Net         decimal.Decimal
	Source      PayoutSource
	ContractID  uuid.UUID
	MilestoneID *uuid.UUID
	Year        int
	Month       int
	Quarter     int
	CreatedAt   time.Time
}
