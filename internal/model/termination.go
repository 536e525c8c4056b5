package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TerminatorRole string

const (
	TerminatorOwner  TerminatorRole = "OWNER"
	TerminatorClient TerminatorRole = "CLIENT"
)

type TerminationType string

const (
	TerminationBeforeCutoff TerminationType = "BEFORE_CUTOFF"
	TerminationAfterCutoff  TerminationType = "AFTER_CUTOFF"
)

type TerminationStatus string

const (
	TerminationStatusCompleted TerminationStatus = "COMPLETED"
	// PARTIAL_COMPLETED: first settlement phase done, deferred tax refund pending.
	TerminationStatusPartialCompleted TerminationStatus = "PARTIAL_COMPLETED"
)

type TaxRecordStatus string

const (
	TaxRecordStatusCompleted     TaxRecordStatus = "COMPLETED"
	TaxRecordStatusWaitingRefund TaxRecordStatus = "WAITING_REFUND"
)

// TaxRecord is created once per termination. The refund fields are filled
// only when the termination lands on or after the monthly cutoff day; the
// refund amount is frozen at termination time so the deferred payment never
// re-derives it.
type TaxRecord struct {
	ID                  uuid.UUID
	ContractID          uuid.UUID
	OriginalTax         decimal.Decimal
	ActualTax           decimal.Decimal
	RefundedTax         decimal.Decimal
	RefundUserID        *uuid.UUID
	RefundScheduledDate *time.Time
	RefundedAt          *time.Time
	Status              TaxRecordStatus
	CreatedAt           time.Time
}

// ContractTermination is the durable outcome record, created exactly once
// per contract and never mutated except for notes and the partial->completed
// status flip after the deferred refund lands.
type ContractTermination struct {
	ID                 uuid.UUID
	ContractID         uuid.UUID
	TerminatedBy       TerminatorRole
	TerminatorUserID   uuid.UUID
	Type               TerminationType
	TotalAmount        decimal.Decimal
	TotalTeamGross     decimal.Decimal
	TeamTax            decimal.Decimal
	OwnerCompensation  decimal.Decimal
	OwnerActualReceive decimal.Decimal
	ClientRefund       decimal.Decimal
	TaxRecordID        uuid.UUID
	PaymentID          *uuid.UUID
	Status             TerminationStatus
	Notes              string
	CreatedAt          time.Time
}
