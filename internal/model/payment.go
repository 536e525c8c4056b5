package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// OwnerCompensationPayment is the pending external order through which a
// terminating owner personally funds the team's compensation. The PENDING ->
// COMPLETED transition gates resumption of the termination workflow.
type OwnerCompensationPayment struct {
	ID          uuid.UUID
	OrderCode   string
	ContractID  uuid.UUID
	PayerUserID uuid.UUID
	Amount      decimal.Decimal
	PaymentURL  string
	Memo        string
	Status      PaymentStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
}
