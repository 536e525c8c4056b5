package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/repository"
)

// Store is the persistence surface the settlement services consume. The
// repository package provides the postgres implementation; tests substitute
// an in-memory fake.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	MarkContractTerminated(ctx context.Context, id uuid.UUID) error
	ListMilestonesByStatus(ctx context.Context, contractID uuid.UUID, status model.MilestoneStatus) ([]model.Milestone, error)
	ListApprovedSplitsByContract(ctx context.Context, contractID uuid.UUID) ([]model.TeamMoneySplit, error)
	ListApprovedSplitsByMilestones(ctx context.Context, milestoneIDs []uuid.UUID) ([]model.TeamMoneySplit, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason model.BalanceReason, contractID uuid.UUID, description string) (*model.BalanceTransaction, error)
	CreateTaxPayout(ctx context.Context, record model.TaxPayoutRecord) (*model.TaxPayoutRecord, error)
	ListTransactionsByContract(ctx context.Context, contractID uuid.UUID) ([]model.BalanceTransaction, error)

	TerminationExists(ctx context.Context, contractID uuid.UUID) (bool, error)
	CreateTaxRecord(ctx context.Context, record model.TaxRecord) (*model.TaxRecord, error)
	CreateTermination(ctx context.Context, t model.ContractTermination) (*model.ContractTermination, error)
	GetTerminationByContract(ctx context.Context, contractID uuid.UUID) (*model.ContractTermination, error)
	GetTaxRecord(ctx context.Context, id uuid.UUID) (*model.TaxRecord, error)
	ListDueTaxRefunds(ctx context.Context, now time.Time) ([]model.TaxRecord, error)
	CompleteTaxRefund(ctx context.Context, id uuid.UUID, refundedAt time.Time) (bool, error)
	CompleteTermination(ctx context.Context, taxRecordID uuid.UUID) error

	CreateOwnerPayment(ctx context.Context, p model.OwnerCompensationPayment) (*model.OwnerCompensationPayment, error)
	GetOwnerPaymentByOrderCode(ctx context.Context, orderCode string) (*model.OwnerCompensationPayment, error)
	GetOwnerPaymentByID(ctx context.Context, id uuid.UUID) (*model.OwnerCompensationPayment, error)
	MarkOwnerPaymentCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error
}

type storeAdapter struct {
	*repository.Store
}

// WrapStore adapts the repository store to the Store interface, rebinding
// the transaction closure to the interface type.
func WrapStore(s *repository.Store) Store {
	return storeAdapter{Store: s}
}

func (a storeAdapter) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return a.Store.Transaction(ctx, func(tx *repository.Store) error {
		return fn(storeAdapter{Store: tx})
	})
}
