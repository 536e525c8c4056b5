package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/notify"
	"github.com/trackdeal/settlements/internal/payment"
)

// fakeStore is the in-memory Store used by the service tests. Transactions
// are flat: the tests never exercise rollback, only the guards that run
// before any write.
type fakeStore struct {
	contracts    map[uuid.UUID]*model.Contract
	milestones   map[uuid.UUID][]model.Milestone
	splits       map[uuid.UUID][]model.TeamMoneySplit
	users        map[uuid.UUID]*model.User
	terminations map[uuid.UUID]*model.ContractTermination
	taxRecords   map[uuid.UUID]*model.TaxRecord
	payments     map[string]*model.OwnerCompensationPayment
	transactions []model.BalanceTransaction
	payouts      []model.TaxPayoutRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contracts:    map[uuid.UUID]*model.Contract{},
		milestones:   map[uuid.UUID][]model.Milestone{},
		splits:       map[uuid.UUID][]model.TeamMoneySplit{},
		users:        map[uuid.UUID]*model.User{},
		terminations: map[uuid.UUID]*model.ContractTermination{},
		taxRecords:   map[uuid.UUID]*model.TaxRecord{},
		payments:     map[string]*model.OwnerCompensationPayment{},
	}
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(f)
}

func (f *fakeStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (f *fakeStore) MarkContractTerminated(_ context.Context, id uuid.UUID) error {
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = model.ContractStatusTerminated
	return nil
}

func (f *fakeStore) ListMilestonesByStatus(_ context.Context, contractID uuid.UUID, status model.MilestoneStatus) ([]model.Milestone, error) {
	var result []model.Milestone
	for _, ms := range f.milestones[contractID] {
		if ms.Status == status {
			result = append(result, ms)
		}
	}
	return result, nil
}

func (f *fakeStore) ListApprovedSplitsByContract(_ context.Context, contractID uuid.UUID) ([]model.TeamMoneySplit, error) {
	var result []model.TeamMoneySplit
	for _, s := range f.splits[contractID] {
		if s.Status == model.SplitStatusApproved {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeStore) ListApprovedSplitsByMilestones(_ context.Context, milestoneIDs []uuid.UUID) ([]model.TeamMoneySplit, error) {
	ids := map[uuid.UUID]struct{}{}
	for _, id := range milestoneIDs {
		ids[id] = struct{}{}
	}
	var result []model.TeamMoneySplit
	for _, splits := range f.splits {
		for _, s := range splits {
			if s.Status != model.SplitStatusApproved || s.MilestoneID == nil {
				continue
			}
			if _, ok := ids[*s.MilestoneID]; ok {
				result = append(result, s)
			}
		}
	}
	return result, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) Credit(
	_ context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	reason model.BalanceReason,
	contractID uuid.UUID,
	description string,
) (*model.BalanceTransaction, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	before := user.Balance
	user.Balance = before.Add(amount)
	entry := model.BalanceTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  user.Balance,
		Reason:        reason,
		ContractID:    contractID,
		Description:   description,
		CreatedAt:     time.Now(),
	}
	f.transactions = append(f.transactions, entry)
	return &entry, nil
}

func (f *fakeStore) CreateTaxPayout(_ context.Context, record model.TaxPayoutRecord) (*model.TaxPayoutRecord, error) {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	f.payouts = append(f.payouts, record)
	return &record, nil
}

func (f *fakeStore) ListTransactionsByContract(_ context.Context, contractID uuid.UUID) ([]model.BalanceTransaction, error) {
	var result []model.BalanceTransaction
	for _, entry := range f.transactions {
		if entry.ContractID == contractID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeStore) TerminationExists(_ context.Context, contractID uuid.UUID) (bool, error) {
	_, ok := f.terminations[contractID]
	return ok, nil
}

func (f *fakeStore) CreateTaxRecord(_ context.Context, record model.TaxRecord) (*model.TaxRecord, error) {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	f.taxRecords[record.ID] = &record
	copied := record
	return &copied, nil
}

func (f *fakeStore) CreateTermination(_ context.Context, t model.ContractTermination) (*model.ContractTermination, error) {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	f.terminations[t.ContractID] = &t
	copied := t
	return &copied, nil
}

func (f *fakeStore) GetTerminationByContract(_ context.Context, contractID uuid.UUID) (*model.ContractTermination, error) {
	t, ok := f.terminations[contractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) GetTaxRecord(_ context.Context, id uuid.UUID) (*model.TaxRecord, error) {
	record, ok := f.taxRecords[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStore) ListDueTaxRefunds(_ context.Context, now time.Time) ([]model.TaxRecord, error) {
	var due []model.TaxRecord
	for _, record := range f.taxRecords {
		if record.Status != model.TaxRecordStatusWaitingRefund {
			continue
		}
		if record.RefundScheduledDate != nil && !record.RefundScheduledDate.After(now) {
			due = append(due, *record)
		}
	}
	return due, nil
}

func (f *fakeStore) CompleteTaxRefund(_ context.Context, id uuid.UUID, refundedAt time.Time) (bool, error) {
	record, ok := f.taxRecords[id]
	if !ok || record.Status != model.TaxRecordStatusWaitingRefund {
		return false, nil
	}
	record.Status = model.TaxRecordStatusCompleted
	record.RefundedAt = &refundedAt
	return true, nil
}

func (f *fakeStore) CompleteTermination(_ context.Context, taxRecordID uuid.UUID) error {
	for _, t := range f.terminations {
		if t.TaxRecordID == taxRecordID && t.Status == model.TerminationStatusPartialCompleted {
			t.Status = model.TerminationStatusCompleted
		}
	}
	return nil
}

func (f *fakeStore) CreateOwnerPayment(_ context.Context, p model.OwnerCompensationPayment) (*model.OwnerCompensationPayment, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.payments[p.OrderCode] = &p
	copied := p
	return &copied, nil
}

func (f *fakeStore) GetOwnerPaymentByOrderCode(_ context.Context, orderCode string) (*model.OwnerCompensationPayment, error) {
	p, ok := f.payments[orderCode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) GetOwnerPaymentByID(_ context.Context, id uuid.UUID) (*model.OwnerCompensationPayment, error) {
	for _, p := range f.payments {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) MarkOwnerPaymentCompleted(_ context.Context, id uuid.UUID, completedAt time.Time) error {
	for _, p := range f.payments {
		if p.ID == id {
			p.Status = model.PaymentStatusCompleted
			p.CompletedAt = &completedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeGateway mints deterministic order codes.
type fakeGateway struct {
	orders []payment.Order
}

func (g *fakeGateway) CreateOrder(
	_ context.Context,
	contractID, _ uuid.UUID,
	_ decimal.Decimal,
	_ string,
) (payment.Order, error) {
	order := payment.Order{
		OrderCode:  "OCP-TEST-" + contractID.String()[:8],
		PaymentURL: "https://pay.test/OCP-TEST-" + contractID.String()[:8],
	}
	g.orders = append(g.orders, order)
	return order, nil
}

// fakePublisher records emitted events.
type fakePublisher struct {
	completed []notify.TerminationCompletedEvent
	requested []notify.OwnerPaymentRequestedEvent
	refunded  []notify.RefundSettledEvent
}

func (p *fakePublisher) TerminationCompleted(_ context.Context, event notify.TerminationCompletedEvent) error {
	p.completed = append(p.completed, event)
	return nil
}

func (p *fakePublisher) OwnerPaymentRequested(_ context.Context, event notify.OwnerPaymentRequestedEvent) error {
	p.requested = append(p.requested, event)
	return nil
}

func (p *fakePublisher) RefundSettled(_ context.Context, event notify.RefundSettledEvent) error {
	p.refunded = append(p.refunded, event)
	return nil
}
