// Package notify is the fire-and-forget event surface. Delivery failures are
// logged by callers and never roll back the financial transaction that
// produced the event.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trackdeal/settlements/internal/model"
)

type TerminationCompletedEvent struct {
	ContractID uuid.UUID
	Terminator model.TerminatorRole
	Status     model.TerminationStatus
}

type OwnerPaymentRequestedEvent struct {
	ContractID uuid.UUID
	OrderCode  string
	Amount     decimal.Decimal
	PaymentURL string
}

type RefundSettledEvent struct {
	ContractID  uuid.UUID
	TaxRecordID uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
}

type Publisher interface {
	TerminationCompleted(ctx context.Context, event TerminationCompletedEvent) error
	OwnerPaymentRequested(ctx context.Context, event OwnerPaymentRequestedEvent) error
	RefundSettled(ctx context.Context, event RefundSettledEvent) error
}

// LogPublisher writes events to the service log. It stands in for the
// platform's notification dispatcher in deployments without one.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) TerminationCompleted(_ context.Context, event TerminationCompletedEvent) error {
	p.log.Info().
		Str("contract_id", event.ContractID.String()).
		Str("terminator", string(event.Terminator)).
		Str("status", string(event.Status)).
		Msg("termination completed")
	return nil
}

func (p *LogPublisher) OwnerPaymentRequested(_ context.Context, event OwnerPaymentRequestedEvent) error {
	p.log.Info().
		Str("contract_id", event.ContractID.String()).
		Str("order_code", event.OrderCode).
		Str("amount", event.Amount.String()).
		Msg("owner compensation payment requested")
	return nil
}

func (p *LogPublisher) RefundSettled(_ context.Context, event RefundSettledEvent) error {
	p.log.Info().
		Str("contract_id", event.ContractID.String()).
		Str("tax_record_id", event.TaxRecordID.String()).
		Str("user_id", event.UserID.String()).
		Str("amount", event.Amount.String()).
		Msg("deferred tax refund settled")
	return nil
}
