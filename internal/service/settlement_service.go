package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/notify"
)

// SettlementService pays the second-phase tax refunds once their scheduled
// date has passed. It is driven by the periodic scheduler or the ops
// endpoint and is idempotent: the status flip is a compare-and-set inside
// the same transaction as the credit.
type SettlementService struct {
	store     Store
	publisher notify.Publisher
	log       zerolog.Logger
}

func NewSettlementService(store Store, publisher notify.Publisher, log zerolog.Logger) *SettlementService {
	return &SettlementService{store: store, publisher: publisher, log: log}
}

// ProcessDueRefunds settles every tax record whose deferred refund is due at
// now. A record that fails leaves the others unaffected; it is picked up
// again on the next run. Returns the number of refunds settled.
func (s *SettlementService) ProcessDueRefunds(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListDueTaxRefunds(ctx, now)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, record := range due {
		if err := s.settleRefund(ctx, record, now); err != nil {
			s.log.Error().Err(err).
				Str("tax_record_id", record.ID.String()).
				Str("contract_id", record.ContractID.String()).
				Msg("deferred refund settlement failed")
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *SettlementService) settleRefund(ctx context.Context, record model.TaxRecord, now time.Time) error {
	if record.RefundUserID == nil {
		return fmt.Errorf("tax record %s is waiting for refund but has no recipient", record.ID)
	}
	recipient := *record.RefundUserID

	var flipped bool
	err := s.store.Transaction(ctx, func(tx Store) error {
		// Compare-and-set first: a concurrent or repeated run flips zero
		// rows and skips the credit.
		ok, err := tx.CompleteTaxRefund(ctx, record.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		flipped = true

		if _, err := tx.Credit(
			ctx,
			recipient,
			record.RefundedTax,
			model.ReasonTaxRefund,
			record.ContractID,
			"deferred tax refund after termination settlement",
		); err != nil {
			return err
		}
		return tx.CompleteTermination(ctx, record.ID)
	})
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	if err := s.publisher.RefundSettled(ctx, notify.RefundSettledEvent{
		ContractID:  record.ContractID,
		TaxRecordID: record.ID,
		UserID:      recipient,
		Amount:      record.RefundedTax,
	}); err != nil {
		s.log.Warn().Err(err).
			Str("tax_record_id", record.ID.String()).
			Msg("refund notification failed")
	}
	return nil
}
