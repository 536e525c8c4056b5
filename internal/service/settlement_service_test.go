package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackdeal/settlements/internal/model"
)

func terminateAfterCutoff(t *testing.T, f *fixture) *model.TaxRecord {
	t.Helper()
	result, err := f.svc.Execute(context.Background(), ExecuteInput{
		ContractID: f.contract.ID,
		Principal:  model.Principal{UserID: f.clientID},
	})
	require.NoError(t, err)
	require.Equal(t, model.TaxRecordStatusWaitingRefund, result.TaxRecord.Status)
	return result.TaxRecord
}

func TestProcessDueRefundsNotYetDue(t *testing.T) {
	f := newFixture(t, afterCutoff)
	terminateAfterCutoff(t, f)
	settlements := NewSettlementService(f.store, f.publisher, zerolog.Nop())

	// April 20 is the scheduled date; April 19 settles nothing.
	settled, err := settlements.ProcessDueRefunds(context.Background(), time.Date(2026, time.April, 19, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Empty(t, f.publisher.refunded)
}

func TestProcessDueRefundsSettles(t *testing.T) {
	f := newFixture(t, afterCutoff)
	record := terminateAfterCutoff(t, f)
	settlements := NewSettlementService(f.store, f.publisher, zerolog.Nop())

	now := time.Date(2026, time.April, 20, 6, 0, 0, 0, time.UTC)
	settled, err := settlements.ProcessDueRefunds(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	refund := f.creditOf(t, f.ownerID, model.ReasonTaxRefund)
	assert.True(t, dec("56000").Equal(refund.Amount))

	stored := f.store.taxRecords[record.ID]
	assert.Equal(t, model.TaxRecordStatusCompleted, stored.Status)
	require.NotNil(t, stored.RefundedAt)
	assert.Equal(t, now, *stored.RefundedAt)

	assert.Equal(t, model.TerminationStatusCompleted, f.store.terminations[f.contract.ID].Status)
	require.Len(t, f.publisher.refunded, 1)
	assert.Equal(t, record.ID, f.publisher.refunded[0].TaxRecordID)
	assert.Equal(t, f.ownerID, f.publisher.refunded[0].UserID)
}

func TestProcessDueRefundsIdempotent(t *testing.T) {
	f := newFixture(t, afterCutoff)
	terminateAfterCutoff(t, f)
	settlements := NewSettlementService(f.store, f.publisher, zerolog.Nop())

	now := time.Date(2026, time.April, 20, 6, 0, 0, 0, time.UTC)
	_, err := settlements.ProcessDueRefunds(context.Background(), now)
	require.NoError(t, err)
	written := len(f.store.transactions)

	settled, err := settlements.ProcessDueRefunds(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Len(t, f.store.transactions, written)
	assert.Len(t, f.publisher.refunded, 1)
}

func TestProcessDueRefundsSkipsRecordWithoutRecipient(t *testing.T) {
	f := newFixture(t, afterCutoff)
	record := terminateAfterCutoff(t, f)
	f.store.taxRecords[record.ID].RefundUserID = nil
	settlements := NewSettlementService(f.store, f.publisher, zerolog.Nop())

	settled, err := settlements.ProcessDueRefunds(context.Background(), time.Date(2026, time.April, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Equal(t, model.TaxRecordStatusWaitingRefund, f.store.taxRecords[record.ID].Status)
}
