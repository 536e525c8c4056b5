package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
)

func (s *Store) TerminationExists(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contract_terminations WHERE contract_id = ?
	`, contractID).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateTaxRecord(ctx context.Context, record model.TaxRecord) (*model.TaxRecord, error) {
	var saved model.TaxRecord
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO tax_records (
			contract_id,
			original_tax,
			actual_tax,
			refunded_tax,
			refund_user_id,
			refund_scheduled_date,
			status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			contract_id,
			original_tax,
			actual_tax,
			refunded_tax,
			refund_user_id,
			refund_scheduled_date,
			refunded_at,
			status,
			created_at
	`,
		record.ContractID,
		record.OriginalTax,
		record.ActualTax,
		record.RefundedTax,
		record.RefundUserID,
		record.RefundScheduledDate,
		record.Status,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) CreateTermination(ctx context.Context, t model.ContractTermination) (*model.ContractTermination, error) {
	var saved model.ContractTermination
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO contract_terminations (
			contract_id,
			terminated_by,
			terminator_user_id,
			type,
			total_amount,
			total_team_gross,
			team_tax,
			owner_compensation,
			owner_actual_receive,
			client_refund,
			tax_record_id,
			payment_id,
			status,
			notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			contract_id,
			terminated_by,
			terminator_user_id,
			type,
			total_amount,
			total_team_gross,
			team_tax,
			owner_compensation,
			owner_actual_receive,
			client_refund,
			tax_record_id,
			payment_id,
			status,
			notes,
			created_at
	`,
		t.ContractID,
		t.TerminatedBy,
		t.TerminatorUserID,
		t.Type,
		t.TotalAmount,
		t.TotalTeamGross,
		t.TeamTax,
		t.OwnerCompensation,
		t.OwnerActualReceive,
		t.ClientRefund,
		t.TaxRecordID,
		t.PaymentID,
		t.Status,
		t.Notes,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) GetTerminationByContract(ctx context.Context, contractID uuid.UUID) (*model.ContractTermination, error) {
	var t model.ContractTermination
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			terminated_by,
			terminator_user_id,
			type,
			total_amount,
			total_team_gross,
			team_tax,
			owner_compensation,
			owner_actual_receive,
			client_refund,
			tax_record_id,
			payment_id,
			status,
			notes,
			created_at
		FROM contract_terminations
		WHERE contract_id = ?
		LIMIT 1
	`, contractID).Scan(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (s *Store) GetTaxRecord(ctx context.Context, id uuid.UUID) (*model.TaxRecord, error) {
	var record model.TaxRecord
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			original_tax,
			actual_tax,
			refunded_tax,
			refund_user_id,
			refund_scheduled_date,
			refunded_at,
			status,
			created_at
		FROM tax_records
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&record).Error; err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// ListDueTaxRefunds returns tax records still waiting on their deferred
// refund whose scheduled date has passed.
func (s *Store) ListDueTaxRefunds(ctx context.Context, now time.Time) ([]model.TaxRecord, error) {
	var records []model.TaxRecord
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			original_tax,
			actual_tax,
			refunded_tax,
			refund_user_id,
			refund_scheduled_date,
			refunded_at,
			status,
			created_at
		FROM tax_records
		WHERE status = ? AND refund_scheduled_date <= ?
		ORDER BY refund_scheduled_date ASC
	`, model.TaxRecordStatusWaitingRefund, now).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CompleteTaxRefund flips a waiting tax record to COMPLETED. The status
// predicate makes the flip a compare-and-set: a second invocation affects
// zero rows and reports false.
func (s *Store) CompleteTaxRefund(ctx context.Context, id uuid.UUID, refundedAt time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE tax_records
		SET status = ?, refunded_at = ?
		WHERE id = ? AND status = ?
	`, model.TaxRecordStatusCompleted, refundedAt, id, model.TaxRecordStatusWaitingRefund)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteTermination flips the PARTIAL_COMPLETED termination owning the
// given tax record to COMPLETED once its deferred refund has landed.
func (s *Store) CompleteTermination(ctx context.Context, taxRecordID uuid.UUID) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contract_terminations
		SET status = ?
		WHERE tax_record_id = ? AND status = ?
	`, model.TerminationStatusCompleted, taxRecordID, model.TerminationStatusPartialCompleted).Error
}
