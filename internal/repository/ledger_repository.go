package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
)

// Credit applies a balance mutation to one user and writes the ledger entry
// in the same statement sequence. The row lock serializes concurrent credits
// to the same user across unrelated settlements; callers must already be
// inside a Store transaction.
func (s *Store) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	reason model.BalanceReason,
	contractID uuid.UUID,
	description string,
) (*model.BalanceTransaction, error) {
	var before decimal.Decimal
	row := s.db.WithContext(ctx).Raw(`
		SELECT balance FROM users WHERE id = ? FOR UPDATE
	`, userID).Row()
	if err := row.Scan(&before); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	after := before.Add(amount)
	if err := s.db.WithContext(ctx).Exec(`
		UPDATE users SET balance = ? WHERE id = ?
	`, after, userID).Error; err != nil {
		return nil, err
	}

	var entry model.BalanceTransaction
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO balance_transactions (
			user_id,
			amount,
			balance_before,
			balance_after,
			reason,
			contract_id,
			description
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			user_id,
			amount,
			balance_before,
			balance_after,
			reason,
			contract_id,
			description,
			created_at
	`, userID, amount, before, after, reason, contractID, description).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) CreateTaxPayout(ctx context.Context, record model.TaxPayoutRecord) (*model.TaxPayoutRecord, error) {
	var saved model.TaxPayoutRecord
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO tax_payout_records (
			user_id,
			gross,
			tax,
			net,
			source,
			contract_id,
			milestone_id,
			year,
			month,
			quarter
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			user_id,
			gross,
			tax,
			net,
			source,
			contract_id,
			milestone_id,
			year,
			month,
			quarter,
			created_at
	`,
		record.UserID,
		record.Gross,
		record.Tax,
		record.Net,
		record.Source,
		record.ContractID,
		record.MilestoneID,
		record.Year,
		record.Month,
		record.Quarter,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) ListTransactionsByContract(ctx context.Context, contractID uuid.UUID) ([]model.BalanceTransaction, error) {
	var entries []model.BalanceTransaction
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			user_id,
			amount,
			balance_before,
			balance_after,
			reason,
			contract_id,
			description,
			created_at
		FROM balance_transactions
		WHERE contract_id = ?
		ORDER BY created_at ASC, id ASC
	`, contractID).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
