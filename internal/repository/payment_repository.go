package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
)

func (s *Store) CreateOwnerPayment(ctx context.Context, p model.OwnerCompensationPayment) (*model.OwnerCompensationPayment, error) {
	var saved model.OwnerCompensationPayment
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO owner_compensation_payments (
			order_code,
			contract_id,
			payer_user_id,
			amount,
			payment_url,
			memo,
			status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			order_code,
			contract_id,
			payer_user_id,
			amount,
			payment_url,
			memo,
			status,
			completed_at,
			created_at
	`,
		p.OrderCode,
		p.ContractID,
		p.PayerUserID,
		p.Amount,
		p.PaymentURL,
		p.Memo,
		p.Status,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetOwnerPaymentByOrderCode locks the payment row for the duration of the
// enclosing transaction so concurrent webhook retries serialize on it.
func (s *Store) GetOwnerPaymentByOrderCode(ctx context.Context, orderCode string) (*model.OwnerCompensationPayment, error) {
	var payment model.OwnerCompensationPayment
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_code,
			contract_id,
			payer_user_id,
			amount,
			payment_url,
			memo,
			status,
			completed_at,
			created_at
		FROM owner_compensation_payments
		WHERE order_code = ?
		LIMIT 1
		FOR UPDATE
	`, orderCode).Scan(&payment).Error; err != nil {
		return nil, err
	}
	if payment.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}

func (s *Store) MarkOwnerPaymentCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE owner_compensation_payments
		SET status = ?, completed_at = ?
		WHERE id = ?
	`, model.PaymentStatusCompleted, completedAt, id).Error
}

func (s *Store) GetOwnerPaymentByID(ctx context.Context, id uuid.UUID) (*model.OwnerCompensationPayment, error) {
	var payment model.OwnerCompensationPayment
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_code,
			contract_id,
			payer_user_id,
			amount,
			payment_url,
			memo,
			status,
			completed_at,
			created_at
		FROM owner_compensation_payments
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&payment).Error; err != nil {
		return nil, err
	}
	if payment.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}
