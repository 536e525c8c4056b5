package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
)

func (s *Store) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			project_id,
			owner_id,
			client_id,
			title,
			total_amount,
			payment_mode,
			compensation_percentage,
			personal_income_tax,
			value_added_tax,
			status,
			signed_at,
			created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (s *Store) MarkContractTerminated(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contracts SET status = ? WHERE id = ?
	`, model.ContractStatusTerminated, id).Error
}

func (s *Store) ListMilestonesByStatus(
	ctx context.Context,
	contractID uuid.UUID,
	status model.MilestoneStatus,
) ([]model.Milestone, error) {
	var milestones []model.Milestone
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			name,
			amount,
			personal_income_tax,
			value_added_tax,
			status,
			edit_quota,
			product_quota,
			due_at,
			created_at
		FROM milestones
		WHERE contract_id = ? AND status = ?
		ORDER BY created_at ASC
	`, contractID, status).Scan(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (s *Store) ListApprovedSplitsByContract(ctx context.Context, contractID uuid.UUID) ([]model.TeamMoneySplit, error) {
	var splits []model.TeamMoneySplit
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			milestone_id,
			user_id,
			amount,
			description,
			status,
			approved_at,
			created_at
		FROM team_money_splits
		WHERE contract_id = ? AND status = ?
		ORDER BY created_at ASC
	`, contractID, model.SplitStatusApproved).Scan(&splits).Error
	if err != nil {
		return nil, err
	}
	return splits, nil
}

func (s *Store) ListApprovedSplitsByMilestones(ctx context.Context, milestoneIDs []uuid.UUID) ([]model.TeamMoneySplit, error) {
	if len(milestoneIDs) == 0 {
		return []model.TeamMoneySplit{}, nil
	}
	var splits []model.TeamMoneySplit
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			milestone_id,
			user_id,
			amount,
			description,
			status,
			approved_at,
			created_at
		FROM team_money_splits
		WHERE milestone_id = ANY(?) AND status = ?
		ORDER BY created_at ASC
	`, milestoneIDs, model.SplitStatusApproved).Scan(&splits).Error
	if err != nil {
		return nil, err
	}
	return splits, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Raw(`
		SELECT id, full_name, email, balance, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}
