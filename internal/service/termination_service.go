package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/money"
	"github.com/trackdeal/settlements/internal/notify"
	"github.com/trackdeal/settlements/internal/payment"
	"github.com/trackdeal/settlements/internal/termination"
)

// TerminationService drives the contract-termination state machine:
// NONE -> COMPLETED | PARTIAL_COMPLETED on the client path, or
// NONE -> OWNER_PAYMENT_PENDING -> COMPLETED | PARTIAL_COMPLETED on the
// owner path, where the pending state is the unconfirmed payment order.
type TerminationService struct {
	store     Store
	gateway   payment.Gateway
	publisher notify.Publisher
	rules     money.Rules
	log       zerolog.Logger
	now       func() time.Time
}

func NewTerminationService(
	store Store,
	gateway payment.Gateway,
	publisher notify.Publisher,
	rules money.Rules,
	log zerolog.Logger,
) *TerminationService {
	return &TerminationService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		rules:     rules,
		log:       log,
		now:       time.Now,
	}
}

type PreviewInput struct {
	ContractID uuid.UUID
	Principal  model.Principal
}

type TeamMemberPreview struct {
	UserID      uuid.UUID
	FullName    string
	Gross       decimal.Decimal
	Tax         decimal.Decimal
	Net         decimal.Decimal
	Description string
}

// ClientPreview is what a terminating client sees: the refund they keep and
// the compensation that leaves their payment.
type ClientPreview struct {
	Refund              decimal.Decimal
	FirstPayment        decimal.Decimal
	OwnerCompensation   decimal.Decimal
	TotalTeamGross      decimal.Decimal
	AfterCutoff         bool
	ScheduledRefund     decimal.Decimal
	RefundScheduledDate *time.Time
}

// OwnerPreview is what a terminating owner sees: the payment they must fund
// and whether their balance covers it.
type OwnerPreview struct {
	RequiredPayment decimal.Decimal
	CurrentBalance  decimal.Decimal
	Sufficient      bool
	ClientRefund    decimal.Decimal
	AfterCutoff     bool
	Team            []TeamMemberPreview
}

type PreviewResult struct {
	Terminator  model.TerminatorRole
	Calculation termination.Calculation
	Client      *ClientPreview
	Owner       *OwnerPreview
	Warning     string
}

type ExecuteInput struct {
	ContractID uuid.UUID
	Principal  model.Principal
	Notes      string
}

type ExecuteResult struct {
	Terminator  model.TerminatorRole
	Termination *model.ContractTermination
	TaxRecord   *model.TaxRecord
	// Payment is set only on the owner path; the contract is not terminated
	// until the order is confirmed.
	Payment *model.OwnerCompensationPayment
	Warning string
}

type ConfirmPaymentInput struct {
	OrderCode string
	Status    string
}

type ConfirmPaymentResult struct {
	AlreadyProcessed bool
	Termination      *model.ContractTermination
	TaxRecord        *model.TaxRecord
}

type DetailInput struct {
	ContractID uuid.UUID
	Principal  model.Principal
}

type TerminationDetail struct {
	Contract     model.Contract
	Termination  model.ContractTermination
	TaxRecord    model.TaxRecord
	Payment      *model.OwnerCompensationPayment
	Transactions []model.BalanceTransaction
}

// Preview computes the termination outcome for the requester's role without
// touching any state.
func (s *TerminationService) Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error) {
	contract, role, err := s.loadForTermination(ctx, s.store, input.ContractID, input.Principal)
	if err != nil {
		return nil, err
	}

	calc, err := s.calculate(ctx, s.store, contract, role)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		Terminator:  role,
		Calculation: calc,
		Warning:     calc.Warning,
	}

	if role == model.TerminatorClient {
		result.Client = &ClientPreview{
			Refund:              calc.ClientRefund,
			FirstPayment:        calc.ClientFirstPayment,
			OwnerCompensation:   calc.OwnerCompensation,
			TotalTeamGross:      calc.TotalTeamGross,
			AfterCutoff:         calc.AfterCutoff,
			ScheduledRefund:     calc.RefundAmount,
			RefundScheduledDate: calc.RefundScheduledDate,
		}
		return result, nil
	}

	owner, err := s.store.GetUser(ctx, contract.OwnerID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	team, err := s.teamPreview(ctx, calc)
	if err != nil {
		return nil, err
	}
	sufficient := owner.Balance.GreaterThanOrEqual(calc.TotalTeamGross)
	result.Owner = &OwnerPreview{
		RequiredPayment: calc.TotalTeamGross,
		CurrentBalance:  owner.Balance,
		Sufficient:      sufficient,
		ClientRefund:    calc.ClientRefund,
		AfterCutoff:     calc.AfterCutoff,
		Team:            team,
	}
	if !sufficient && result.Warning == "" {
		result.Warning = "owner balance does not cover the team compensation payment"
	}
	return result, nil
}

// Execute runs the termination for the requester's role. The client path
// settles everything in one transaction; the owner path only opens a payment
// order and defers settlement to the webhook confirmation.
func (s *TerminationService) Execute(ctx context.Context, input ExecuteInput) (*ExecuteResult, error) {
	contract, role, err := s.loadForTermination(ctx, s.store, input.ContractID, input.Principal)
	if err != nil {
		return nil, err
	}

	if role == model.TerminatorOwner {
		return s.executeOwnerTermination(ctx, contract, input)
	}
	return s.executeClientTermination(ctx, input)
}

func (s *TerminationService) executeClientTermination(ctx context.Context, input ExecuteInput) (*ExecuteResult, error) {
	var result *ExecuteResult
	err := s.store.Transaction(ctx, func(tx Store) error {
		// Re-check under the transaction: a concurrent execute must observe
		// the record created by the winner and abort.
		exists, err := tx.TerminationExists(ctx, input.ContractID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyTerminated
		}

		contract, err := tx.GetContract(ctx, input.ContractID)
		if err != nil {
			return s.mapNotFound(err)
		}

		calc, err := s.calculate(ctx, tx, contract, model.TerminatorClient)
		if err != nil {
			return err
		}

		if err := s.settleTeam(ctx, tx, contract, calc); err != nil {
			return err
		}
		if err := s.settleOwner(ctx, tx, contract, calc); err != nil {
			return err
		}
		if _, err := tx.Credit(
			ctx,
			contract.ClientID,
			calc.ClientFirstPayment,
			model.ReasonClientRefund,
			contract.ID,
			fmt.Sprintf("termination refund for contract %q", contract.Title),
		); err != nil {
			return err
		}

		taxRecord, terminated, err := s.persistOutcome(ctx, tx, contract, calc, input, nil)
		if err != nil {
			return err
		}

		result = &ExecuteResult{
			Terminator:  model.TerminatorClient,
			Termination: terminated,
			TaxRecord:   taxRecord,
			Warning:     calc.Warning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, result.Termination)
	return result, nil
}

func (s *TerminationService) executeOwnerTermination(ctx context.Context, contract *model.Contract, input ExecuteInput) (*ExecuteResult, error) {
	calc, err := s.calculate(ctx, s.store, contract, model.TerminatorOwner)
	if err != nil {
		return nil, err
	}

	owner, err := s.store.GetUser(ctx, contract.OwnerID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if owner.Balance.LessThan(calc.TotalTeamGross) {
		return nil, fmt.Errorf("%w: balance %s, required %s",
			ErrInsufficientBalance, owner.Balance, calc.TotalTeamGross)
	}

	memo := fmt.Sprintf("team compensation for terminating contract %q", contract.Title)
	order, err := s.gateway.CreateOrder(ctx, contract.ID, contract.OwnerID, calc.TotalTeamGross, memo)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.CreateOwnerPayment(ctx, model.OwnerCompensationPayment{
		OrderCode:   order.OrderCode,
		ContractID:  contract.ID,
		PayerUserID: contract.OwnerID,
		Amount:      calc.TotalTeamGross,
		PaymentURL:  order.PaymentURL,
		Memo:        memo,
		Status:      model.PaymentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.OwnerPaymentRequested(ctx, notify.OwnerPaymentRequestedEvent{
		ContractID: contract.ID,
		OrderCode:  saved.OrderCode,
		Amount:     saved.Amount,
		PaymentURL: saved.PaymentURL,
	}); err != nil {
		s.log.Warn().Err(err).Str("order_code", saved.OrderCode).Msg("owner payment notification failed")
	}

	return &ExecuteResult{
		Terminator: model.TerminatorOwner,
		Payment:    saved,
		Warning:    calc.Warning,
	}, nil
}

// ConfirmOwnerPayment resumes an owner-initiated termination once the
// external provider confirms the order. Replays are no-ops: the payment row
// is locked and its status checked inside the settlement transaction.
func (s *TerminationService) ConfirmOwnerPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	if !paymentConfirmed(input.Status) {
		s.log.Info().
			Str("order_code", input.OrderCode).
			Str("status", input.Status).
			Msg("owner payment webhook without success status, ignoring")
		return nil, ErrPaymentNotConfirmed
	}

	result := &ConfirmPaymentResult{}
	err := s.store.Transaction(ctx, func(tx Store) error {
		pay, err := tx.GetOwnerPaymentByOrderCode(ctx, input.OrderCode)
		if err != nil {
			return s.mapNotFound(err)
		}
		if pay.Status == model.PaymentStatusCompleted {
			result.AlreadyProcessed = true
			return nil
		}

		contract, err := tx.GetContract(ctx, pay.ContractID)
		if err != nil {
			return s.mapNotFound(err)
		}
		exists, err := tx.TerminationExists(ctx, contract.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyTerminated
		}

		// Settlement re-derives the calculation from current contract and
		// milestone state, so a crash after order creation is recovered by
		// any later webhook delivery.
		calc, err := s.calculate(ctx, tx, contract, model.TerminatorOwner)
		if err != nil {
			return err
		}

		if err := s.settleTeam(ctx, tx, contract, calc); err != nil {
			return err
		}
		if err := tx.MarkOwnerPaymentCompleted(ctx, pay.ID, s.now()); err != nil {
			return err
		}
		if _, err := tx.Credit(
			ctx,
			contract.ClientID,
			calc.ClientFirstPayment,
			model.ReasonClientRefund,
			contract.ID,
			fmt.Sprintf("termination refund for contract %q", contract.Title),
		); err != nil {
			return err
		}

		taxRecord, terminated, err := s.persistOutcome(ctx, tx, contract, calc, ExecuteInput{
			ContractID: contract.ID,
			Principal:  model.Principal{UserID: contract.OwnerID},
		}, &pay.ID)
		if err != nil {
			return err
		}

		result.Termination = terminated
		result.TaxRecord = taxRecord
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyProcessed {
		s.publishCompleted(ctx, result.Termination)
	}
	return result, nil
}

// GetDetail returns the persisted termination outcome, gated by the same
// owner/client access check as the mutating operations.
func (s *TerminationService) GetDetail(ctx context.Context, input DetailInput) (*TerminationDetail, error) {
	contract, err := s.store.GetContract(ctx, input.ContractID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if _, err := detectTerminator(contract, input.Principal); err != nil {
		return nil, err
	}

	terminated, err := s.store.GetTerminationByContract(ctx, contract.ID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	taxRecord, err := s.store.GetTaxRecord(ctx, terminated.TaxRecordID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}

	detail := &TerminationDetail{
		Contract:    *contract,
		Termination: *terminated,
		TaxRecord:   *taxRecord,
	}
	if terminated.PaymentID != nil {
		pay, err := s.store.GetOwnerPaymentByID(ctx, *terminated.PaymentID)
		if err != nil {
			return nil, s.mapNotFound(err)
		}
		detail.Payment = pay
	}

	transactions, err := s.store.ListTransactionsByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	detail.Transactions = transactions
	return detail, nil
}

// loadForTermination runs the shared preconditions: contract exists, not
// already terminated, requester is its owner or client.
func (s *TerminationService) loadForTermination(
	ctx context.Context,
	store Store,
	contractID uuid.UUID,
	principal model.Principal,
) (*model.Contract, model.TerminatorRole, error) {
	contract, err := store.GetContract(ctx, contractID)
	if err != nil {
		return nil, "", s.mapNotFound(err)
	}

	role, err := detectTerminator(contract, principal)
	if err != nil {
		return nil, "", err
	}

	if contract.Status == model.ContractStatusTerminated {
		return nil, "", ErrAlreadyTerminated
	}
	exists, err := store.TerminationExists(ctx, contract.ID)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrAlreadyTerminated
	}
	return contract, role, nil
}

// calculate assembles the read-only snapshot for the calculator: the whole
// contract for FULL mode, the in-progress milestones and their approved
// splits otherwise.
func (s *TerminationService) calculate(
	ctx context.Context,
	store Store,
	contract *model.Contract,
	role model.TerminatorRole,
) (termination.Calculation, error) {
	in := termination.Input{
		Contract:   *contract,
		Terminator: role,
		Now:        s.now(),
		Rules:      s.rules,
	}

	if contract.PaymentMode == model.PaymentModePerMilestone {
		milestones, err := store.ListMilestonesByStatus(ctx, contract.ID, model.MilestoneStatusInProgress)
		if err != nil {
			return termination.Calculation{}, err
		}
		in.Milestones = milestones

		ids := make([]uuid.UUID, 0, len(milestones))
		for _, ms := range milestones {
			ids = append(ids, ms.ID)
		}
		splits, err := store.ListApprovedSplitsByMilestones(ctx, ids)
		if err != nil {
			return termination.Calculation{}, err
		}
		in.Splits = splits
	} else {
		splits, err := store.ListApprovedSplitsByContract(ctx, contract.ID)
		if err != nil {
			return termination.Calculation{}, err
		}
		in.Splits = splits
	}

	return termination.Calculate(in), nil
}

// settleTeam credits each collaborator's net share and writes the matching
// tax payout record. Shared by the client path and the webhook resumption.
func (s *TerminationService) settleTeam(
	ctx context.Context,
	tx Store,
	contract *model.Contract,
	calc termination.Calculation,
) error {
	year, month, quarter := money.PeriodOf(s.now())
	for _, share := range calc.TeamShares {
		description := fmt.Sprintf("team compensation for contract %q", contract.Title)
		if share.Description != "" {
			description = fmt.Sprintf("%s: %s", description, share.Description)
		}
		if _, err := tx.Credit(ctx, share.UserID, share.Net, model.ReasonTeamCompensation, contract.ID, description); err != nil {
			return err
		}
		if _, err := tx.CreateTaxPayout(ctx, model.TaxPayoutRecord{
			UserID:      share.UserID,
			Gross:       share.Gross,
			Tax:         share.Tax,
			Net:         share.Net,
			Source:      model.PayoutSourceTerminationCompensation,
			ContractID:  contract.ID,
			MilestoneID: share.MilestoneID,
			Year:        year,
			Month:       month,
			Quarter:     quarter,
		}); err != nil {
			return err
		}
	}
	return nil
}

// settleOwner writes the owner's first-phase credit on the client path. The
// second phase, when due, is paid by the settlement scheduler.
func (s *TerminationService) settleOwner(
	ctx context.Context,
	tx Store,
	contract *model.Contract,
	calc termination.Calculation,
) error {
	if _, err := tx.Credit(
		ctx,
		contract.OwnerID,
		calc.OwnerFirstPayment,
		model.ReasonOwnerCompensation,
		contract.ID,
		fmt.Sprintf("termination compensation for contract %q", contract.Title),
	); err != nil {
		return err
	}

	year, month, quarter := money.PeriodOf(s.now())
	_, err := tx.CreateTaxPayout(ctx, model.TaxPayoutRecord{
		UserID:     contract.OwnerID,
		Gross:      calc.OwnerActualReceive,
		Tax:        calc.OwnerActualTax,
		Net:        calc.OwnerActualReceive.Sub(calc.OwnerActualTax),
		Source:     model.PayoutSourceTerminationCompensation,
		ContractID: contract.ID,
		Year:       year,
		Month:      month,
		Quarter:    quarter,
	})
	return err
}

// persistOutcome writes the TaxRecord and ContractTermination pair and flips
// the contract to TERMINATED, all under the caller's transaction.
func (s *TerminationService) persistOutcome(
	ctx context.Context,
	tx Store,
	contract *model.Contract,
	calc termination.Calculation,
	input ExecuteInput,
	paymentID *uuid.UUID,
) (*model.TaxRecord, *model.ContractTermination, error) {
	record := model.TaxRecord{
		ContractID:  contract.ID,
		OriginalTax: calc.OriginalTax,
		ActualTax:   calc.ActualTax(),
		RefundedTax: calc.RefundAmount,
		Status:      model.TaxRecordStatusCompleted,
	}
	if calc.AfterCutoff {
		record.Status = model.TaxRecordStatusWaitingRefund
		record.RefundScheduledDate = calc.RefundScheduledDate
		recipient := contract.OwnerID
		if calc.RefundRecipient == model.TerminatorClient {
			recipient = contract.ClientID
		}
		record.RefundUserID = &recipient
	}
	savedRecord, err := tx.CreateTaxRecord(ctx, record)
	if err != nil {
		return nil, nil, err
	}

	terminationType := model.TerminationBeforeCutoff
	status := model.TerminationStatusCompleted
	if calc.AfterCutoff {
		terminationType = model.TerminationAfterCutoff
		status = model.TerminationStatusPartialCompleted
	}
	saved, err := tx.CreateTermination(ctx, model.ContractTermination{
		ContractID:         contract.ID,
		TerminatedBy:       calc.Terminator,
		TerminatorUserID:   input.Principal.UserID,
		Type:               terminationType,
		TotalAmount:        calc.TotalAmount,
		TotalTeamGross:     calc.TotalTeamGross,
		TeamTax:            calc.TeamTax,
		OwnerCompensation:  calc.OwnerCompensation,
		OwnerActualReceive: calc.OwnerActualReceive,
		ClientRefund:       calc.ClientRefund,
		TaxRecordID:        savedRecord.ID,
		PaymentID:          paymentID,
		Status:             status,
		Notes:              input.Notes,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.MarkContractTerminated(ctx, contract.ID); err != nil {
		return nil, nil, err
	}
	return savedRecord, saved, nil
}

func (s *TerminationService) teamPreview(ctx context.Context, calc termination.Calculation) ([]TeamMemberPreview, error) {
	team := make([]TeamMemberPreview, 0, len(calc.TeamShares))
	for _, share := range calc.TeamShares {
		member := TeamMemberPreview{
			UserID:      share.UserID,
			Gross:       share.Gross,
			Tax:         share.Tax,
			Net:         share.Net,
			Description: share.Description,
		}
		user, err := s.store.GetUser(ctx, share.UserID)
		if err == nil {
			member.FullName = user.FullName
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		team = append(team, member)
	}
	return team, nil
}

func (s *TerminationService) publishCompleted(ctx context.Context, terminated *model.ContractTermination) {
	err := s.publisher.TerminationCompleted(ctx, notify.TerminationCompletedEvent{
		ContractID: terminated.ContractID,
		Terminator: terminated.TerminatedBy,
		Status:     terminated.Status,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("contract_id", terminated.ContractID.String()).
			Msg("termination notification failed")
	}
}

func (s *TerminationService) mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func detectTerminator(contract *model.Contract, principal model.Principal) (model.TerminatorRole, error) {
	switch principal.UserID {
	case contract.OwnerID:
		return model.TerminatorOwner, nil
	case contract.ClientID:
		return model.TerminatorClient, nil
	}
	if principal.IsAdmin() {
		return "", fmt.Errorf("%w: admin cannot terminate on behalf of a party", ErrPermissionDenied)
	}
	return "", ErrPermissionDenied
}

func paymentConfirmed(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "PAID", "COMPLETED":
		return true
	}
	return false
}
