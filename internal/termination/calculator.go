// Package termination computes the monetary outcome of a contract
// termination. Calculate is a pure function over flat snapshots; it never
// touches storage and never mutates its inputs.
package termination

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/money"
)

// Input is the read-only snapshot a calculation runs over. For PER_MILESTONE
// contracts Milestones must already be filtered to IN_PROGRESS and Splits to
// the approved splits of those milestones; for FULL contracts Splits are the
// approved splits of the whole contract and Milestones are ignored.
type Input struct {
	Contract   model.Contract
	Milestones []model.Milestone
	Splits     []model.TeamMoneySplit
	Terminator model.TerminatorRole
	Now        time.Time
	Rules      money.Rules
}

// TeamShare is one collaborator's cut of the termination compensation.
type TeamShare struct {
	UserID      uuid.UUID
	MilestoneID *uuid.UUID
	Gross       decimal.Decimal
	Tax         decimal.Decimal
	Net         decimal.Decimal
	Description string
}

// Calculation is the single source of truth for one termination request.
// Invariants: ClientRefund + OwnerActualReceive + TotalTeamGross ==
// TotalAmount when the client terminates; ClientRefund == TotalAmount when
// the owner terminates.
type Calculation struct {
	Terminator  model.TerminatorRole
	TotalAmount decimal.Decimal
	OriginalTax decimal.Decimal

	TotalTeamGross decimal.Decimal
	TeamTax        decimal.Decimal
	TeamNet        decimal.Decimal
	TeamShares     []TeamShare

	OwnerCompensation  decimal.Decimal
	OwnerActualReceive decimal.Decimal
	OwnerOriginalTax   decimal.Decimal
	OwnerActualTax     decimal.Decimal
	OwnerFirstPayment  decimal.Decimal

	ClientRefund       decimal.Decimal
	ClientFirstPayment decimal.Decimal

	AfterCutoff         bool
	RefundAmount        decimal.Decimal
	RefundRecipient     model.TerminatorRole
	RefundScheduledDate *time.Time

	Warning string
}

// ActualTax is the tax actually owed on the termination settlement: the
// withholding on the team's cut plus, for client-initiated terminations, the
// withholding on the owner's actual receive.
func (c Calculation) ActualTax() decimal.Decimal {
	return c.TeamTax.Add(c.OwnerActualTax)
}

// Calculate produces the full monetary split for a termination event.
func Calculate(in Input) Calculation {
	calc := Calculation{
		Terminator:      in.Terminator,
		RefundRecipient: in.Terminator,
		AfterCutoff:     in.Rules.AfterCutoff(in.Now),
	}

	// Scope: the whole contract for FULL mode, the in-progress milestones
	// otherwise. A per-milestone contract with nothing in progress settles
	// at zero.
	switch in.Contract.PaymentMode {
	case model.PaymentModePerMilestone:
		calc.TotalAmount = decimal.Zero
		calc.OriginalTax = decimal.Zero
		for _, ms := range in.Milestones {
			calc.TotalAmount = calc.TotalAmount.Add(ms.Amount)
			calc.OriginalTax = calc.OriginalTax.Add(ms.OriginalTax())
		}
	default:
		calc.TotalAmount = in.Contract.TotalAmount
		calc.OriginalTax = in.Contract.OriginalTax()
	}

	calc.TotalTeamGross = decimal.Zero
	for _, split := range in.Splits {
		tax := in.Rules.Tax(split.Amount)
		calc.TeamShares = append(calc.TeamShares, TeamShare{
			UserID:      split.UserID,
			MilestoneID: split.MilestoneID,
			Gross:       split.Amount,
			Tax:         tax,
			Net:         split.Amount.Sub(tax),
			Description: split.Description,
		})
		calc.TotalTeamGross = calc.TotalTeamGross.Add(split.Amount)
	}
	calc.TeamTax = in.Rules.Tax(calc.TotalTeamGross)
	calc.TeamNet = calc.TotalTeamGross.Sub(calc.TeamTax)

	calc.OwnerCompensation = money.PercentOf(calc.TotalAmount, in.Contract.CompensationPct())
	calc.OwnerOriginalTax = calc.OriginalTax.Sub(calc.TeamTax)

	if in.Terminator == model.TerminatorOwner {
		calculateOwnerInitiated(&calc, in)
	} else {
		calculateClientInitiated(&calc, in)
	}

	if calc.OwnerActualReceive.IsNegative() {
		calc.Warning = "approved team allocations exceed the owner compensation pool; owner settlement is negative"
	}
	return calc
}

// calculateClientInitiated: the owner keeps compensation minus the team's
// cut, the client keeps the rest. After the cutoff the owner's settlement is
// staged: phase one withholds the originally-declared tax, phase two refunds
// the difference once the true liability on the reduced amount is known.
func calculateClientInitiated(calc *Calculation, in Input) {
	calc.OwnerActualReceive = calc.OwnerCompensation.Sub(calc.TotalTeamGross)
	calc.OwnerActualTax = in.Rules.Tax(calc.OwnerActualReceive)

	calc.ClientRefund = calc.TotalAmount.Sub(calc.OwnerCompensation)
	calc.ClientFirstPayment = calc.ClientRefund

	if calc.AfterCutoff {
		calc.OwnerFirstPayment = calc.OwnerActualReceive.Sub(calc.OwnerOriginalTax)
		calc.RefundAmount = calc.OwnerOriginalTax.Sub(calc.OwnerActualTax)
		calc.RefundRecipient = model.TerminatorOwner
		date := in.Rules.RefundDate(in.Now)
		calc.RefundScheduledDate = &date
	} else {
		calc.OwnerFirstPayment = calc.OwnerActualReceive.Sub(calc.OwnerActualTax)
		calc.RefundAmount = decimal.Zero
	}
}

// calculateOwnerInitiated: the owner forfeits compensation and personally
// funds the team's cut through an external payment, so the client is entitled
// to the full amount: in one payment before the cutoff, in two after it.
func calculateOwnerInitiated(calc *Calculation, in Input) {
	calc.OwnerActualReceive = decimal.Zero
	calc.OwnerActualTax = decimal.Zero
	calc.OwnerFirstPayment = decimal.Zero

	calc.ClientRefund = calc.TotalAmount
	if calc.AfterCutoff {
		calc.ClientFirstPayment = calc.TotalAmount.Sub(calc.OriginalTax)
		calc.RefundAmount = calc.OriginalTax
		calc.RefundRecipient = model.TerminatorClient
		date := in.Rules.RefundDate(in.Now)
		calc.RefundScheduledDate = &date
	} else {
		calc.ClientFirstPayment = calc.TotalAmount
		calc.RefundAmount = decimal.Zero
	}
}
