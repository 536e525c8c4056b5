package termination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/money"
)

var (
	beforeCutoff = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	afterCutoff  = time.Date(2026, time.March, 25, 9, 0, 0, 0, time.UTC)
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func fullContract(total int64, compensationPct int64, pit, vat int64) model.Contract {
	pct := dec(compensationPct)
	return model.Contract{
		ID:                     uuid.New(),
		OwnerID:                uuid.New(),
		ClientID:               uuid.New(),
		Title:                  "Album production",
		TotalAmount:            dec(total),
		PaymentMode:            model.PaymentModeFull,
		CompensationPercentage: &pct,
		PersonalIncomeTax:      dec(pit),
		ValueAddedTax:          dec(vat),
		Status:                 model.ContractStatusActive,
	}
}

func split(amount int64) model.TeamMoneySplit {
	return model.TeamMoneySplit{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Amount:      dec(amount),
		Description: "mixing",
		Status:      model.SplitStatusApproved,
	}
}

func assertEq(t *testing.T, want int64, got decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s = %s, want %d", label, got, want)
}

func TestCalculateClientBeforeCutoff(t *testing.T) {
	contract := fullContract(1000000, 20, 50000, 20000)
	calc := Calculate(Input{
		Contract:   contract,
		Splits:     []model.TeamMoneySplit{split(50000)},
		Terminator: model.TerminatorClient,
		Now:        beforeCutoff,
		Rules:      money.DefaultRules(),
	})

	assertEq(t, 1000000, calc.TotalAmount, "TotalAmount")
	assertEq(t, 200000, calc.OwnerCompensation, "OwnerCompensation")
	assertEq(t, 50000, calc.TotalTeamGross, "TotalTeamGross")
	assertEq(t, 3500, calc.TeamTax, "TeamTax")
	assertEq(t, 46500, calc.TeamNet, "TeamNet")
	assertEq(t, 150000, calc.OwnerActualReceive, "OwnerActualReceive")
	assertEq(t, 10500, calc.OwnerActualTax, "OwnerActualTax")
	assertEq(t, 139500, calc.OwnerFirstPayment, "OwnerFirstPayment")
	assertEq(t, 800000, calc.ClientRefund, "ClientRefund")
	assertEq(t, 800000, calc.ClientFirstPayment, "ClientFirstPayment")

	assert.False(t, calc.AfterCutoff)
	assert.True(t, calc.RefundAmount.IsZero())
	assert.Nil(t, calc.RefundScheduledDate)
	assert.Empty(t, calc.Warning)

	require.Len(t, calc.TeamShares, 1)
	assertEq(t, 3500, calc.TeamShares[0].Tax, "share tax")
	assertEq(t, 46500, calc.TeamShares[0].Net, "share net")
}

func TestCalculateClientSumInvariant(t *testing.T) {
	cases := []struct {
		name   string
		total  int64
		pct    int64
		splits []int64
	}{
		{"reference", 1000000, 20, []int64{50000}},
		{"no splits", 750000, 15, nil},
		{"many splits", 333333, 33, []int64{11111, 22222, 3333}},
		{"over-allocated", 100000, 10, []int64{50000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			splits := make([]model.TeamMoneySplit, 0, len(tc.splits))
			for _, amount := range tc.splits {
				splits = append(splits, split(amount))
			}
			calc := Calculate(Input{
				Contract:   fullContract(tc.total, tc.pct, 0, 0),
				Splits:     splits,
				Terminator: model.TerminatorClient,
				Now:        beforeCutoff,
				Rules:      money.DefaultRules(),
			})

			sum := calc.ClientRefund.Add(calc.OwnerActualReceive).Add(calc.TotalTeamGross)
			assert.True(t, sum.Equal(calc.TotalAmount),
				"refund %s + receive %s + team %s != total %s",
				calc.ClientRefund, calc.OwnerActualReceive, calc.TotalTeamGross, calc.TotalAmount)
		})
	}
}

func TestCalculateClientAfterCutoff(t *testing.T) {
	contract := fullContract(1000000, 20, 50000, 20000)
	calc := Calculate(Input{
		Contract:   contract,
		Splits:     []model.TeamMoneySplit{split(50000)},
		Terminator: model.TerminatorClient,
		Now:        afterCutoff,
		Rules:      money.DefaultRules(),
	})

	assert.True(t, calc.AfterCutoff)
	// ownerOriginalTax = 70000 - 3500
	assertEq(t, 66500, calc.OwnerOriginalTax, "OwnerOriginalTax")
	// phase 1 withholds the originally-declared tax
	assertEq(t, 83500, calc.OwnerFirstPayment, "OwnerFirstPayment")
	// phase 2 refunds original minus actually owed
	assertEq(t, 56000, calc.RefundAmount, "RefundAmount")
	assert.Equal(t, model.TerminatorOwner, calc.RefundRecipient)

	require.NotNil(t, calc.RefundScheduledDate)
	assert.Equal(t, time.April, calc.RefundScheduledDate.Month())
	assert.Equal(t, 20, calc.RefundScheduledDate.Day())

	// Across both phases the owner still nets receive minus actual tax.
	bothPhases := calc.OwnerFirstPayment.Add(calc.RefundAmount)
	assert.True(t, bothPhases.Equal(calc.OwnerActualReceive.Sub(calc.OwnerActualTax)))
}

func TestCalculateOwnerInitiated(t *testing.T) {
	contract := fullContract(1000000, 20, 50000, 20000)

	t.Run("before cutoff", func(t *testing.T) {
		calc := Calculate(Input{
			Contract:   contract,
			Splits:     []model.TeamMoneySplit{split(50000)},
			Terminator: model.TerminatorOwner,
			Now:        beforeCutoff,
			Rules:      money.DefaultRules(),
		})

		assert.True(t, calc.OwnerActualReceive.IsZero())
		assert.True(t, calc.OwnerFirstPayment.IsZero())
		assertEq(t, 1000000, calc.ClientRefund, "ClientRefund")
		assertEq(t, 1000000, calc.ClientFirstPayment, "ClientFirstPayment")
		assert.True(t, calc.RefundAmount.IsZero())
		// The owner funds the team cut personally.
		assertEq(t, 50000, calc.TotalTeamGross, "TotalTeamGross")
	})

	t.Run("after cutoff stages the full refund", func(t *testing.T) {
		calc := Calculate(Input{
			Contract:   contract,
			Splits:     []model.TeamMoneySplit{split(50000)},
			Terminator: model.TerminatorOwner,
			Now:        afterCutoff,
			Rules:      money.DefaultRules(),
		})

		assertEq(t, 1000000, calc.ClientRefund, "ClientRefund")
		assertEq(t, 930000, calc.ClientFirstPayment, "ClientFirstPayment")
		assertEq(t, 70000, calc.RefundAmount, "RefundAmount")
		assert.Equal(t, model.TerminatorClient, calc.RefundRecipient)
		require.NotNil(t, calc.RefundScheduledDate)

		// Both phases together hand back the full amount.
		total := calc.ClientFirstPayment.Add(calc.RefundAmount)
		assert.True(t, total.Equal(calc.TotalAmount))
	})
}

func TestCalculateNegativeOwnerReceiveNotClamped(t *testing.T) {
	// Team allocations exceed the 10% compensation pool.
	contract := fullContract(100000, 10, 0, 0)
	calc := Calculate(Input{
		Contract:   contract,
		Splits:     []model.TeamMoneySplit{split(50000)},
		Terminator: model.TerminatorClient,
		Now:        beforeCutoff,
		Rules:      money.DefaultRules(),
	})

	assertEq(t, -40000, calc.OwnerActualReceive, "OwnerActualReceive")
	assert.NotEmpty(t, calc.Warning)

	sum := calc.ClientRefund.Add(calc.OwnerActualReceive).Add(calc.TotalTeamGross)
	assert.True(t, sum.Equal(calc.TotalAmount))
}

func TestCalculatePerMilestoneScope(t *testing.T) {
	contract := model.Contract{
		ID:          uuid.New(),
		TotalAmount: dec(900000), // ignored for per-milestone scope
		PaymentMode: model.PaymentModePerMilestone,
		CompensationPercentage: func() *decimal.Decimal {
			pct := dec(50)
			return &pct
		}(),
	}
	milestones := []model.Milestone{
		{ID: uuid.New(), Amount: dec(100000), PersonalIncomeTax: dec(5000), ValueAddedTax: dec(2000), Status: model.MilestoneStatusInProgress},
		{ID: uuid.New(), Amount: dec(200000), PersonalIncomeTax: dec(10000), ValueAddedTax: dec(4000), Status: model.MilestoneStatusInProgress},
	}

	calc := Calculate(Input{
		Contract:   contract,
		Milestones: milestones,
		Splits:     []model.TeamMoneySplit{split(30000)},
		Terminator: model.TerminatorClient,
		Now:        beforeCutoff,
		Rules:      money.DefaultRules(),
	})

	assertEq(t, 300000, calc.TotalAmount, "TotalAmount")
	assertEq(t, 21000, calc.OriginalTax, "OriginalTax")
	assertEq(t, 150000, calc.OwnerCompensation, "OwnerCompensation")
}

func TestCalculatePerMilestoneEmptyScope(t *testing.T) {
	contract := model.Contract{
		ID:          uuid.New(),
		TotalAmount: dec(500000),
		PaymentMode: model.PaymentModePerMilestone,
	}

	for _, terminator := range []model.TerminatorRole{model.TerminatorClient, model.TerminatorOwner} {
		calc := Calculate(Input{
			Contract:   contract,
			Terminator: terminator,
			Now:        beforeCutoff,
			Rules:      money.DefaultRules(),
		})

		assert.True(t, calc.TotalAmount.IsZero(), "%s total", terminator)
		assert.True(t, calc.TotalTeamGross.IsZero(), "%s team", terminator)
		assert.True(t, calc.OwnerCompensation.IsZero(), "%s compensation", terminator)
		assert.True(t, calc.ClientRefund.IsZero(), "%s refund", terminator)
		assert.Empty(t, calc.Warning)
	}
}

func TestCalculateNilCompensationPercentage(t *testing.T) {
	contract := model.Contract{
		ID:          uuid.New(),
		TotalAmount: dec(100000),
		PaymentMode: model.PaymentModeFull,
	}

	calc := Calculate(Input{
		Contract:   contract,
		Terminator: model.TerminatorClient,
		Now:        beforeCutoff,
		Rules:      money.DefaultRules(),
	})

	assert.True(t, calc.OwnerCompensation.IsZero())
	assertEq(t, 100000, calc.ClientRefund, "ClientRefund")
}

func TestCalculateConfigurableRules(t *testing.T) {
	rules := money.Rules{TaxRatePercent: dec(10), CutoffDay: 15}
	calc := Calculate(Input{
		Contract:   fullContract(100000, 20, 0, 0),
		Splits:     []model.TeamMoneySplit{split(10000)},
		Terminator: model.TerminatorClient,
		Now:        time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		Rules:      rules,
	})

	assert.False(t, calc.AfterCutoff)
	assertEq(t, 1000, calc.TeamTax, "TeamTax at 10%")
	assertEq(t, 9000, calc.TeamNet, "TeamNet at 10%")
}
