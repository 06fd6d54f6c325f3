package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_InstallmentAmountRoundsUp(t *testing.T) {
	plan := &Plan{
		TotalAmount:      100_00,
		DownPayment:      10_00,
		NumberOfPayments: 7,
		Frequency:        FrequencyWeekly,
		StartDate:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:           PlanActive,
	}

	sum := plan.Summarize(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	// ceil(9000 / 7) = 1286
	assert.Equal(t, int64(1286), sum.InstallmentAmount)
	assert.Equal(t, int64(10_00), sum.TotalPaid)
	assert.Equal(t, int64(90_00), sum.RemainingBalance)
	assert.Equal(t, 0, sum.PaymentsMade)
	assert.Equal(t, 7, sum.PaymentsRemaining)
}

func TestSummarize_NextDueAdvancesPerPayment(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plan := &Plan{
		TotalAmount:      300_00,
		NumberOfPayments: 3,
		Frequency:        FrequencyMonthly,
		StartDate:        start,
		Status:           PlanActive,
		Payments: []Payment{
			{Amount: 100_00},
			{Amount: 100_00},
		},
	}

	sum := plan.Summarize(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2, sum.PaymentsMade)
	assert.Equal(t, 1, sum.PaymentsRemaining)
	if assert.NotNil(t, sum.NextDueDate) {
		assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), *sum.NextDueDate)
	}
	assert.False(t, sum.IsOverdue)
	assert.Equal(t, PlanActive, sum.EffectiveStatus)
}

func TestSummarize_OverdueIsDerivedNotStored(t *testing.T) {
	plan := &Plan{
		TotalAmount:      200_00,
		NumberOfPayments: 4,
		Frequency:        FrequencyBiweekly,
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:           PlanActive,
	}

	sum := plan.Summarize(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, sum.IsOverdue)
	assert.Equal(t, PlanOverdue, sum.EffectiveStatus)
	// The stored status never changes.
	assert.Equal(t, PlanActive, plan.Status)
}

func TestSummarize_CompletedPlanHasNoDueDate(t *testing.T) {
	plan := &Plan{
		TotalAmount:      100_00,
		NumberOfPayments: 2,
		Frequency:        FrequencyWeekly,
		StartDate:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:           PlanCompleted,
		Payments: []Payment{
			{Amount: 50_00},
			{Amount: 50_00},
		},
	}

	sum := plan.Summarize(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Nil(t, sum.NextDueDate)
	assert.False(t, sum.IsOverdue)
	assert.Equal(t, PlanCompleted, sum.EffectiveStatus)
	assert.Equal(t, int64(0), sum.RemainingBalance)
}

func TestSummarize_OverpaymentClampsRemainingToZero(t *testing.T) {
	plan := &Plan{
		TotalAmount:      100_00,
		NumberOfPayments: 2,
		Frequency:        FrequencyWeekly,
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:           PlanActive,
		Payments: []Payment{
			{Amount: 120_00},
		},
	}

	sum := plan.Summarize(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(120_00), sum.TotalPaid)
	assert.Equal(t, int64(0), sum.RemainingBalance)
}

func TestFrequencyNext(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, from.AddDate(0, 0, 7), FrequencyWeekly.Next(from))
	assert.Equal(t, from.AddDate(0, 0, 14), FrequencyBiweekly.Next(from))
	assert.Equal(t, from.AddDate(0, 1, 0), FrequencyMonthly.Next(from))
}

func TestFrequencyNext_Quarterly(t *testing.T) {
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, from.AddDate(0, 3, 0), FrequencyQuarterly.Next(from))
}

func TestFrequencySchedulable(t *testing.T) {
	assert.True(t, FrequencyWeekly.Schedulable())
	assert.True(t, FrequencyQuarterly.Schedulable())
	assert.False(t, FrequencyOther.Schedulable())
	assert.True(t, FrequencyOther.IsValid())
}

func TestSummarize_OtherFrequencyNeverOverdue(t *testing.T) {
	plan := &Plan{
		TotalAmount:      200_00,
		NumberOfPayments: 4,
		Frequency:        FrequencyOther,
		StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:           PlanActive,
	}

	// A year past the start date an ad-hoc plan still has no due date.
	sum := plan.Summarize(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Nil(t, sum.NextDueDate)
	assert.False(t, sum.IsOverdue)
	assert.Equal(t, PlanActive, sum.EffectiveStatus)
	assert.Equal(t, int64(200_00), sum.RemainingBalance)
}
