// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sekola/internal/core/fee"
)

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

/*
TestEffectiveStatus covers the derivation table: PAID is terminal, a past due
date yields OVERDUE, everything else stays PENDING.
*/
func TestEffectiveStatus(t *testing.T) {
	today := day("2026-03-15")

	tests := []struct {
		name    string
		stored  fee.Status
		dueDate time.Time
		want    fee.Status
	}{
		{"paid_stays_paid_past_due", fee.StatusPaid, day("2020-01-01"), fee.StatusPaid},
		{"paid_stays_paid_future_due", fee.StatusPaid, day("2030-01-01"), fee.StatusPaid},
		{"pending_past_due_is_overdue", fee.StatusPending, day("2026-03-14"), fee.StatusOverdue},
		{"pending_due_today_is_pending", fee.StatusPending, day("2026-03-15"), fee.StatusPending},
		{"pending_future_due_is_pending", fee.StatusPending, day("2026-03-16"), fee.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fee.EffectiveStatus(tt.stored, tt.dueDate, today))
		})
	}
}

/*
TestEffectiveStatus_DayGranularity verifies that time-of-day never influences
the comparison: a fee due yesterday at 23:59 is overdue at 00:01 today.
*/
func TestEffectiveStatus_DayGranularity(t *testing.T) {
	dueDate := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, fee.StatusOverdue, fee.EffectiveStatus(fee.StatusPending, dueDate, today))

	// Same calendar day, different times: still pending.
	sameDay := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, fee.StatusPending, fee.EffectiveStatus(fee.StatusPending, dueDate, sameDay))
}

/*
TestEffectiveStatus_Pure verifies idempotence: repeated calls with the same
inputs yield the same output, and reconciling a loaded record never changes
anything but the in-memory status field.
*/
func TestEffectiveStatus_Pure(t *testing.T) {
	dueDate := day("2026-01-01")
	today := day("2026-02-01")

	first := fee.EffectiveStatus(fee.StatusPending, dueDate, today)
	second := fee.EffectiveStatus(fee.StatusPending, dueDate, today)
	assert.Equal(t, first, second)

	record := &fee.Fee{Status: fee.StatusPending, DueDate: dueDate, Amount: 100}
	record.Reconcile(today)
	assert.Equal(t, fee.StatusOverdue, record.Status)
	assert.Equal(t, float64(100), record.Amount)
}
