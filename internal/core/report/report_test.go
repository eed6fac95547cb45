// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
	"github.com/taibuivan/sekola/internal/core/report"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

/*
TestSummarizeAttendance checks the per-status tallies, the division-safe
percentage, and the per-student grouping order.
*/
func TestSummarizeAttendance(t *testing.T) {
	t.Run("empty_set_is_all_zeroes", func(t *testing.T) {
		summary := report.SummarizeAttendance(nil)

		assert.Equal(t, 0, summary.TotalRecords)
		assert.Equal(t, "0.00%", summary.Percentage)
		assert.Empty(t, summary.ByStudent)
	})

	t.Run("mixed_statuses", func(t *testing.T) {
		records := []*attendance.Record{
			{StudentID: "student-1", Status: attendance.StatusPresent},
			{StudentID: "student-1", Status: attendance.StatusAbsent},
			{StudentID: "student-2", Status: attendance.StatusPresent},
			{StudentID: "student-1", Status: attendance.StatusLate},
			{StudentID: "student-2", Status: attendance.StatusPresent},
			{StudentID: "student-1", Status: attendance.StatusExcused},
		}

		summary := report.SummarizeAttendance(records)

		assert.Equal(t, 6, summary.TotalRecords)
		assert.Equal(t, 3, summary.Present)
		assert.Equal(t, 1, summary.Absent)
		assert.Equal(t, 1, summary.Late)
		assert.Equal(t, 1, summary.Excused)
		assert.Equal(t, "50.00%", summary.Percentage)

		require.Len(t, summary.ByStudent, 2)
		assert.Equal(t, "student-1", summary.ByStudent[0].StudentID)
		assert.Equal(t, "25.00%", summary.ByStudent[0].Percentage)
		assert.Equal(t, "student-2", summary.ByStudent[1].StudentID)
		assert.Equal(t, "100.00%", summary.ByStudent[1].Percentage)
	})

	t.Run("one_third_rounds_to_two_decimals", func(t *testing.T) {
		records := []*attendance.Record{
			{StudentID: "student-1", Status: attendance.StatusPresent},
			{StudentID: "student-1", Status: attendance.StatusAbsent},
			{StudentID: "student-1", Status: attendance.StatusAbsent},
		}

		summary := report.SummarizeAttendance(records)
		assert.Equal(t, "33.33%", summary.Percentage)
	})
}

/*
TestSummarizeFees checks the effective-status bucketing and the string-typed
monetary sums.
*/
func TestSummarizeFees(t *testing.T) {
	today := day(t, "2026-03-15")

	t.Run("empty_set", func(t *testing.T) {
		summary := report.SummarizeFees(nil, today)

		assert.Equal(t, 0, summary.TotalRecords)
		assert.Equal(t, "0.00", summary.TotalBilled)
		assert.Equal(t, "0.00", summary.Overdue.Total)
		assert.Empty(t, summary.ByStudent)
	})

	t.Run("pending_past_due_counts_as_overdue", func(t *testing.T) {
		fees := []*fee.Fee{
			{StudentID: "student-1", Amount: 100.50, DueDate: day(t, "2026-03-01"), Status: fee.StatusPending},
			{StudentID: "student-1", Amount: 200, DueDate: day(t, "2026-04-01"), Status: fee.StatusPending},
			{StudentID: "student-2", Amount: 49.50, DueDate: day(t, "2026-03-01"), Status: fee.StatusPaid},
		}

		summary := report.SummarizeFees(fees, today)

		assert.Equal(t, 3, summary.TotalRecords)
		assert.Equal(t, "350.00", summary.TotalBilled)
		assert.Equal(t, 1, summary.Overdue.Count)
		assert.Equal(t, "100.50", summary.Overdue.Total)
		assert.Equal(t, 1, summary.Pending.Count)
		assert.Equal(t, "200.00", summary.Pending.Total)
		assert.Equal(t, 1, summary.Paid.Count)
		assert.Equal(t, "49.50", summary.Paid.Total)

		require.Len(t, summary.ByStudent, 2)
		assert.Equal(t, "student-1", summary.ByStudent[0].StudentID)
		assert.Equal(t, "300.50", summary.ByStudent[0].TotalBilled)
		assert.Equal(t, "100.50", summary.ByStudent[0].Overdue.Total)
		assert.Equal(t, "student-2", summary.ByStudent[1].StudentID)
		assert.Equal(t, "49.50", summary.ByStudent[1].Paid.Total)
	})

	t.Run("paid_is_never_downgraded", func(t *testing.T) {
		fees := []*fee.Fee{
			{StudentID: "student-1", Amount: 75, DueDate: day(t, "2020-01-01"), Status: fee.StatusPaid},
		}

		summary := report.SummarizeFees(fees, today)
		assert.Equal(t, 1, summary.Paid.Count)
		assert.Equal(t, 0, summary.Overdue.Count)
	})
}

/*
TestSummarizeExams checks the marks statistics, the per-exam and per-student
groupings, and the empty-set normalization of the lowest mark.
*/
func TestSummarizeExams(t *testing.T) {
	t.Run("empty_set_normalizes_lowest_to_zero", func(t *testing.T) {
		summary := report.SummarizeExams(nil)

		assert.Equal(t, 0, summary.Count)
		assert.Zero(t, summary.Average)
		assert.Zero(t, summary.Highest)
		assert.Zero(t, summary.Lowest)
		assert.Empty(t, summary.ByExam)
		assert.Empty(t, summary.ByStudent)
	})

	t.Run("grouped_by_exam_and_student", func(t *testing.T) {
		results := []*exam.Result{
			{StudentID: "student-1", ExamName: "Midterm", Score: 80},
			{StudentID: "student-2", ExamName: "Midterm", Score: 60},
			{StudentID: "student-1", ExamName: "Final", Score: 90},
			{StudentID: "student-2", ExamName: "Final", Score: 71},
		}

		summary := report.SummarizeExams(results)

		assert.Equal(t, 4, summary.Count)
		assert.InDelta(t, 75.25, summary.Average, 0.001)
		assert.InDelta(t, 90, summary.Highest, 0.001)
		assert.InDelta(t, 60, summary.Lowest, 0.001)

		require.Len(t, summary.ByExam, 2)
		assert.Equal(t, "Midterm", summary.ByExam[0].ExamName)
		assert.InDelta(t, 70, summary.ByExam[0].Average, 0.001)
		assert.Equal(t, "Final", summary.ByExam[1].ExamName)
		assert.InDelta(t, 80.5, summary.ByExam[1].Average, 0.001)

		require.Len(t, summary.ByStudent, 2)
		assert.Equal(t, "student-1", summary.ByStudent[0].StudentID)
		assert.InDelta(t, 85, summary.ByStudent[0].Average, 0.001)
		assert.InDelta(t, 80, summary.ByStudent[0].Lowest, 0.001)
	})

	t.Run("single_result", func(t *testing.T) {
		summary := report.SummarizeExams([]*exam.Result{
			{StudentID: "student-1", ExamName: "Quiz 1", Score: 7.5},
		})

		assert.InDelta(t, 7.5, summary.Average, 0.001)
		assert.InDelta(t, 7.5, summary.Highest, 0.001)
		assert.InDelta(t, 7.5, summary.Lowest, 0.001)
	})
}
