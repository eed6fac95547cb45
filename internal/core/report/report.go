// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package report aggregates attendance, fee, and exam records into summary
statistics, bounded by the viewer's authorization scope.

The aggregation functions are pure: they reduce an already-scoped record set
in one pass and never touch storage. Percentages and monetary sums leave this
package as pre-formatted two-decimal strings so every client renders the same
figures, and grouped output preserves the order in which each group first
appears in the input.
*/
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
)

// # Attendance

// AttendanceBreakdown counts records per status over one group.
type AttendanceBreakdown struct {
	TotalRecords int `json:"total_records"`
	Present      int `json:"present"`
	Absent       int `json:"absent"`
	Late         int `json:"late"`
	Excused      int `json:"excused"`

	// Percentage is present over total, e.g. "91.67%". An empty group
	// yields "0.00%", never a division by zero.
	Percentage string `json:"percentage"`
}

// StudentAttendance is one student's share of an attendance report.
type StudentAttendance struct {
	StudentID string `json:"student_id"`
	AttendanceBreakdown
}

// AttendanceReport is the overall breakdown plus a per-student grouping.
type AttendanceReport struct {
	AttendanceBreakdown
	ByStudent []StudentAttendance `json:"by_student"`
}

// SummarizeAttendance reduces a scoped record set to an attendance report.
func SummarizeAttendance(records []*attendance.Record) AttendanceReport {
	report := AttendanceReport{ByStudent: []StudentAttendance{}}
	index := map[string]int{}

	for _, r := range records {
		report.tally(r.Status)

		i, seen := index[r.StudentID]
		if !seen {
			i = len(report.ByStudent)
			index[r.StudentID] = i
			report.ByStudent = append(report.ByStudent, StudentAttendance{StudentID: r.StudentID})
		}
		report.ByStudent[i].tally(r.Status)
	}

	report.Percentage = percentOf(report.Present, report.TotalRecords)
	for i := range report.ByStudent {
		group := &report.ByStudent[i]
		group.Percentage = percentOf(group.Present, group.TotalRecords)
	}
	return report
}

func (b *AttendanceBreakdown) tally(status attendance.Status) {
	b.TotalRecords++
	switch status {
	case attendance.StatusPresent:
		b.Present++
	case attendance.StatusAbsent:
		b.Absent++
	case attendance.StatusLate:
		b.Late++
	case attendance.StatusExcused:
		b.Excused++
	}
}

// # Fees

// FeeBucket is the count and summed amount of one effective status.
type FeeBucket struct {
	Count int    `json:"count"`
	Total string `json:"total"`
}

// FeeBreakdown totals fees per effective status over one group.
type FeeBreakdown struct {
	TotalRecords int       `json:"total_records"`
	TotalBilled  string    `json:"total_billed"`
	Pending      FeeBucket `json:"pending"`
	Overdue      FeeBucket `json:"overdue"`
	Paid         FeeBucket `json:"paid"`
}

// StudentFees is one student's share of a fee report.
type StudentFees struct {
	StudentID string `json:"student_id"`
	FeeBreakdown
}

// FeeReport is the overall breakdown plus a per-student grouping.
type FeeReport struct {
	FeeBreakdown
	ByStudent []StudentFees `json:"by_student"`
}

// feeSums accumulates raw amounts before formatting.
type feeSums struct {
	records                               int
	billed, pending, overdue, paid        float64
	pendingCount, overdueCount, paidCount int
}

func (s *feeSums) add(f *fee.Fee, today time.Time) {
	s.records++
	s.billed += f.Amount

	switch fee.EffectiveStatus(f.Status, f.DueDate, today) {
	case fee.StatusPaid:
		s.paidCount++
		s.paid += f.Amount
	case fee.StatusOverdue:
		s.overdueCount++
		s.overdue += f.Amount
	default:
		s.pendingCount++
		s.pending += f.Amount
	}
}

func (s *feeSums) breakdown() FeeBreakdown {
	return FeeBreakdown{
		TotalRecords: s.records,
		TotalBilled:  money(s.billed),
		Pending:      FeeBucket{Count: s.pendingCount, Total: money(s.pending)},
		Overdue:      FeeBucket{Count: s.overdueCount, Total: money(s.overdue)},
		Paid:         FeeBucket{Count: s.paidCount, Total: money(s.paid)},
	}
}

// SummarizeFees reduces a scoped fee set to a fee report. Stored statuses are
// reconciled against today before bucketing, so a pending fee past its due
// date counts as overdue without any write.
func SummarizeFees(fees []*fee.Fee, today time.Time) FeeReport {
	overall := &feeSums{}
	index := map[string]int{}
	var students []string
	var perStudent []*feeSums

	for _, f := range fees {
		overall.add(f, today)

		i, seen := index[f.StudentID]
		if !seen {
			i = len(perStudent)
			index[f.StudentID] = i
			students = append(students, f.StudentID)
			perStudent = append(perStudent, &feeSums{})
		}
		perStudent[i].add(f, today)
	}

	report := FeeReport{FeeBreakdown: overall.breakdown(), ByStudent: []StudentFees{}}
	for i, sums := range perStudent {
		report.ByStudent = append(report.ByStudent, StudentFees{
			StudentID:    students[i],
			FeeBreakdown: sums.breakdown(),
		})
	}
	return report
}

// # Exams

// ScoreStats reduces one group of exam results to marks statistics.
type ScoreStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

// ExamGroup is the statistics of one named exam.
type ExamGroup struct {
	ExamName string `json:"exam_name"`
	ScoreStats
}

// StudentScores is one student's share of an exam report.
type StudentScores struct {
	StudentID string `json:"student_id"`
	ScoreStats
}

// ExamReport is the overall statistics plus per-exam and per-student groups.
type ExamReport struct {
	ScoreStats
	ByExam    []ExamGroup     `json:"by_exam"`
	ByStudent []StudentScores `json:"by_student"`
}

// scoreAcc accumulates marks. Lowest starts at +Inf and is normalized to 0
// when the group turns out empty.
type scoreAcc struct {
	count   int
	sum     float64
	highest float64
	lowest  float64
}

func newScoreAcc() *scoreAcc {
	return &scoreAcc{lowest: math.Inf(1)}
}

func (a *scoreAcc) add(score float64) {
	a.count++
	a.sum += score
	a.highest = math.Max(a.highest, score)
	a.lowest = math.Min(a.lowest, score)
}

func (a *scoreAcc) stats() ScoreStats {
	if a.count == 0 {
		return ScoreStats{}
	}
	return ScoreStats{
		Count:   a.count,
		Average: round2(a.sum / float64(a.count)),
		Highest: round2(a.highest),
		Lowest:  round2(a.lowest),
	}
}

// SummarizeExams reduces a scoped result set to an exam report.
func SummarizeExams(results []*exam.Result) ExamReport {
	overall := newScoreAcc()

	examIndex := map[string]int{}
	var examNames []string
	var perExam []*scoreAcc

	studentIndex := map[string]int{}
	var students []string
	var perStudent []*scoreAcc

	for _, r := range results {
		overall.add(r.Score)

		i, seen := examIndex[r.ExamName]
		if !seen {
			i = len(perExam)
			examIndex[r.ExamName] = i
			examNames = append(examNames, r.ExamName)
			perExam = append(perExam, newScoreAcc())
		}
		perExam[i].add(r.Score)

		j, seen := studentIndex[r.StudentID]
		if !seen {
			j = len(perStudent)
			studentIndex[r.StudentID] = j
			students = append(students, r.StudentID)
			perStudent = append(perStudent, newScoreAcc())
		}
		perStudent[j].add(r.Score)
	}

	report := ExamReport{
		ScoreStats: overall.stats(),
		ByExam:     []ExamGroup{},
		ByStudent:  []StudentScores{},
	}
	for i, acc := range perExam {
		report.ByExam = append(report.ByExam, ExamGroup{ExamName: examNames[i], ScoreStats: acc.stats()})
	}
	for i, acc := range perStudent {
		report.ByStudent = append(report.ByStudent, StudentScores{StudentID: students[i], ScoreStats: acc.stats()})
	}
	return report
}

// # Student summary

// StudentReport is the combined per-student summary backing the student
// detail report.
type StudentReport struct {
	StudentID   string              `json:"student_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Attendance  AttendanceBreakdown `json:"attendance"`
	Fees        FeeBreakdown        `json:"fees"`
	Exams       ScoreStats          `json:"exams"`
	ByExam      []ExamGroup         `json:"by_exam"`
}

func percentOf(part, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
