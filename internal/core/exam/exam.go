// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package exam manages exam results: score entry by teaching staff and
// scoped reads for students and parents.
package exam

import "time"

// Result is one student's score in one exam.
type Result struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	StudentID string `json:"student_id"`
	SubjectID string `json:"subject_id"`

	ExamName string  `json:"exam_name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`

	// Date is the day the exam was held.
	Date time.Time `json:"date"`

	// RecordedBy is the user who entered the score.
	RecordedBy string `json:"recorded_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated result query.
type Filter struct {
	StudentID string
	SubjectID string
	ExamName  string
}

const (
	FieldStudentID = "student_id"
	FieldSubjectID = "subject_id"
	FieldExamName  = "exam_name"
	FieldScore     = "score"
	FieldMaxScore  = "max_score"
	FieldDate      = "date"
)
