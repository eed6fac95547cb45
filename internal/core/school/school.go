// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package school manages the tenancy structure: schools and their classes,
sections, and subjects.

Schools are the tenant boundary and only the platform super admin may create
or remove them. The structure below a school (classes, their sections, and
subjects) is managed by that school's admin and is invisible to other tenants.
*/
package school

import "time"

// School is one tenant of the platform.
type School struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Class is a grade-level group within a school (e.g. "Grade 7").
type Class struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section subdivides a class (e.g. "7-A"). Its name is unique within the
// class.
type Section struct {
	ID      string `json:"id"`
	ClassID string `json:"class_id"`
	Name    string `json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subject is a course taught within a class, held by at most one teacher.
type Subject struct {
	ID        string  `json:"id"`
	ClassID   string  `json:"class_id"`
	Name      string  `json:"name"`
	TeacherID *string `json:"teacher_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	FieldName    = "name"
	FieldAddress = "address"
	FieldClassID = "class_id"
)
