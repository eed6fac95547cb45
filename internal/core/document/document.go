// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package document manages uploaded files attached to students: report
// cards, certificates, and similar paperwork. Content lives in object
// storage; only metadata is kept in the database.
package document

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is the stored metadata of one uploaded file.
type Document struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	StudentID string `json:"student_id"`

	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	// Key is the object-storage key; URL is the public address.
	Key string `json:"-"`
	URL string `json:"url"`

	UploadedBy string `json:"uploaded_by"`

	CreatedAt time.Time `json:"created_at"`
}

// MaxUploadSize bounds a single upload at 10 MiB.
const MaxUploadSize = 10 << 20

// allowedExtensions whitelists upload file types by extension.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ContentTypeFor returns the content type for an allowed file name, or false
// when the extension is not whitelisted.
func ContentTypeFor(fileName string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedExtensions[ext]
	return contentType, ok
}

const (
	FieldStudentID = "student_id"
	FieldFile      = "file"
)
