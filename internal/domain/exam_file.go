package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SampleCategory string

const (
	SampleBest    SampleCategory = "best"
	SampleAverage SampleCategory = "average"
	SampleWorst   SampleCategory = "worst"
)

func ValidSampleCategory(c SampleCategory) bool {
	switch c {
	case SampleBest, SampleAverage, SampleWorst:
		return true
	}
	return false
}

// ExamFile is the metadata record of one uploaded sample exam PDF. The bytes
// live in the file store under StoragePath.
type ExamFile struct {
	UUID        uuid.UUID `json:"uuid" db:"uuid"`
	ExamID      int64     `json:"exam_id" db:"exam_id"`
	Category    SampleCategory `json:"category" db:"category"`
	Name        string    `json:"name" db:"name"`
	StoragePath string    `json:"-" db:"storage_path"`
	MIMEType    string    `json:"mime_type" db:"mime_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	UploadedBy  int64     `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Populated via JOIN for display and deep links
	CourseID   int64  `json:"course_id,omitempty" db:"course_id"`
	CourseCode string `json:"course_code,omitempty" db:"course_code"`
	ExamKind   string `json:"exam_kind,omitempty" db:"exam_kind"`
}

const pdfMIMEType = "application/pdf"

// ValidateUpload checks that an upload is an acceptable sample PDF.
func ValidateUpload(filename, mimeType string, sizeBytes, maxBytes int64) error {
	if strings.TrimSpace(filename) == "" {
		return ValidationError("filename is required")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return ValidationError("only PDF files are accepted")
	}
	if mimeType != "" && mimeType != pdfMIMEType {
		return ValidationError("unexpected content type %q, want %s", mimeType, pdfMIMEType)
	}
	if sizeBytes <= 0 {
		return ValidationError("file is empty")
	}
	if maxBytes > 0 && sizeBytes > maxBytes {
		return ValidationError("file exceeds the %d byte upload limit", maxBytes)
	}
	return nil
}
