package domain

import (
	"errors"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	const maxBytes = 25 << 20

	tests := []struct {
		name     string
		filename string
		mimeType string
		size     int64
		wantErr  bool
	}{
		{name: "valid pdf", filename: "midterm.pdf", mimeType: "application/pdf", size: 1024},
		{name: "uppercase extension", filename: "FINAL.PDF", mimeType: "application/pdf", size: 1024},
		{name: "no content type", filename: "midterm.pdf", mimeType: "", size: 1024},
		{name: "empty filename", filename: "  ", mimeType: "application/pdf", size: 1024, wantErr: true},
		{name: "wrong extension", filename: "scan.docx", mimeType: "application/pdf", size: 1024, wantErr: true},
		{name: "wrong content type", filename: "scan.pdf", mimeType: "image/png", size: 1024, wantErr: true},
		{name: "empty file", filename: "scan.pdf", mimeType: "application/pdf", size: 0, wantErr: true},
		{name: "over the limit", filename: "scan.pdf", mimeType: "application/pdf", size: maxBytes + 1, wantErr: true},
		{name: "exactly at the limit", filename: "scan.pdf", mimeType: "application/pdf", size: maxBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.mimeType, tt.size, maxBytes)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ValidateUpload() error = %v, want %v", err, ErrValidation)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateUpload() unexpected error: %v", err)
			}
		})
	}
}
