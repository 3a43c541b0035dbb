package service

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"paperarchive/internal/domain"
	"paperarchive/internal/service/storage"
)

func TestWriteArchive(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() failed: %v", err)
	}

	files := []domain.ExamFile{
		{UUID: uuid.New(), StoragePath: "exams/1/a.pdf", CourseCode: "CS101", ExamKind: "midterm", Category: domain.SampleBest},
		{UUID: uuid.New(), StoragePath: "exams/1/b.pdf", CourseCode: "CS101", ExamKind: "final", Category: domain.SampleWorst},
		{UUID: uuid.New(), StoragePath: "exams/2/c.pdf", CourseCode: "MATH201", ExamKind: "midterm", Category: domain.SampleAverage},
	}
	for i, f := range files {
		if _, err := store.Save(ctx, f.StoragePath, strings.NewReader("pdf-"+string(rune('a'+i)))); err != nil {
			t.Fatalf("Save(%s) failed: %v", f.StoragePath, err)
		}
	}

	var buf bytes.Buffer
	if err := WriteArchive(ctx, store, files, &buf); err != nil {
		t.Fatalf("WriteArchive() failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() failed: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("archive has %d entries, want 3", len(zr.File))
	}

	want := map[string]string{
		"CS101/midterm_best.pdf":      "pdf-a",
		"CS101/final_worst.pdf":       "pdf-b",
		"MATH201/midterm_average.pdf": "pdf-c",
	}
	for _, entry := range zr.File {
		content, ok := want[entry.Name]
		if !ok {
			t.Errorf("unexpected archive entry %q", entry.Name)
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("Open(%s) failed: %v", entry.Name, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != content {
			t.Errorf("entry %s = %q, want %q", entry.Name, got, content)
		}
	}
}

func TestWriteArchiveMissingObject(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() failed: %v", err)
	}

	files := []domain.ExamFile{
		{UUID: uuid.New(), StoragePath: "exams/1/gone.pdf", CourseCode: "CS101", ExamKind: "midterm", Category: domain.SampleBest},
	}
	var buf bytes.Buffer
	if err := WriteArchive(ctx, store, files, &buf); err == nil {
		t.Fatal("WriteArchive() with a missing object returned no error")
	}
}
