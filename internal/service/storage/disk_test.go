package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() failed: %v", err)
	}
	return d
}

func TestSaveAndOpen(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	content := "%PDF-1.4 sample content"
	size, err := d.Save(ctx, "exams/1/sample.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("Save() size = %d, want %d", size, len(content))
	}

	rc, err := d.Open(ctx, "exams/1/sample.pdf")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if string(got) != content {
		t.Errorf("read back %q, want %q", got, content)
	}

	// No temp file may survive a completed save.
	entries, err := os.ReadDir(filepath.Join(d.DataDir(), "exams", "1"))
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	if _, err := d.Save(ctx, "exams/1/sample.pdf", strings.NewReader("old")); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if _, err := d.Save(ctx, "exams/1/sample.pdf", strings.NewReader("new")); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	rc, err := d.Open(ctx, "exams/1/sample.pdf")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "new" {
		t.Errorf("read back %q, want %q", got, "new")
	}
}

func TestOpenMissing(t *testing.T) {
	d := newTestDisk(t)
	if _, err := d.Open(context.Background(), "exams/9/missing.pdf"); err == nil {
		t.Fatal("Open() on missing object returned no error")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	if _, err := d.Save(ctx, "exams/1/sample.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := d.Remove(ctx, "exams/1/sample.pdf"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if d.Exists(ctx, "exams/1/sample.pdf") {
		t.Error("object still exists after Remove()")
	}
	// Removing again must be a no-op success.
	if err := d.Remove(ctx, "exams/1/sample.pdf"); err != nil {
		t.Fatalf("second Remove() failed: %v", err)
	}
}

func TestList(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	for _, path := range []string{"exams/1/a.pdf", "exams/2/b.pdf", "previews/1/a.jpg"} {
		if _, err := d.Save(ctx, path, strings.NewReader("x")); err != nil {
			t.Fatalf("Save(%s) failed: %v", path, err)
		}
	}

	keys, err := d.List(ctx, "exams/")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List(exams/) returned %d keys, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "exams/") {
			t.Errorf("key %q outside the requested prefix", k)
		}
	}

	// A prefix with no objects lists nothing, not an error.
	keys, err = d.List(ctx, "missing/")
	if err != nil {
		t.Fatalf("List(missing/) failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List(missing/) returned %v, want none", keys)
	}
}
