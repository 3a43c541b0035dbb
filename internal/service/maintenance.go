package service

import (
	"context"
	"log"
	"strings"

	"paperarchive/internal/repository"
	"paperarchive/internal/service/storage"
)

// Sweeper reconciles the file store against the metadata tables. The approve
// path deletes metadata even when the physical removal fails, so unreferenced
// bytes can accumulate; the sweep is the compensating control.
type Sweeper struct {
	fileRepo *repository.ExamFileRepository
	store    storage.Store
}

func NewSweeper(fileRepo *repository.ExamFileRepository, store storage.Store) *Sweeper {
	return &Sweeper{fileRepo: fileRepo, store: store}
}

// Sweep removes stored objects that no metadata row references: orphaned
// sample PDFs under exams/ and stale thumbnails under previews/.
func (s *Sweeper) Sweep(ctx context.Context) error {
	paths, err := s.fileRepo.ListStoragePaths(ctx)
	if err != nil {
		return err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[p] = true
	}

	removed := 0
	for _, prefix := range []string{"exams/", "previews/"} {
		keys, err := s.store.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if referenced[sourcePathFor(key)] {
				continue
			}
			if err := s.store.Remove(ctx, key); err != nil {
				log.Printf("warning: sweep failed to remove %s: %v", key, err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		log.Printf("sweep removed %d orphaned objects", removed)
	}
	return nil
}

// sourcePathFor maps a stored key back to the metadata path that keeps it
// alive. Sample PDFs map to themselves; a preview maps to its source PDF.
func sourcePathFor(key string) string {
	if rest, ok := strings.CutPrefix(key, "previews/"); ok {
		return "exams/" + strings.TrimSuffix(rest, ".jpg") + ".pdf"
	}
	return key
}
