package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"task-manager/internal/repository"
	"task-manager/internal/storage"
)

// DefaultUploadGrace is how old an unreferenced upload must be before Sweep deletes it.
// A picture is written before the user row points at it.
const DefaultUploadGrace = time.Hour

// UploadJanitor removes stored profile pictures that no user references any more.
type UploadJanitor struct {
	users  *repository.UserRepository
	images *storage.ImageStore
	grace  time.Duration
	now    func() time.Time
}

func NewUploadJanitor(users *repository.UserRepository, images *storage.ImageStore, grace time.Duration) *UploadJanitor {
	if grace < 0 {
		grace = 0
	}
	return &UploadJanitor{users: users, images: images, grace: grace, now: time.Now}
}

// Sweep deletes orphaned files older than the grace period and returns how many were removed.
func (j *UploadJanitor) Sweep(ctx context.Context) (int, error) {
	// List files before reading references so an upload finishing in between is still kept.
	files, err := j.images.List()
	if err != nil {
		return 0, fmt.Errorf("list upload dir: %w", err)
	}

	referenced, err := j.users.ProfilePictures(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profile pictures: %w", err)
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	cutoff := j.now().Add(-j.grace)
	removed := 0
	for _, file := range files {
		if _, ok := keep[file.Name]; ok {
			continue
		}
		if file.ModTime.After(cutoff) {
			continue
		}
		if err := j.images.Remove(file.Name); err != nil {
			log.Printf("[warn] sweep: remove %s: %v", file.Name, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[info] sweep removed %d orphaned upload(s)", removed)
	}
	return removed, nil
}

// Job adapts Sweep to a scheduler callback; each run gets its own timeout.
func (j *UploadJanitor) Job(timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			log.Printf("[warn] upload sweep failed: %v", err)
		}
	}
}
