package post

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/photoflow/service/internal/storage"
)

// defaultFeedLimit caps how many posts ListRecent hands to the assembler.
const defaultFeedLimit = 100

// statsWindowDays is the range of the per-day series on the dashboard.
const statsWindowDays = 30

// Service coordinates the media store and the post repository.
//
// Consistency between the two is best effort, not transactional: a failed
// insert after a successful store triggers one compensating blob delete,
// and a failed blob delete never blocks the repository delete. Both gaps
// leave at worst an orphaned blob, never a post row without a blob.
type Service struct {
	repo  Repository
	stats StatsRepository
	store storage.MediaStore
}

// NewService creates a new post Service.
func NewService(repo Repository, stats StatsRepository, store storage.MediaStore) *Service {
	return &Service{repo: repo, stats: stats, store: store}
}

// Upload validates the file, stores the blob, and records the post.
//
// Validation is applied in order and short-circuits before any side effect:
// MIME type must be image/* or video/*, then size must not exceed 50 MiB.
func (s *Service) Upload(ctx context.Context, viewerID string, data []byte, declaredMIME, fileName, caption string) (*Post, error) {
	if viewerID == "" {
		return nil, ErrInvalidViewer
	}

	fileType, err := classifyMIME(declaredMIME)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrPayloadTooLarge, len(data), MaxUploadBytes)
	}

	obj, err := s.store.Store(ctx, data, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	p := &Post{
		OwnerID:  viewerID,
		Caption:  strings.TrimSpace(caption),
		URL:      obj.URL,
		FileID:   obj.FileID,
		FileType: fileType,
		FileName: fileName,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		// The blob is already stored; try to reclaim it so a failed upload
		// leaves no orphan. Cleanup failure is logged, never surfaced, to
		// avoid masking the insert error.
		if delErr := s.store.Delete(ctx, obj.FileID); delErr != nil {
			log.Printf("post: compensating delete of %q failed: %v", obj.FileID, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	return p, nil
}

// Delete removes a post owned by the viewer.
//
// The repository record is authoritative: if the blob delete fails, the
// inconsistency is logged and the post is removed from the feed anyway.
func (s *Service) Delete(ctx context.Context, viewerID, postID string) error {
	if viewerID == "" {
		return ErrInvalidViewer
	}

	p, err := s.repo.GetByID(ctx, postID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}

	if !isOwner(viewerID, p) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, p.FileID); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Printf("post: blob delete of %q failed, leaving orphan: %v", p.FileID, err)
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	return nil
}

// Feed returns the most recent posts annotated for the given viewer.
func (s *Service) Feed(ctx context.Context, viewerID string) ([]FeedItem, error) {
	posts, err := s.repo.ListRecent(ctx, defaultFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	return AssembleFeed(viewerID, posts), nil
}

// Stats returns the aggregate counts backing the analytics dashboard.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.stats.Stats(ctx, statsWindowDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	return st, nil
}

// classifyMIME maps a declared MIME type onto the binary image/video
// classification. No finer-grained format detection is done.
func classifyMIME(declared string) (FileType, error) {
	switch {
	case strings.HasPrefix(declared, "image/"):
		return FileTypeImage, nil
	case strings.HasPrefix(declared, "video/"):
		return FileTypeVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, declared)
	}
}
