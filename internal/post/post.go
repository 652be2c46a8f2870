// Package post implements the post lifecycle: upload, feed assembly, and deletion.
package post

import (
	"errors"
	"time"
)

// FileType classifies the stored media.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// MaxUploadBytes is the upload size policy: 50 MiB.
const MaxUploadBytes = 50 * 1024 * 1024

// Post is one unit of shared media plus metadata.
// Every field except Caption is immutable after creation.
type Post struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	OwnerEmail string    `json:"ownerEmail"`
	Caption    string    `json:"caption"`
	URL        string    `json:"url"`
	FileID     string    `json:"-"`
	FileType   FileType  `json:"fileType"`
	FileName   string    `json:"fileName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrUnsupportedMediaType is returned when the declared MIME type is neither image nor video.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrPayloadTooLarge is returned when the upload exceeds the size policy.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrStorageFailure is returned when the media store rejects an operation.
var ErrStorageFailure = errors.New("media storage failure")

// ErrRepositoryFailure is returned when the post repository rejects an operation.
var ErrRepositoryFailure = errors.New("post repository failure")

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// ErrForbidden is returned when the viewer does not own the post.
var ErrForbidden = errors.New("not the post owner")

// ErrInvalidViewer is returned when an operation requires a viewer identity and none was supplied.
var ErrInvalidViewer = errors.New("invalid viewer")

// isOwner is the single authorization rule: a viewer may act on a post
// only when they own it.
func isOwner(viewerID string, p *Post) bool {
	return viewerID != "" && p.OwnerID == viewerID
}
