package post

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photoflow/service/internal/middleware"
	"github.com/photoflow/service/internal/response"
)

// Handler holds HTTP handlers for post endpoints.
type Handler struct {
	svc *Service
	// maxBody bounds the multipart body read before the service-level
	// size policy runs, so a hostile upload cannot buffer unbounded memory.
	maxBody int64
}

// NewHandler creates a new post Handler.
func NewHandler(svc *Service, maxBody int64) *Handler {
	return &Handler{svc: svc, maxBody: maxBody}
}

type feedData struct {
	Posts []FeedItem `json:"posts"`
}

// Upload godoc
//
//	@Summary		Upload media
//	@Description	Upload an image or video (multipart field "file", optional "caption"). Max 50 MiB.
//	@Tags			posts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Media file"
//	@Param			caption	formData	string	false	"Caption"
//	@Success		201		{object}	response.Envelope{data=Post}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		415		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())
	if viewerID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	// Allow some slack over the policy limit so an oversized file reaches
	// the service and fails with the proper PayloadTooLarge kind instead
	// of a generic body-read error.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody*2)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, "upload exceeds size limit")
			return
		}
		response.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read file")
		return
	}

	declaredMIME := header.Header.Get("Content-Type")
	if declaredMIME == "" {
		declaredMIME = http.DetectContentType(data)
	}
	caption := r.FormValue("caption")

	p, err := h.svc.Upload(r.Context(), viewerID, data, declaredMIME, header.Filename, caption)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, p)
}

// Feed godoc
//
//	@Summary		Get feed
//	@Description	Returns all recent posts, most recent first, annotated with is_owner for the caller.
//	@Tags			posts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=feedData}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())

	items, err := h.svc.Feed(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, feedData{Posts: items})
}

// DeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Deletes a post owned by the caller, removing both the record and the stored media.
//	@Tags			posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())
	if viewerID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	postID := chi.URLParam(r, "id")
	if postID == "" {
		response.BadRequest(w, "post id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), viewerID, postID); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}

// GetStats godoc
//
//	@Summary		Post statistics
//	@Description	Aggregate post counts for the analytics dashboard.
//	@Tags			stats
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Stats}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, st)
}

// writeError maps the post error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		response.UnsupportedMediaType(w, "only image/* and video/* uploads are accepted")
	case errors.Is(err, ErrPayloadTooLarge):
		response.PayloadTooLarge(w, "upload exceeds the 50 MiB limit")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "post not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "you do not own this post")
	case errors.Is(err, ErrInvalidViewer):
		response.Unauthorized(w, "unauthorized")
	default:
		response.InternalError(w)
	}
}
