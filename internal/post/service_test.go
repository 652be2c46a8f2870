package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoflow/service/internal/storage"
)

// fakeStore is an in-memory MediaStore that counts calls and can be
// told to fail.
type fakeStore struct {
	objects     map[string][]byte
	storeCalls  int
	deleteCalls int
	storeErr    error
	deleteErr   error
	seq         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Store(_ context.Context, data []byte, name string) (*storage.Object, error) {
	s.storeCalls++
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	s.seq++
	key := fmt.Sprintf("%d_%s", s.seq, name)
	s.objects[key] = bytes.Clone(data)
	return &storage.Object{URL: "https://cdn.test/" + key, FileID: key}, nil
}

func (s *fakeStore) Delete(_ context.Context, fileID string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.objects[fileID]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, fileID)
	return nil
}

// fakeRepo is an in-memory Repository that counts calls and can be told
// to fail inserts.
type fakeRepo struct {
	posts       map[string]*Post
	insertCalls int
	insertErr   error
	seq         int
	clock       time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		posts: map[string]*Post{},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeRepo) Insert(_ context.Context, p *Post) error {
	r.insertCalls++
	if r.insertErr != nil {
		return r.insertErr
	}
	r.seq++
	r.clock = r.clock.Add(time.Second)
	p.ID = fmt.Sprintf("post-%d", r.seq)
	p.CreatedAt = r.clock
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakeRepo) ListRecent(_ context.Context, limit int) ([]Post, error) {
	out := make([]Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) Stats(_ context.Context, days int) (*Stats, error) {
	s := &Stats{}
	for _, p := range r.posts {
		s.TotalPosts++
		switch p.FileType {
		case FileTypeImage:
			s.Images++
		case FileTypeVideo:
			s.Videos++
		}
	}
	return s, nil
}

func newTestService() (*Service, *fakeRepo, *fakeStore) {
	repo := newFakeRepo()
	store := newFakeStore()
	return NewService(repo, repo, store), repo, store
}

func TestUploadSuccess(t *testing.T) {
	svc, repo, store := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("png bytes"), "image/png", "cat.png", "  my cat  ")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.OwnerID)
	assert.Equal(t, FileTypeImage, p.FileType)
	assert.Equal(t, "cat.png", p.FileName)
	assert.Equal(t, "my cat", p.Caption, "caption is trimmed")
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.URL)
	assert.False(t, p.CreatedAt.IsZero())

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.URL, stored.URL)
	assert.Len(t, store.objects, 1)
}

func TestUploadVideoClassification(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("mp4 bytes"), "video/mp4", "clip.mp4", "")
	require.NoError(t, err)
	assert.Equal(t, FileTypeVideo, p.FileType)
}

func TestUploadUnsupportedMediaType(t *testing.T) {
	svc, repo, store := newTestService()

	_, err := svc.Upload(context.Background(), "u1", []byte("hello"), "text/plain", "notes.txt", "")
	require.ErrorIs(t, err, ErrUnsupportedMediaType)
	assert.Zero(t, store.storeCalls, "no store call before validation passes")
	assert.Zero(t, repo.insertCalls, "no repository call before validation passes")
}

func TestUploadPayloadTooLarge(t *testing.T) {
	svc, repo, store := newTestService()

	big := make([]byte, MaxUploadBytes+1)
	_, err := svc.Upload(context.Background(), "u1", big, "image/png", "huge.png", "")
	require.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Zero(t, store.storeCalls)
	assert.Zero(t, repo.insertCalls)
}

func TestUploadSizeLimitBoundary(t *testing.T) {
	svc, _, _ := newTestService()

	exact := make([]byte, MaxUploadBytes)
	_, err := svc.Upload(context.Background(), "u1", exact, "image/png", "exact.png", "")
	assert.NoError(t, err, "exactly 50 MiB is allowed")
}

func TestUploadStorageFailureLeavesNoPost(t *testing.T) {
	svc, repo, store := newTestService()
	store.storeErr = errors.New("connection refused")

	_, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, repo.insertCalls, "a failed store must never produce a post row")
}

func TestUploadInsertFailureCompensates(t *testing.T) {
	svc, repo, store := newTestService()
	repo.insertErr = errors.New("deadlock detected")

	_, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.ErrorIs(t, err, ErrRepositoryFailure)
	assert.Equal(t, 1, store.deleteCalls, "exactly one compensating delete")
	assert.Empty(t, store.objects, "the orphaned blob was reclaimed")
}

func TestUploadInsertAndCompensationBothFail(t *testing.T) {
	svc, repo, store := newTestService()
	repo.insertErr = errors.New("deadlock detected")
	store.deleteErr = errors.New("store is down")

	_, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.ErrorIs(t, err, ErrRepositoryFailure, "compensation failure never masks the insert error")
	assert.Equal(t, 1, store.deleteCalls)
}

func TestUploadRequiresViewer(t *testing.T) {
	svc, repo, store := newTestService()

	_, err := svc.Upload(context.Background(), "", []byte("png"), "image/png", "a.png", "")
	require.ErrorIs(t, err, ErrInvalidViewer)
	assert.Zero(t, store.storeCalls)
	assert.Zero(t, repo.insertCalls)
}

func TestDeleteSuccess(t *testing.T) {
	svc, repo, store := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", p.ID))

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.objects, "blob removed with the record")
}

func TestDeleteByNonOwner(t *testing.T) {
	svc, repo, _ := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "u2", p.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err, "post remains retrievable after a forbidden delete")
	assert.Equal(t, "u1", got.OwnerID)
}

func TestDeleteTwice(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", p.ID))
	err = svc.Delete(context.Background(), "u1", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownID(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), "u1", "no-such-post")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProceedsWhenBlobDeleteFails(t *testing.T) {
	svc, repo, store := newTestService()

	p, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
	require.NoError(t, err)

	store.deleteErr = errors.New("store is down")
	require.NoError(t, svc.Delete(context.Background(), "u1", p.ID),
		"repository consistency wins over storage cleanliness")

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRequiresViewer(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), "", "post-1")
	assert.ErrorIs(t, err, ErrInvalidViewer)
}

func TestFeedEndToEnd(t *testing.T) {
	svc, _, _ := newTestService()

	p1, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "x.png", "first")
	require.NoError(t, err)
	p2, err := svc.Upload(context.Background(), "u2", []byte("mp4"), "video/mp4", "y.mp4", "")
	require.NoError(t, err)

	items, err := svc.Feed(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, p2.ID, items[0].ID, "most recent first")
	assert.Equal(t, FileTypeVideo, items[0].FileType)
	assert.False(t, items[0].IsOwner)

	assert.Equal(t, p1.ID, items[1].ID)
	assert.Equal(t, FileTypeImage, items[1].FileType)
	assert.True(t, items[1].IsOwner)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		_, err := svc.Upload(context.Background(), "u1", []byte("png"), "image/png", "a.png", "")
		require.NoError(t, err)
	}
	_, err := svc.Upload(context.Background(), "u2", []byte("mp4"), "video/mp4", "b.mp4", "")
	require.NoError(t, err)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.TotalPosts)
	assert.Equal(t, int64(3), st.Images)
	assert.Equal(t, int64(1), st.Videos)
}
