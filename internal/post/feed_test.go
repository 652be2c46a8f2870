package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleFeedPreservesOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []Post{
		{ID: "p3", OwnerID: "u1", URL: "https://cdn/c.png", FileType: FileTypeImage, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p2", OwnerID: "u2", URL: "https://cdn/b.mp4", FileType: FileTypeVideo, CreatedAt: base.Add(time.Hour)},
		{ID: "p1", OwnerID: "u1", URL: "https://cdn/a.png", FileType: FileTypeImage, CreatedAt: base},
	}

	items := AssembleFeed("u1", posts)
	require.Len(t, items, 3)
	assert.Equal(t, "p3", items[0].ID)
	assert.Equal(t, "p2", items[1].ID)
	assert.Equal(t, "p1", items[2].ID)
}

func TestAssembleFeedOwnership(t *testing.T) {
	p := Post{ID: "p1", OwnerID: "u1", URL: "https://cdn/a.png", FileType: FileTypeImage}

	owner := AssembleFeed("u1", []Post{p})
	require.Len(t, owner, 1)
	assert.True(t, owner[0].IsOwner)

	other := AssembleFeed("u2", []Post{p})
	require.Len(t, other, 1)
	assert.False(t, other[0].IsOwner)
}

func TestAssembleFeedAnonymousViewer(t *testing.T) {
	posts := []Post{
		{ID: "p1", OwnerID: "u1", URL: "https://cdn/a.png", FileType: FileTypeImage},
		{ID: "p2", OwnerID: "u2", URL: "https://cdn/b.mp4", FileType: FileTypeVideo},
	}

	items := AssembleFeed("", posts)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.False(t, it.IsOwner)
	}
}

func TestAssembleFeedItemFields(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Post{
		ID:         "p1",
		OwnerID:    "u1",
		OwnerEmail: "alice@example.com",
		Caption:    "sunset",
		URL:        "https://cdn/a.png",
		FileType:   FileTypeImage,
		FileName:   "a.png",
		CreatedAt:  created,
	}

	items := AssembleFeed("u1", []Post{p})
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "p1", it.ID)
	assert.Equal(t, "https://cdn/a.png", it.URL)
	assert.Equal(t, FileTypeImage, it.FileType)
	assert.Equal(t, "sunset", it.Caption)
	assert.Equal(t, "alice@example.com", it.Email)
	assert.Equal(t, created, it.CreatedAt)
	assert.True(t, it.IsOwner)
}

func TestAssembleFeedEmptyInput(t *testing.T) {
	items := AssembleFeed("u1", nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

// Two users, one image and one newer video: feed order and ownership
// annotations must line up with the repository order.
func TestAssembleFeedTwoUserScenario(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	post1 := Post{ID: "p1", OwnerID: "u1", URL: "https://cdn/x.png", FileType: FileTypeImage, CreatedAt: t1}
	post2 := Post{ID: "p2", OwnerID: "u2", URL: "https://cdn/y.mp4", FileType: FileTypeVideo, CreatedAt: t2}

	items := AssembleFeed("u1", []Post{post2, post1})
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ID)
	assert.False(t, items[0].IsOwner)
	assert.Equal(t, "p1", items[1].ID)
	assert.True(t, items[1].IsOwner)
}
