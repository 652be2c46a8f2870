package post

import "time"

// FeedItem is the viewer-annotated rendering of a single post.
type FeedItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	Caption   string    `json:"caption"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsOwner   bool      `json:"is_owner"`
}

// AssembleFeed turns repository post records into view-ready feed items.
// The input order is preserved exactly; the repository is responsible for
// sorting (most recent first) and for capping the sequence length.
//
// An empty viewerID is treated as an anonymous viewer: every item gets
// is_owner == false. It never errors.
func AssembleFeed(viewerID string, posts []Post) []FeedItem {
	items := make([]FeedItem, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		items = append(items, FeedItem{
			ID:        p.ID,
			URL:       p.URL,
			FileType:  p.FileType,
			Caption:   p.Caption,
			Email:     p.OwnerEmail,
			CreatedAt: p.CreatedAt,
			IsOwner:   isOwner(viewerID, p),
		})
	}
	return items
}
