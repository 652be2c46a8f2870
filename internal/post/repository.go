package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts post persistence so the coordinators can be tested
// without Postgres.
type Repository interface {
	Insert(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]Post, error)
}

// StatsRepository provides the aggregate queries backing the analytics dashboard.
type StatsRepository interface {
	Stats(ctx context.Context, days int) (*Stats, error)
}

// DayCount is the number of posts created on one day.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Stats aggregates post counts for the dashboard.
type Stats struct {
	TotalPosts int64      `json:"totalPosts"`
	Images     int64      `json:"images"`
	Videos     int64      `json:"videos"`
	PerDay     []DayCount `json:"perDay"`
}

// PgRepository is the Postgres implementation of Repository and StatsRepository.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PgRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

// Insert stores a new post and fills in its generated id and timestamp.
func (r *PgRepository) Insert(ctx context.Context, p *Post) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (owner_id, caption, url, file_id, file_type, file_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.OwnerID, p.Caption, p.URL, p.FileID, p.FileType, p.FileName,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID fetches a post by its UUID.
func (r *PgRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRow(ctx,
		`SELECT p.id, p.owner_id, u.email, p.caption, p.url, p.file_id, p.file_type, p.file_name, p.created_at
		 FROM posts p
		 JOIN users u ON u.id = p.owner_id
		 WHERE p.id = $1`,
		id,
	).Scan(&p.ID, &p.OwnerID, &p.OwnerEmail, &p.Caption, &p.URL, &p.FileID, &p.FileType, &p.FileName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return p, nil
}

// Delete removes a post row. Returns ErrNotFound when no row matched.
func (r *PgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns up to limit posts, most recent first.
// Ties on created_at are broken by id so the order is deterministic.
func (r *PgRepository) ListRecent(ctx context.Context, limit int) ([]Post, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.owner_id, u.email, p.caption, p.url, p.file_id, p.file_type, p.file_name, p.created_at
		 FROM posts p
		 JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.OwnerEmail, &p.Caption, &p.URL, &p.FileID, &p.FileType, &p.FileName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// Stats returns aggregate counts plus a per-day series covering the last days days.
func (r *PgRepository) Stats(ctx context.Context, days int) (*Stats, error) {
	s := &Stats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE file_type = 'image'),
		        COUNT(*) FILTER (WHERE file_type = 'video')
		 FROM posts`,
	).Scan(&s.TotalPosts, &s.Images, &s.Videos)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day, COUNT(*)
		 FROM posts
		 WHERE created_at >= NOW() - make_interval(days => $1)
		 GROUP BY day
		 ORDER BY day`,
		days,
	)
	if err != nil {
		return nil, fmt.Errorf("count posts per day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day time.Time
		var dc DayCount
		if err := rows.Scan(&day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		dc.Day = day.Format("2006-01-02")
		s.PerDay = append(s.PerDay, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}
	return s, nil
}
