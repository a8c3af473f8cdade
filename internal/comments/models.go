// internal/comments/models.go
package comments

import (
	"time"

	"github.com/oluseyi-dev/inspira-backend/internal/inspirations"
)

// Comment is a top-level comment or a direct reply on an inspiration.
// Replies never nest further than one level.
type Comment struct {
	ID            int64     `db:"id" json:"id"`
	InspirationID int64     `db:"inspiration_id" json:"inspiration_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	ParentID      *int64    `db:"parent_id" json:"parent_id,omitempty"`
	Content       string    `db:"content" json:"content"`
	LikesCount    int       `db:"likes_count" json:"likes_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	Author     *inspirations.Author `json:"author,omitempty"`
	ReplyCount int                  `db:"reply_count" json:"reply_count"`
	IsLiked    bool                 `db:"is_liked" json:"is_liked"`
}

type CreateRequest struct {
	InspirationID int64  `json:"inspiration_id" validate:"required"`
	Content       string `json:"content" validate:"required,max=500"`
	ParentID      *int64 `json:"parent_id"`
}

type EditRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// Sort orders for top-level comment listings
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortMostLiked = "mostLiked"
)

type CommentPage struct {
	Comments   []Comment `json:"comments"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

type ReplyPage struct {
	Replies    []Comment `json:"replies"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
