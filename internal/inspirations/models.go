// internal/inspirations/models.go
package inspirations

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Post kinds. A share is a derived post whose OriginalID always points at
// the root original, never at an intermediate share.
const (
	KindOriginal = "original"
	KindShare    = "share"
)

// JSONStrings maps a JSONB column to a string slice. Reads are lenient:
// a malformed stored value decodes to an empty list instead of failing
// the whole request.
type JSONStrings []string

func (j *JSONStrings) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*j = JSONStrings{}
		return nil
	default:
		*j = JSONStrings{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		*j = JSONStrings{}
		return nil
	}
	*j = out
	return nil
}

func (j JSONStrings) Value() (driver.Value, error) {
	if j == nil {
		j = JSONStrings{}
	}
	return json.Marshal([]string(j))
}

// Author is the joined display info for a post's owner
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Inspiration is a feed post, either an original or a reshare
type Inspiration struct {
	ID            int64       `db:"id" json:"id"`
	UserID        int64       `db:"user_id" json:"user_id"`
	Content       string      `db:"content" json:"content"`
	Images        JSONStrings `db:"images" json:"images"`
	Tags          JSONStrings `db:"tags" json:"tags"`
	Location      *string     `db:"location" json:"location,omitempty"`
	IsPublic      bool        `db:"is_public" json:"is_public"`
	LikesCount    int         `db:"likes_count" json:"likes_count"`
	CommentsCount int         `db:"comments_count" json:"comments_count"`
	SharesCount   int         `db:"shares_count" json:"shares_count"`
	Kind          string      `db:"kind" json:"kind"`
	OriginalID    *int64      `db:"original_id" json:"original_id,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`

	// Joined fields
	Author   *Author          `json:"author,omitempty"`
	IsLiked  bool             `json:"is_liked"`
	Original *OriginalSummary `json:"original,omitempty"`
}

// OriginalSummary is the embedded view of a reshared post's root original.
// Absent when the original has since been deleted; the share keeps showing
// its own snapshot.
type OriginalSummary struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	Images    JSONStrings `json:"images"`
	Author    *Author     `json:"author,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Share is the audit record of one reshare action
type Share struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	InspirationID int64    `db:"inspiration_id" json:"inspiration_id"`
	OriginalID   int64     `db:"original_id" json:"original_id"`
	Quote        *string   `db:"quote" json:"quote,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Sharer *Author `json:"user,omitempty"`
}

// CreateRequest is the payload for publishing an inspiration
type CreateRequest struct {
	Content  string   `json:"content" validate:"required,max=2000"`
	Images   []string `json:"images" validate:"max=9"`
	Tags     []string `json:"tags"`
	Location string   `json:"location" validate:"max=200"`
	IsPublic *bool    `json:"is_public"`
}

// ShareRequest is the payload for resharing an inspiration
type ShareRequest struct {
	ShareContent string `json:"share_content" validate:"max=500"`
}

// LikeResult is the outcome of a like toggle
type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// ListFilter narrows a feed listing
type ListFilter struct {
	ViewerID  int64 // 0 for anonymous
	UserID    int64 // filter by author; 0 for everyone
	OwnerView bool  // viewer is the filtered author, private posts included
	Tag       string
	Limit     int
	Offset    int
}

// FeedPage is a paginated list response body
type FeedPage struct {
	Inspirations []Inspiration `json:"inspirations"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
}

// SharePage is a paginated reshare listing
type SharePage struct {
	Shares     []Share `json:"shares"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// totalPages computes ceil(total/limit) the way the API reports it
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func placeholderContent(username string) string {
	return fmt.Sprintf("reshared @%s's post", username)
}
