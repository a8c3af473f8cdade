// internal/comments/memfake_test.go
package comments

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/inspirations"
)

// memRepo is an in-memory Repository for service tests. Counter moves
// mirror the Postgres implementation: comments_count tracks top-level
// comments only, decrements clamp at zero, and deleting a top-level
// comment cascades its replies.
type memRepo struct {
	mu            sync.Mutex
	nextID        int64
	posts         map[int64]*PostRef
	commentsCount map[int64]int
	comments      map[int64]*Comment
	likes         map[int64]map[int64]bool // comment id -> user ids
	base          time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		posts:         make(map[int64]*PostRef),
		commentsCount: make(map[int64]int),
		comments:      make(map[int64]*Comment),
		likes:         make(map[int64]map[int64]bool),
		base:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) addPost(id, userID int64, isPublic bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[id] = &PostRef{ID: id, UserID: userID, IsPublic: isPublic}
}

func (m *memRepo) postCommentCount(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commentsCount[id]
}

func (m *memRepo) GetPost(_ context.Context, id int64) (*PostRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, ok := m.posts[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "inspiration not found")
	}
	copied := *ref
	return &copied, nil
}

func (m *memRepo) GetByID(_ context.Context, id, viewerID int64) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id, viewerID)
}

func (m *memRepo) getLocked(id, viewerID int64) (*Comment, error) {
	stored, ok := m.comments[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "comment not found")
	}

	c := *stored
	c.Author = &inspirations.Author{ID: c.UserID, Username: fmt.Sprintf("user%d", c.UserID)}
	c.IsLiked = m.likes[id][viewerID]
	c.ReplyCount = 0
	for _, other := range m.comments {
		if other.ParentID != nil && *other.ParentID == id {
			c.ReplyCount++
		}
	}
	return &c, nil
}

func (m *memRepo) ListTop(_ context.Context, inspirationID, viewerID int64, sortOrder string, limit, offset int) ([]Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Comment
	for id, stored := range m.comments {
		if stored.InspirationID == inspirationID && stored.ParentID == nil {
			c, _ := m.getLocked(id, viewerID)
			matched = append(matched, *c)
		}
	}

	switch sortOrder {
	case SortOldest:
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	case SortMostLiked:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].LikesCount != matched[j].LikesCount {
				return matched[i].LikesCount > matched[j].LikesCount
			}
			return matched[i].ID > matched[j].ID
		})
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	}

	return pageOf(matched, limit, offset)
}

func (m *memRepo) ListReplies(_ context.Context, parentID, viewerID int64, limit, offset int) ([]Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Comment
	for id, stored := range m.comments {
		if stored.ParentID != nil && *stored.ParentID == parentID {
			c, _ := m.getLocked(id, viewerID)
			matched = append(matched, *c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return pageOf(matched, limit, offset)
}

func (m *memRepo) Create(_ context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = m.base.Add(time.Duration(m.nextID) * time.Minute)
	c.UpdatedAt = c.CreatedAt

	stored := *c
	m.comments[c.ID] = &stored
	m.likes[c.ID] = make(map[int64]bool)

	if c.ParentID == nil {
		m.commentsCount[c.InspirationID]++
	}
	return nil
}

func (m *memRepo) UpdateContent(_ context.Context, id int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.comments[id]
	if !ok {
		return apperrors.New(apperrors.NotFound, "comment not found")
	}
	stored.Content = content
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	return nil
}

func (m *memRepo) Delete(_ context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.comments[c.ID]
	if !ok {
		return apperrors.New(apperrors.NotFound, "comment not found")
	}

	for id, other := range m.comments {
		if other.ParentID != nil && *other.ParentID == c.ID {
			delete(m.comments, id)
			delete(m.likes, id)
		}
	}
	delete(m.comments, c.ID)
	delete(m.likes, c.ID)

	if stored.ParentID == nil && m.commentsCount[stored.InspirationID] > 0 {
		m.commentsCount[stored.InspirationID]--
	}
	return nil
}

func (m *memRepo) ToggleLike(_ context.Context, commentID, userID int64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.comments[commentID]
	if !ok {
		return false, 0, apperrors.New(apperrors.NotFound, "comment not found")
	}

	if m.likes[commentID][userID] {
		delete(m.likes[commentID], userID)
		if stored.LikesCount > 0 {
			stored.LikesCount--
		}
		return false, stored.LikesCount, nil
	}

	m.likes[commentID][userID] = true
	stored.LikesCount++
	return true, stored.LikesCount, nil
}

func pageOf(matched []Comment, limit, offset int) ([]Comment, int, error) {
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
