// internal/inspirations/memfake_test.go
package inspirations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
)

// memRepo is an in-memory Repository for service tests. It mirrors the
// storage semantics the Postgres implementation relies on: like rows keyed
// by (post, user), counters moved together with their ledger rows, and
// cascade deletes for likes and share audit rows.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*Inspiration
	likes  map[int64]map[int64]bool // post id -> user ids
	shares []Share
	base   time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		posts: make(map[int64]*Inspiration),
		likes: make(map[int64]map[int64]bool),
		base:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) Create(_ context.Context, post *Inspiration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = m.base.Add(time.Duration(m.nextID) * time.Minute)
	post.UpdatedAt = post.CreatedAt

	stored := *post
	m.posts[post.ID] = &stored
	m.likes[post.ID] = make(map[int64]bool)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id, viewerID int64) (*Inspiration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id, viewerID)
}

func (m *memRepo) getLocked(id, viewerID int64) (*Inspiration, error) {
	stored, ok := m.posts[id]
	if !ok {
		return nil, notFoundPost()
	}

	post := *stored
	post.Author = &Author{ID: post.UserID, Username: fmt.Sprintf("user%d", post.UserID)}
	post.IsLiked = m.likes[id][viewerID]
	post.Original = nil
	return &post, nil
}

func (m *memRepo) List(_ context.Context, f ListFilter) ([]Inspiration, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Inspiration
	for id := m.nextID; id >= 1; id-- {
		stored, ok := m.posts[id]
		if !ok {
			continue
		}
		if f.UserID != 0 {
			if stored.UserID != f.UserID {
				continue
			}
			if !f.OwnerView && !stored.IsPublic {
				continue
			}
		} else if !stored.IsPublic {
			continue
		}
		if f.Tag != "" && !containsTag(stored.Tags, f.Tag) {
			continue
		}

		post, _ := m.getLocked(id, f.ViewerID)
		matched = append(matched, *post)
	}

	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.posts[id]
	if !ok {
		return notFoundPost()
	}
	delete(m.posts, id)
	delete(m.likes, id)

	kept := m.shares[:0]
	for _, s := range m.shares {
		if s.OriginalID != id && s.InspirationID != id {
			kept = append(kept, s)
		}
	}
	m.shares = kept

	// Deleting a derived share drops its audit row, so the root's counter
	// moves with it; a dangling original_id has no root left to reconcile
	if stored.Kind == KindShare && stored.OriginalID != nil {
		if root, ok := m.posts[*stored.OriginalID]; ok && root.SharesCount > 0 {
			root.SharesCount--
		}
	}
	return nil
}

func (m *memRepo) ToggleLike(_ context.Context, postID, userID int64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[postID]
	if !ok {
		return false, 0, notFoundPost()
	}

	if m.likes[postID][userID] {
		delete(m.likes[postID], userID)
		if post.LikesCount > 0 {
			post.LikesCount--
		}
		return false, post.LikesCount, nil
	}

	m.likes[postID][userID] = true
	post.LikesCount++
	return true, post.LikesCount, nil
}

func (m *memRepo) CreateShare(_ context.Context, derived *Inspiration, share *Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.posts[share.OriginalID]
	if !ok {
		return notFoundPost()
	}

	m.nextID++
	derived.ID = m.nextID
	derived.CreatedAt = m.base.Add(time.Duration(m.nextID) * time.Minute)
	derived.UpdatedAt = derived.CreatedAt

	stored := *derived
	m.posts[derived.ID] = &stored
	m.likes[derived.ID] = make(map[int64]bool)

	share.ID = int64(len(m.shares) + 1)
	share.InspirationID = derived.ID
	share.CreatedAt = derived.CreatedAt
	m.shares = append(m.shares, *share)

	original.SharesCount++
	return nil
}

func (m *memRepo) ListShares(_ context.Context, originalID int64, limit, offset int) ([]Share, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Share
	for i := len(m.shares) - 1; i >= 0; i-- {
		if m.shares[i].OriginalID == originalID {
			s := m.shares[i]
			s.Sharer = &Author{ID: s.UserID, Username: fmt.Sprintf("user%d", s.UserID)}
			matched = append(matched, s)
		}
	}

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

func notFoundPost() error {
	return apperrors.New(apperrors.NotFound, "inspiration not found")
}

func containsTag(tags JSONStrings, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
