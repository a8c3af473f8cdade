// internal/comments/service.go
package comments

import (
	"context"
	"strings"
	"time"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/common/utils"
	"github.com/oluseyi-dev/inspira-backend/internal/identity"
	"github.com/oluseyi-dev/inspira-backend/internal/metrics"
)

type Service struct {
	repo       Repository
	editWindow time.Duration
	nowFn      func() time.Time
}

func NewService(repo Repository, editWindow time.Duration) *Service {
	return &Service{
		repo:       repo,
		editWindow: editWindow,
		nowFn:      time.Now,
	}
}

// ListTop pages the top-level comments of a post
func (s *Service) ListTop(ctx context.Context, actor identity.Identity, inspirationID int64, sort string, page, limit int) (*CommentPage, error) {
	post, err := s.repo.GetPost(ctx, inspirationID)
	if err != nil {
		return nil, err
	}
	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to view this inspiration")
	}

	switch sort {
	case "", SortNewest, SortOldest, SortMostLiked:
	default:
		return nil, apperrors.New(apperrors.Validation, "sort must be one of newest, oldest, mostLiked")
	}

	list, total, err := s.repo.ListTop(ctx, inspirationID, actor.ID, sort, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	if list == nil {
		list = []Comment{}
	}
	return &CommentPage{
		Comments:   list,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// ListReplies pages the direct replies of a top-level comment
func (s *Service) ListReplies(ctx context.Context, actor identity.Identity, commentID int64, page, limit int) (*ReplyPage, error) {
	parent, err := s.repo.GetByID(ctx, commentID, actor.ID)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.GetPost(ctx, parent.InspirationID)
	if err != nil {
		return nil, err
	}
	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to view this inspiration")
	}

	list, total, err := s.repo.ListReplies(ctx, commentID, actor.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	if list == nil {
		list = []Comment{}
	}
	return &ReplyPage{
		Replies:    list,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Create posts a comment or a reply. Replying to a reply is rejected:
// threads stay two levels deep.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req *CreateRequest) (*Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.Validation, err.Error())
	}

	post, err := s.repo.GetPost(ctx, req.InspirationID)
	if err != nil {
		return nil, err
	}
	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to comment on this inspiration")
	}

	if req.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentID, actor.ID)
		if err != nil {
			return nil, err
		}
		if parent.InspirationID != req.InspirationID {
			return nil, apperrors.New(apperrors.Validation, "parent comment belongs to a different inspiration")
		}
		if parent.ParentID != nil {
			return nil, apperrors.New(apperrors.Validation, "replies to replies are not allowed")
		}
	}

	comment := &Comment{
		InspirationID: req.InspirationID,
		UserID:        actor.ID,
		ParentID:      req.ParentID,
		Content:       req.Content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	metrics.RecordComment()

	return s.repo.GetByID(ctx, comment.ID, actor.ID)
}

// Edit rewrites the actor's own comment within the edit window
func (s *Service) Edit(ctx context.Context, actor identity.Identity, id int64, req *EditRequest) (*Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.Validation, err.Error())
	}

	comment, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !identity.CanMutate(actor, comment.UserID) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to edit this comment")
	}
	if s.nowFn().Sub(comment.CreatedAt) > s.editWindow {
		return nil, apperrors.Newf(apperrors.Forbidden,
			"comments can only be edited within %d minutes of posting", int(s.editWindow.Minutes()))
	}

	if err := s.repo.UpdateContent(ctx, id, req.Content); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id, actor.ID)
}

// Delete removes the actor's own comment. Replies and the post's
// top-level counter are reconciled by the repository.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	comment, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !identity.CanMutate(actor, comment.UserID) {
		return apperrors.New(apperrors.Forbidden, "not allowed to delete this comment")
	}

	return s.repo.Delete(ctx, comment)
}

// ToggleLike flips the actor's like on a comment
func (s *Service) ToggleLike(ctx context.Context, actor identity.Identity, id int64) (*LikeResult, error) {
	comment, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.GetPost(ctx, comment.InspirationID)
	if err != nil {
		return nil, err
	}
	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to like this comment")
	}

	liked, count, err := s.repo.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordLikeToggle("comment", liked)
	return &LikeResult{IsLiked: liked, LikesCount: count}, nil
}
