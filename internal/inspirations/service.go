// internal/inspirations/service.go
package inspirations

import (
	"context"
	"log"
	"strings"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/common/utils"
	"github.com/oluseyi-dev/inspira-backend/internal/identity"
	"github.com/oluseyi-dev/inspira-backend/internal/metrics"
)

type Service struct {
	repo      Repository
	uploads   *UploadService
	maxImages int
}

func NewService(repo Repository, uploads *UploadService, maxImages int) *Service {
	return &Service{
		repo:      repo,
		uploads:   uploads,
		maxImages: maxImages,
	}
}

// Create publishes a new original inspiration
func (s *Service) Create(ctx context.Context, actor identity.Identity, req *CreateRequest) (*Inspiration, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.Validation, err.Error())
	}
	if len(req.Images) > s.maxImages {
		return nil, apperrors.Newf(apperrors.Validation, "at most %d images allowed per post", s.maxImages)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post := &Inspiration{
		UserID:   actor.ID,
		Content:  req.Content,
		Images:   JSONStrings(req.Images),
		Tags:     JSONStrings(req.Tags),
		IsPublic: isPublic,
		Kind:     KindOriginal,
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		post.Location = &loc
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	metrics.RecordPost("create")

	return s.repo.GetByID(ctx, post.ID, actor.ID)
}

// Get returns one inspiration, enforcing visibility
func (s *Service) Get(ctx context.Context, actor identity.Identity, id int64) (*Inspiration, error) {
	post, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to view this inspiration")
	}

	s.attachOriginal(ctx, actor, post)
	return post, nil
}

// List returns a visibility-filtered feed page
func (s *Service) List(ctx context.Context, actor identity.Identity, userID int64, tag string, page, limit int) (*FeedPage, error) {
	f := ListFilter{
		ViewerID:  actor.ID,
		UserID:    userID,
		OwnerView: actor.Authenticated && actor.ID == userID,
		Tag:       tag,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	posts, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		s.attachOriginal(ctx, actor, &posts[i])
	}

	if posts == nil {
		posts = []Inspiration{}
	}
	return &FeedPage{
		Inspirations: posts,
		Total:        total,
		Page:         page,
		TotalPages:   totalPages(total, limit),
	}, nil
}

// ToggleLike flips the actor's like on a post. Repeating the call
// alternates like/unlike; the returned count always matches the number of
// like rows for the post.
func (s *Service) ToggleLike(ctx context.Context, actor identity.Identity, id int64) (*LikeResult, error) {
	post, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to like this inspiration")
	}

	liked, count, err := s.repo.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordLikeToggle("post", liked)
	return &LikeResult{IsLiked: liked, LikesCount: count}, nil
}

// Reshare creates a derived post quoting an original. Share-of-share is
// flattened: the new post always references the root original.
func (s *Service) Reshare(ctx context.Context, actor identity.Identity, originalID int64, req *ShareRequest) (*Inspiration, error) {
	req.ShareContent = strings.TrimSpace(req.ShareContent)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.Validation, err.Error())
	}

	target, err := s.repo.GetByID(ctx, originalID, actor.ID)
	if err != nil {
		return nil, err
	}

	root := target
	if target.Kind == KindShare {
		if target.OriginalID == nil {
			return nil, apperrors.New(apperrors.NotFound, "original inspiration no longer exists")
		}
		root, err = s.repo.GetByID(ctx, *target.OriginalID, actor.ID)
		if err != nil {
			return nil, apperrors.New(apperrors.NotFound, "original inspiration no longer exists")
		}
	}

	if !root.IsPublic {
		return nil, apperrors.New(apperrors.Forbidden, "private inspirations cannot be reshared")
	}

	content := req.ShareContent
	if content == "" {
		content = placeholderContent(root.Author.Username)
	}

	// Snapshot the root's media at share time; later edits or deletion of
	// the original never rewrite what the share displays.
	derived := &Inspiration{
		UserID:     actor.ID,
		Content:    content,
		Images:     root.Images,
		Tags:       root.Tags,
		Location:   root.Location,
		IsPublic:   true,
		Kind:       KindShare,
		OriginalID: &root.ID,
	}

	share := &Share{
		UserID:     actor.ID,
		OriginalID: root.ID,
	}
	if req.ShareContent != "" {
		share.Quote = &req.ShareContent
	}

	if err := s.repo.CreateShare(ctx, derived, share); err != nil {
		return nil, err
	}
	metrics.RecordReshare()

	result, err := s.repo.GetByID(ctx, derived.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	result.Original = summarize(root)
	return result, nil
}

// ListShares pages the reshare audit records of a post
func (s *Service) ListShares(ctx context.Context, actor identity.Identity, id int64, page, limit int) (*SharePage, error) {
	post, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !identity.CanView(actor, post.UserID, post.IsPublic) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to view this inspiration")
	}

	shares, total, err := s.repo.ListShares(ctx, id, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	if shares == nil {
		shares = []Share{}
	}
	return &SharePage{
		Shares:     shares,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Delete removes the actor's own post. Comments, likes and share records
// cascade at the storage layer.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	post, err := s.repo.GetByID(ctx, id, actor.ID)
	if err != nil {
		return err
	}

	if !identity.CanMutate(actor, post.UserID) {
		return apperrors.New(apperrors.Forbidden, "not allowed to delete this inspiration")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordPost("delete")

	// Shares snapshot the same image paths as their original, so files are
	// only removed with the original post that owns them.
	if s.uploads != nil && post.Kind == KindOriginal {
		for _, img := range post.Images {
			if err := s.uploads.DeleteFile(img); err != nil {
				log.Printf("failed to remove image %s: %v", img, err)
			}
		}
	}

	return nil
}

// attachOriginal embeds the root original's summary on a share. A missing
// root (deleted original) is not an error; the share keeps its snapshot.
func (s *Service) attachOriginal(ctx context.Context, actor identity.Identity, post *Inspiration) {
	if post.Kind != KindShare || post.OriginalID == nil {
		return
	}
	root, err := s.repo.GetByID(ctx, *post.OriginalID, actor.ID)
	if err != nil {
		return
	}
	post.Original = summarize(root)
}

func summarize(post *Inspiration) *OriginalSummary {
	return &OriginalSummary{
		ID:        post.ID,
		Content:   post.Content,
		Images:    post.Images,
		Author:    post.Author,
		CreatedAt: post.CreatedAt,
	}
}
