// internal/inspirations/service_test.go
package inspirations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/identity"
)

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, nil, 9), repo
}

func mustCreate(t *testing.T, svc *Service, userID int64, req *CreateRequest) *Inspiration {
	t.Helper()
	post, err := svc.Create(context.Background(), identity.Authenticated(userID), req)
	require.NoError(t, err)
	return post
}

func TestCreateDefaultsToPublicOriginal(t *testing.T) {
	svc, _ := newTestService()

	post := mustCreate(t, svc, 1, &CreateRequest{Content: "morning light over the lagoon"})

	assert.True(t, post.IsPublic)
	assert.Equal(t, KindOriginal, post.Kind)
	assert.Nil(t, post.OriginalID)
	assert.Equal(t, int64(1), post.UserID)
}

func TestCreateRejectsEmptyContent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), identity.Authenticated(1), &CreateRequest{Content: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Validation))
}

func TestCreateRejectsTooManyImages(t *testing.T) {
	svc, _ := newTestService()

	images := make([]string, 10)
	for i := range images {
		images[i] = "/uploads/inspirations/x.png"
	}

	_, err := svc.Create(context.Background(), identity.Authenticated(1), &CreateRequest{
		Content: "gallery dump",
		Images:  images,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Validation))
}

func TestGetEnforcesVisibility(t *testing.T) {
	svc, _ := newTestService()

	private := false
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "draft thoughts", IsPublic: &private})

	_, err := svc.Get(context.Background(), identity.Authenticated(2), post.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))

	_, err = svc.Get(context.Background(), identity.Anonymous(), post.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))

	got, err := svc.Get(context.Background(), identity.Authenticated(1), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestToggleLikeAlternates(t *testing.T) {
	svc, _ := newTestService()
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "like me"})
	actor := identity.Authenticated(2)

	res, err := svc.ToggleLike(context.Background(), actor, post.ID)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.Equal(t, 1, res.LikesCount)

	res, err = svc.ToggleLike(context.Background(), actor, post.ID)
	require.NoError(t, err)
	assert.False(t, res.IsLiked)
	assert.Equal(t, 0, res.LikesCount)

	res, err = svc.ToggleLike(context.Background(), actor, post.ID)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.Equal(t, 1, res.LikesCount)
}

func TestToggleLikeCountMatchesDistinctLikers(t *testing.T) {
	svc, _ := newTestService()
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "popular"})

	for userID := int64(2); userID <= 6; userID++ {
		res, err := svc.ToggleLike(context.Background(), identity.Authenticated(userID), post.ID)
		require.NoError(t, err)
		assert.True(t, res.IsLiked)
	}

	got, err := svc.Get(context.Background(), identity.Authenticated(2), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.LikesCount)
	assert.True(t, got.IsLiked)

	got, err = svc.Get(context.Background(), identity.Authenticated(99), post.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLiked)
}

func TestToggleLikePrivatePostForbidden(t *testing.T) {
	svc, _ := newTestService()

	private := false
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "mine only", IsPublic: &private})

	_, err := svc.ToggleLike(context.Background(), identity.Authenticated(2), post.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))
}

func TestReshareWithQuote(t *testing.T) {
	svc, _ := newTestService()
	original := mustCreate(t, svc, 1, &CreateRequest{
		Content: "sunset at bar beach",
		Tags:    []string{"lagos"},
	})

	derived, err := svc.Reshare(context.Background(), identity.Authenticated(2), original.ID,
		&ShareRequest{ShareContent: "had to share this"})
	require.NoError(t, err)

	assert.Equal(t, KindShare, derived.Kind)
	require.NotNil(t, derived.OriginalID)
	assert.Equal(t, original.ID, *derived.OriginalID)
	assert.Equal(t, "had to share this", derived.Content)
	assert.Equal(t, JSONStrings{"lagos"}, derived.Tags)
	require.NotNil(t, derived.Original)
	assert.Equal(t, original.ID, derived.Original.ID)

	got, err := svc.Get(context.Background(), identity.Anonymous(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SharesCount)
}

func TestReshareWithoutQuoteUsesPlaceholder(t *testing.T) {
	svc, _ := newTestService()
	original := mustCreate(t, svc, 1, &CreateRequest{Content: "hot take"})

	derived, err := svc.Reshare(context.Background(), identity.Authenticated(2), original.ID, &ShareRequest{})
	require.NoError(t, err)
	assert.Equal(t, "reshared @user1's post", derived.Content)
}

func TestReshareOfShareFlattensToRoot(t *testing.T) {
	svc, repo := newTestService()
	root := mustCreate(t, svc, 1, &CreateRequest{Content: "the root post"})

	first, err := svc.Reshare(context.Background(), identity.Authenticated(2), root.ID, &ShareRequest{})
	require.NoError(t, err)

	second, err := svc.Reshare(context.Background(), identity.Authenticated(3), first.ID,
		&ShareRequest{ShareContent: "sharing the share"})
	require.NoError(t, err)

	require.NotNil(t, second.OriginalID)
	assert.Equal(t, root.ID, *second.OriginalID)

	// Both audit rows and both counter bumps land on the root
	shares, total, err := repo.ListShares(context.Background(), root.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, shares, 2)

	got, err := svc.Get(context.Background(), identity.Anonymous(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SharesCount)

	firstAgain, err := svc.Get(context.Background(), identity.Anonymous(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, firstAgain.SharesCount)
}

func TestResharePrivateForbidden(t *testing.T) {
	svc, _ := newTestService()

	private := false
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "secret", IsPublic: &private})

	_, err := svc.Reshare(context.Background(), identity.Authenticated(1), post.ID, &ShareRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))
}

func TestReshareAfterRootDeleted(t *testing.T) {
	svc, _ := newTestService()
	root := mustCreate(t, svc, 1, &CreateRequest{Content: "soon gone"})

	share, err := svc.Reshare(context.Background(), identity.Authenticated(2), root.ID, &ShareRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), identity.Authenticated(1), root.ID))

	// The share survives with its snapshot; its embedded original is gone
	got, err := svc.Get(context.Background(), identity.Anonymous(), share.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Original)
	assert.Equal(t, "reshared @user1's post", got.Content)

	// But resharing through it can no longer reach a root
	_, err = svc.Reshare(context.Background(), identity.Authenticated(3), share.ID, &ShareRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestDeleteOwnershipAndCascade(t *testing.T) {
	svc, repo := newTestService()
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "to be removed"})

	_, err := svc.ToggleLike(context.Background(), identity.Authenticated(2), post.ID)
	require.NoError(t, err)
	_, err = svc.Reshare(context.Background(), identity.Authenticated(3), post.ID, &ShareRequest{})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), identity.Authenticated(2), post.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))

	require.NoError(t, svc.Delete(context.Background(), identity.Authenticated(1), post.ID))

	_, err = svc.Get(context.Background(), identity.Authenticated(1), post.ID)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))

	_, total, err := repo.ListShares(context.Background(), post.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestDeleteReshareDecrementsRootShares(t *testing.T) {
	svc, repo := newTestService()
	root := mustCreate(t, svc, 1, &CreateRequest{Content: "much shared"})

	derived, err := svc.Reshare(context.Background(), identity.Authenticated(2), root.ID, &ShareRequest{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), identity.Anonymous(), root.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SharesCount)

	require.NoError(t, svc.Delete(context.Background(), identity.Authenticated(2), derived.ID))

	// The audit row is gone and the counter agrees with it
	_, total, err := repo.ListShares(context.Background(), root.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	got, err = svc.Get(context.Background(), identity.Anonymous(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SharesCount)
}

func TestDeleteReshareWithDanglingRoot(t *testing.T) {
	svc, _ := newTestService()
	root := mustCreate(t, svc, 1, &CreateRequest{Content: "short lived"})

	derived, err := svc.Reshare(context.Background(), identity.Authenticated(2), root.ID, &ShareRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), identity.Authenticated(1), root.ID))
	require.NoError(t, svc.Delete(context.Background(), identity.Authenticated(2), derived.ID))
}

func TestListFiltersVisibilityAndPaginates(t *testing.T) {
	svc, _ := newTestService()
	private := false

	mustCreate(t, svc, 1, &CreateRequest{Content: "public one"})
	mustCreate(t, svc, 1, &CreateRequest{Content: "private one", IsPublic: &private})
	mustCreate(t, svc, 2, &CreateRequest{Content: "public two"})

	// Anonymous feed sees only public posts
	page, err := svc.List(context.Background(), identity.Anonymous(), 0, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	// Another user browsing user 1's posts sees only the public one
	page, err = svc.List(context.Background(), identity.Authenticated(2), 1, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	// The owner sees both
	page, err = svc.List(context.Background(), identity.Authenticated(1), 1, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	// Pagination math
	page, err = svc.List(context.Background(), identity.Anonymous(), 0, "", 1, 1)
	require.NoError(t, err)
	assert.Len(t, page.Inspirations, 1)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "public two", page.Inspirations[0].Content)
}

func TestListByTag(t *testing.T) {
	svc, _ := newTestService()

	mustCreate(t, svc, 1, &CreateRequest{Content: "food post", Tags: []string{"food"}})
	mustCreate(t, svc, 1, &CreateRequest{Content: "travel post", Tags: []string{"travel"}})

	page, err := svc.List(context.Background(), identity.Anonymous(), 0, "food", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "food post", page.Inspirations[0].Content)
}

func TestListSharesVisibilityGuard(t *testing.T) {
	svc, _ := newTestService()

	private := false
	post := mustCreate(t, svc, 1, &CreateRequest{Content: "quiet", IsPublic: &private})

	_, err := svc.ListShares(context.Background(), identity.Authenticated(2), post.ID, 1, 10)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Forbidden))
}
