package usecase

import (
	"context"
	"testing"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCreateReview(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	ctx := context.Background()

	review, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{
		Text:  "<script>alert(1)</script>Great",
		Score: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "neo", review.Author)
	assert.Equal(t, "Great", review.Text)
	assert.Equal(t, 9, review.Score)

	_, err = f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "again", Score: 5})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.svc.Review.GetTitleReviews(ctx, titleID, &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)
}

func TestCreateReviewValidation(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	ctx := context.Background()

	for _, score := range []int{0, 11, -1} {
		_, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "x", Score: score})
		assert.ErrorIs(t, err, ErrValidation, "score %d", score)
	}

	_, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "<p></p>", Score: 5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Review.CreateReview(ctx, author, uuid.NewString(), &request.CreateReviewRequest{Text: "x", Score: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewPermissions(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	stranger := f.addUser(t, "smith", entity.RoleUser)
	moderator := f.addUser(t, "oracle", entity.RoleModerator)
	admin := f.addUser(t, "architect", entity.RoleAdmin)
	ctx := context.Background()

	review, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "x", Score: 5})
	require.NoError(t, err)

	_, err = f.svc.Review.UpdateReview(ctx, stranger, titleID, review.ID, &request.UpdateReviewRequest{Score: intPtr(1)})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Review.DeleteReview(ctx, stranger, titleID, review.ID), ErrForbidden)

	updated, err := f.svc.Review.UpdateReview(ctx, author, titleID, review.ID, &request.UpdateReviewRequest{Score: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Score)
	assert.Equal(t, "x", updated.Text)

	updated, err = f.svc.Review.UpdateReview(ctx, moderator, titleID, review.ID, &request.UpdateReviewRequest{Text: strPtr("moderated")})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Text)
	assert.Equal(t, "neo", updated.Author)

	require.NoError(t, f.svc.Review.DeleteReview(ctx, admin, titleID, review.ID))
	_, err = f.svc.Review.GetReview(ctx, titleID, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewMustBelongToTitle(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	ctx := context.Background()

	other, err := f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name: "Other", Year: 2010, Genre: []string{"drama"}, Category: "films",
	})
	require.NoError(t, err)

	review, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "x", Score: 5})
	require.NoError(t, err)

	_, err = f.svc.Review.GetReview(ctx, other.ID, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Comment.GetReviewComments(ctx, other.ID, review.ID, &request.PaginatedRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	commenter := f.addUser(t, "trinity", entity.RoleUser)
	moderator := f.addUser(t, "oracle", entity.RoleModerator)
	ctx := context.Background()

	review, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "x", Score: 5})
	require.NoError(t, err)

	comment, err := f.svc.Comment.CreateComment(ctx, commenter, titleID, review.ID, &request.CreateCommentRequest{Text: "agreed"})
	require.NoError(t, err)
	assert.Equal(t, "trinity", comment.Author)

	_, err = f.svc.Comment.CreateComment(ctx, commenter, titleID, review.ID, &request.CreateCommentRequest{Text: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Comment.UpdateComment(ctx, author, titleID, review.ID, comment.ID, &request.UpdateCommentRequest{Text: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.Comment.UpdateComment(ctx, commenter, titleID, review.ID, comment.ID, &request.UpdateCommentRequest{Text: strPtr("edited")})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	list, err := f.svc.Comment.GetReviewComments(ctx, titleID, review.ID, &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)

	require.NoError(t, f.svc.Comment.DeleteComment(ctx, moderator, titleID, review.ID, comment.ID))
	_, err = f.svc.Comment.GetComment(ctx, titleID, review.ID, comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletingReviewRemovesComments(t *testing.T) {
	f := newFixture(t)
	titleID := f.seedCatalog(t)
	author := f.addUser(t, "neo", entity.RoleUser)
	ctx := context.Background()

	review, err := f.svc.Review.CreateReview(ctx, author, titleID, &request.CreateReviewRequest{Text: "x", Score: 5})
	require.NoError(t, err)
	comment, err := f.svc.Comment.CreateComment(ctx, author, titleID, review.ID, &request.CreateCommentRequest{Text: "self"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Review.DeleteReview(ctx, author, titleID, review.ID))

	got, err := f.store.Repository().Comment.FindByReviewAndID(ctx, uuid.MustParse(review.ID), uuid.MustParse(comment.ID))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActorCanModify(t *testing.T) {
	author := uuid.New()

	assert.True(t, Actor{ID: author, Role: entity.RoleUser}.CanModify(author))
	assert.False(t, Actor{ID: uuid.New(), Role: entity.RoleUser}.CanModify(author))
	assert.True(t, Actor{ID: uuid.New(), Role: entity.RoleModerator}.CanModify(author))
	assert.True(t, Actor{ID: uuid.New(), Role: entity.RoleAdmin}.CanModify(author))
	assert.False(t, Actor{}.CanModify(uuid.Nil))
}
