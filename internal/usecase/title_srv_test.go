package usecase

import (
	"context"
	"testing"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAndGenreLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Category.CreateCategory(ctx, &request.CreateCategoryRequest{Name: "Books", Slug: "books"})
	require.NoError(t, err)

	_, err = f.svc.Category.CreateCategory(ctx, &request.CreateCategoryRequest{Name: "Other", Slug: "books"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Category.CreateCategory(ctx, &request.CreateCategoryRequest{Name: "Bad", Slug: "no spaces"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.svc.Category.GetAllCategories(ctx, "boo", &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "books", list.Data[0].Slug)

	require.NoError(t, f.svc.Category.DeleteCategory(ctx, "books"))
	assert.ErrorIs(t, f.svc.Category.DeleteCategory(ctx, "books"), ErrNotFound)

	_, err = f.svc.Genre.CreateGenre(ctx, &request.CreateGenreRequest{Name: "Rock", Slug: "rock"})
	require.NoError(t, err)
	genres, err := f.svc.Genre.GetAllGenres(ctx, "", &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), genres.Pagination.Total)
	require.NoError(t, f.svc.Genre.DeleteGenre(ctx, "rock"))
	assert.ErrorIs(t, f.svc.Genre.DeleteGenre(ctx, "rock"), ErrNotFound)
}

func TestCreateTitleReadShape(t *testing.T) {
	f := newFixture(t)
	id := f.seedCatalog(t)

	title, err := f.svc.Title.GetTitleByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "The Movie", title.Name)
	assert.Nil(t, title.Rating)
	require.NotNil(t, title.Category)
	assert.Equal(t, "films", title.Category.Slug)
	require.Len(t, title.Genre, 2)
	assert.Equal(t, "comedy", title.Genre[0].Slug)
	assert.Equal(t, "drama", title.Genre[1].Slug)
}

func TestCreateTitleValidation(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	var verr *ValidationError
	_, err := f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name: "X", Year: 2000, Genre: []string{"drama", "horror"}, Category: "films",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "genre")

	_, err = f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name: "X", Year: 2000, Genre: []string{"drama"}, Category: "music",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")

	_, err = f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name: "X", Year: 3000, Genre: []string{"drama"}, Category: "films",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "year")
}

func TestListTitlesFilters(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	_, err := f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name: "Another", Year: 2005, Genre: []string{"comedy"}, Category: "films",
	})
	require.NoError(t, err)

	all, err := f.svc.Title.GetAllTitles(ctx, &request.TitleListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Data, 2)
	assert.Equal(t, "Another", all.Data[0].Name)

	byGenre, err := f.svc.Title.GetAllTitles(ctx, &request.TitleListRequest{Genre: "drama"})
	require.NoError(t, err)
	require.Len(t, byGenre.Data, 1)
	assert.Equal(t, "The Movie", byGenre.Data[0].Name)

	byName, err := f.svc.Title.GetAllTitles(ctx, &request.TitleListRequest{Name: "anoth"})
	require.NoError(t, err)
	assert.Len(t, byName.Data, 1)

	byYear, err := f.svc.Title.GetAllTitles(ctx, &request.TitleListRequest{Year: 1999, Category: "films"})
	require.NoError(t, err)
	assert.Len(t, byYear.Data, 1)

	none, err := f.svc.Title.GetAllTitles(ctx, &request.TitleListRequest{Category: "music"})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
	assert.NotNil(t, none.Data)
}

func TestUpdateTitleReplacesGenres(t *testing.T) {
	f := newFixture(t)
	id := f.seedCatalog(t)
	ctx := context.Background()

	year := 2001
	updated, err := f.svc.Title.UpdateTitle(ctx, id, &request.UpdateTitleRequest{Year: &year, Genre: []string{"drama"}})
	require.NoError(t, err)
	assert.Equal(t, 2001, updated.Year)
	assert.Equal(t, "The Movie", updated.Name)
	require.Len(t, updated.Genre, 1)
	assert.Equal(t, "drama", updated.Genre[0].Slug)

	// absent genre keeps the set
	updated, err = f.svc.Title.UpdateTitle(ctx, id, &request.UpdateTitleRequest{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Len(t, updated.Genre, 1)

	_, err = f.svc.Title.UpdateTitle(ctx, "not-a-uuid", &request.UpdateTitleRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryNullsTitleCategory(t *testing.T) {
	f := newFixture(t)
	id := f.seedCatalog(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Category.DeleteCategory(ctx, "films"))

	title, err := f.svc.Title.GetTitleByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, title.Category)
}

func TestTitleRatingAveragesReviews(t *testing.T) {
	f := newFixture(t)
	id := f.seedCatalog(t)
	ctx := context.Background()

	for i, score := range []int{4, 7, 10} {
		actor := f.addUser(t, []string{"a", "b", "c"}[i], entity.RoleUser)
		_, err := f.svc.Review.CreateReview(ctx, actor, id, &request.CreateReviewRequest{Text: "ok", Score: score})
		require.NoError(t, err)
	}

	title, err := f.svc.Title.GetTitleByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 7.0, *title.Rating, 0.001)
}

func TestDeleteTitle(t *testing.T) {
	f := newFixture(t)
	id := f.seedCatalog(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Title.DeleteTitle(ctx, id))
	assert.ErrorIs(t, f.svc.Title.DeleteTitle(ctx, id), ErrNotFound)

	_, err := f.svc.Title.GetTitleByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
