package response

import "content-catalog/internal/data/entity"

// SlugResponse is the public shape of genres and categories.
type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func GenreToResponse(genre *entity.Genre) SlugResponse {
	return SlugResponse{
		Name: genre.Name,
		Slug: genre.Slug,
	}
}

func CategoryToResponse(category *entity.Category) SlugResponse {
	return SlugResponse{
		Name: category.Name,
		Slug: category.Slug,
	}
}
