package request

// CreateGenreRequest is shared by genres and categories.
type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type CreateCategoryRequest = CreateGenreRequest
