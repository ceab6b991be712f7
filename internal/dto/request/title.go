package request

type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,notfuture"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,max=50,slug"`
	Category    string   `json:"category" validate:"required,max=50,slug"`
}

// UpdateTitleRequest is a partial update; a present genre list replaces the
// title's genres.
type UpdateTitleRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=256"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,notfuture"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre,omitempty" validate:"omitempty,min=1,dive,max=50,slug"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=50,slug"`
}

type TitleListRequest struct {
	PaginatedRequest
	Category string
	Genre    string
	Name     string
	Year     int
}
