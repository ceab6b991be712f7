package response

import "content-catalog/internal/data/entity"

type TitleResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description *string        `json:"description"`
	Genre       []SlugResponse `json:"genre"`
	Category    *SlugResponse  `json:"category"`
}

// TitleToResponse assembles the read shape from a title and its relations.
// A nil category renders as null.
func TitleToResponse(title *entity.Title, genres []*entity.Genre, category *entity.Category) TitleResponse {
	resp := TitleResponse{
		ID:          title.ID.String(),
		Name:        title.Name,
		Year:        title.Year,
		Rating:      title.Rating,
		Description: title.Description,
		Genre:       make([]SlugResponse, 0, len(genres)),
	}

	for _, g := range genres {
		resp.Genre = append(resp.Genre, GenreToResponse(g))
	}

	if category != nil {
		c := CategoryToResponse(category)
		resp.Category = &c
	}

	return resp
}
