package request

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,min=1,max=5000"`
}
