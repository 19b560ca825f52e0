package dto

type CreateFeedbackRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	Rating    *int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   string   `json:"comment"`
	Images    []string `json:"images"`
}

type ReplyFeedbackRequest struct {
	Comment string `json:"comment"`
}

type SellerFeedbackQuery struct {
	ProductID string `form:"product_id"`
	Rating    int    `form:"rating"`
	HasReply  *bool  `form:"has_reply"`
	PageQuery
}
