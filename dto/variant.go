package dto

type CreateVariantRequest struct {
	SKU        string   `json:"sku" validate:"required"`
	Group      string   `json:"group" validate:"required"`
	Categories []string `json:"categories"`
	Variant    string   `json:"variant" validate:"required"`
}

type BulkCreateVariantRequest struct {
	Variants []CreateVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

type UpdateVariantRequest struct {
	Group      *string   `json:"group"`
	Categories *[]string `json:"categories"`
	Variant    *string   `json:"variant"`
}

// VariantGroup là các variant cùng nhóm (không kèm categories)
type VariantGroup struct {
	Group    string        `json:"group"`
	Variants []VariantItem `json:"variants"`
}

type VariantItem struct {
	SKU     string `json:"sku"`
	Variant string `json:"variant"`
}
