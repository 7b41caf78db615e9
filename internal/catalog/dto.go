package catalog

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string `json:"name"        example:"Mechanical Keyboard"`
	Slug        string `json:"slug"        example:"mechanical-keyboard"`
	Description string `json:"description" example:"RGB 60%"`
	Price       string `json:"price"       example:"199.90"`
	Quantity    int    `json:"quantity"    example:"10"`
	CategoryID  string `json:"category_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  string `json:"category_id"`
}

// SetQuantityRequest payload of the admin inventory edit.
// swagger:model SetQuantityRequest
type SetQuantityRequest struct {
	Quantity int `json:"quantity" example:"25"`
}

// CreateCategoryRequest payload of category creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name        string `json:"name" example:"Peripherals"`
	Slug        string `json:"slug" example:"peripherals"`
	Description string `json:"description"`
}
