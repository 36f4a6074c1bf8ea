package dto

// ProductDTO is the client-facing product shape. The router validates it
// before POST and PUT handlers run.
type ProductDTO struct {
	ID       int     `json:"id" validate:"gte=0"`
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
	Price    float64 `json:"price" validate:"gte=0,decimals=2"`
}

// DeleteProductRequest carries the id of the product to delete. Other
// product fields may be present in the body and are ignored.
type DeleteProductRequest struct {
	ID int `json:"id" validate:"gte=0"`
}
