package dto

import "github.com/go-kyugo/productapi/entity"

// FromEntity converts a single product, a list of products, or both.
// A nil input yields a nil output on that side; an empty slice stays empty.
func FromEntity(product *entity.Product, products []entity.Product) (*ProductDTO, []ProductDTO) {
	var single *ProductDTO
	if product != nil {
		d := toDTO(*product)
		single = &d
	}

	var list []ProductDTO
	if products != nil {
		list = make([]ProductDTO, 0, len(products))
		for _, p := range products {
			list = append(list, toDTO(p))
		}
	}

	return single, list
}

// ToEntity copies every field, id included.
func ToEntity(d ProductDTO) entity.Product {
	return entity.Product{
		ID:       d.ID,
		Name:     d.Name,
		Quantity: d.Quantity,
		Price:    d.Price,
	}
}

func toDTO(p entity.Product) ProductDTO {
	return ProductDTO{
		ID:       p.ID,
		Name:     p.Name,
		Quantity: p.Quantity,
		Price:    p.Price,
	}
}
