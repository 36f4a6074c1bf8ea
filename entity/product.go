package entity

// Product mirrors one row of the products table.
type Product struct {
	ID       int
	Name     string
	Quantity int
	Price    float64
}
