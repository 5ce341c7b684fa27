package domain

import (
	"time"
)

// Product is the canonical product record owned by the Product Store
type Product struct {
	ID                 string    `json:"id" db:"id"`
	ProductName        string    `json:"productName" db:"product_name"`
	Price              float64   `json:"price" db:"price"`
	ProductDescription string    `json:"productDescription" db:"product_description"`
	Department         string    `json:"department" db:"department"`
	Image              string    `json:"image" db:"image"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductDetails is the set of reviewable product fields. It is the shape of
// a review snapshot and of a direct admin edit.
type ProductDetails struct {
	ID                 string  `json:"id"`
	ProductName        string  `json:"productName"`
	Price              float64 `json:"price"`
	ProductDescription string  `json:"productDescription"`
	Department         string  `json:"department"`
	Image              string  `json:"image"`
}

// Details returns the reviewable fields of the product
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		ID:                 p.ID,
		ProductName:        p.ProductName,
		Price:              p.Price,
		ProductDescription: p.ProductDescription,
		Department:         p.Department,
		Image:              p.Image,
	}
}

// Apply overwrites the reviewable fields with d. The id is never changed.
func (p *Product) Apply(d ProductDetails) {
	p.ProductName = d.ProductName
	p.Price = d.Price
	p.ProductDescription = d.ProductDescription
	p.Department = d.Department
	p.Image = d.Image
}
