package model

import "time"

// Product is one catalog item. Price is stored as decimal text in BRL; the
// pricing use case converts it to stars for display.
type Product struct {
	ID           string
	Name         string
	Description  string
	Price        string
	Image        string
	Category     Category
	DownloadLink string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewProduct(id, name, description, price string, category Category) *Product {
	now := time.Now()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
