package models

import "time"

// Product represents a product in the catalog.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required"`
	Price        float64   `json:"price" gorm:"not null" validate:"gt=0"`
	Availability bool      `json:"availability" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductSummary is the projection returned when listing products.
type ProductSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
}

// Summary projects the product onto the listing columns.
func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Availability: p.Availability,
	}
}
