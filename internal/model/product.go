package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the fixed set of product categories.
type Category string

const (
	CategoryClothing    Category = "Clothing"
	CategoryShoes       Category = "Shoes"
	CategoryAccessories Category = "Accessories"
	CategoryElectronics Category = "Electronics"
)

// Categories lists every valid category value.
func Categories() []Category {
	return []Category{
		CategoryClothing,
		CategoryShoes,
		CategoryAccessories,
		CategoryElectronics,
	}
}

// Validate implements the Enum contract used by the "enum" validator tag.
func (c Category) Validate() error {
	switch c {
	case CategoryClothing, CategoryShoes, CategoryAccessories, CategoryElectronics:
		return nil
	}
	return fmt.Errorf("invalid category: %q", string(c))
}

func (c Category) String() string {
	return string(c)
}

type Product struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Category     Category  `json:"category"`
	Price        float64   `json:"price"`
	Availability bool      `json:"availability"`
	Slug         string    `json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
