package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID          string
	Name        string
	Price       Money
	Image       string
	Category    string
	Subcategory string
	Description string

	// Attributes carries category-specific fields (jewelry metal/purity,
	// apparel material/fit) without a schema per category.
	Attributes map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}
