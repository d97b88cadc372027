package models

import "time"

// Product is a catalog entry. Stock and MinStock are mutated independently;
// order placement decrements Stock through a conditional update only.
type Product struct {
	ID          string     `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description" bson:"description"`
	Price       float64    `json:"price" bson:"price"`
	Stock       int        `json:"stock" bson:"stock"`
	MinStock    int        `json:"min_stock" bson:"min_stock"`
	CategoryID  string     `json:"category_id" bson:"category_id"`
	Images      []string   `json:"images" bson:"images"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	DeletedAt   *time.Time `json:"-" bson:"deleted_at,omitempty"`
}

// IsOutOfStock reports whether the product has no sellable stock.
func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}

// IsLowStock reports whether stock is positive but at or below the
// reorder threshold. Out-of-stock products are not low-stock.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.MinStock
}

type Category struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
