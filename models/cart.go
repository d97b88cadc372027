package models

import "time"

// ProductSnapshot is the denormalized product data a cart line keeps for
// display. It is not authoritative; the checkout re-reads the product.
type ProductSnapshot struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
	Image string  `json:"image,omitempty" bson:"image,omitempty"`
}

type CartItem struct {
	ProductID string          `json:"product_id" bson:"product_id"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Snapshot  ProductSnapshot `json:"snapshot" bson:"snapshot"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subtotal sums price-at-snapshot times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Snapshot.Price * float64(item.Quantity)
	}
	return total
}
