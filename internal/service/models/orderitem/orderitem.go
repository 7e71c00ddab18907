package orderitem

// OrderItem is a snapshot of one product's name, price and quantity at order
// time. It stays valid even after the product is deactivated or repriced.
type OrderItem struct {
	ID        int64   `json:"-"`
	OrderID   int64   `json:"-"`
	ProductID int64   `json:"product_id" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
}

// LineTotal is the item's contribution to the order total.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
