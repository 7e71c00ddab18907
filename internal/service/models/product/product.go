package product

// Product is a catalog entry. Products are soft-deleted (deactivated) rather
// than removed so historical order snapshots keep referencing a real row.
type Product struct {
	ID          int64   `json:"id"`
	CategoryID  int64   `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    *string `json:"image_url"`
	Badge       *string `json:"badge"`
	IsActive    bool    `json:"-"`
}
