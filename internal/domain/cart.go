package domain

// CartLine is a quantity-tracked snapshot of a product taken when it was
// first added to the cart. Lines are unique per (ProductID, Community).
//
// The JSON names are the persisted slot format and must not change.
type CartLine struct {
	ProductID uint32  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Community string  `json:"community"`
	Quantity  int     `json:"quantity"`
	LikeCount *int    `json:"likeCount,omitempty"`
}

// Subtotal returns Price × Quantity.
func (l CartLine) Subtotal() float64 { return l.Price * float64(l.Quantity) }
