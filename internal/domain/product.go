package domain

// ServerProduct is a product record as returned by the upstream catalog API.
// Its ID is opaque; it must go through identity.StableIdentity before the
// record can be referenced by the cart or the wishlist.
type ServerProduct struct {
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	Price       float64  `json:"price"       validate:"gte=0"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Community   string   `json:"community"`
	Vendor      string   `json:"vendor"`
	Stock       *int     `json:"stock,omitempty"       validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating,omitempty"      validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int     `json:"reviewCount,omitempty" validate:"omitempty,gte=0"`
	LikeCount   *int     `json:"likeCount,omitempty"   validate:"omitempty,gte=0"`
}

// Product is a server record after identity mapping. It is the input of
// cart and wishlist operations.
type Product struct {
	ID          uint32   `json:"id"`
	ServerID    string   `json:"serverId"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image"`
	Category    string   `json:"category,omitempty"`
	Community   string   `json:"community"`
	Vendor      string   `json:"vendor,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	LikeCount   *int     `json:"likeCount,omitempty"`
}
