package domain

import "time"

// Candle is a catalog product. Stock is nullable: NULL means the candle
// is made to order and never runs out.
type Candle struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Price       int64   `db:"price" json:"price"`
	Weight      *int32  `db:"weight" json:"weight,omitempty"`
	Height      *int32  `db:"height" json:"height,omitempty"`
	Width       *int32  `db:"width" json:"width,omitempty"`
	Category    string  `db:"category" json:"category,omitempty"`
	Fragrance   string  `db:"fragrance" json:"fragrance,omitempty"`
	Color       string  `db:"color" json:"color,omitempty"`
	BurnTime    string  `db:"burn_time" json:"burnTime,omitempty"`
	Material    string  `db:"material" json:"material,omitempty"`
	Stock       *int64  `db:"stock" json:"stock"`
	Photo       string  `db:"photo" json:"photo,omitempty"`
	Active      bool    `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HasStock reports whether quantity units can be taken from the current
// stock. Unlimited (nil) stock always passes.
func (c *Candle) HasStock(quantity int32) bool {
	return c.Stock == nil || *c.Stock >= int64(quantity)
}

type UpdateCandleInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Weight      *int32  `json:"weight"`
	Height      *int32  `json:"height"`
	Width       *int32  `json:"width"`
	Category    *string `json:"category"`
	Fragrance   *string `json:"fragrance"`
	Color       *string `json:"color"`
	BurnTime    *string `json:"burnTime"`
	Material    *string `json:"material"`
	Stock       *int64  `json:"stock"`
	Photo       *string `json:"photo"`
	Active      *bool   `json:"active"`
}
