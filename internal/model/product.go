package model

import (
	"time"
)

type Product struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       float64   `db:"price"`
	Image       *string   `db:"image"`      // Public URL, nil when no image
	ImageMime   *string   `db:"image_mime"` // Set iff Image is set
	ImageSize   *int64    `db:"image_size"` // Set iff Image is set
	CreatedBy   string    `db:"created_by"`
	UpdatedBy   string    `db:"updated_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p *Product) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// SetImage records an uploaded image. All three fields move together.
func (p *Product) SetImage(url, mime string, size int64) {
	p.Image = &url
	p.ImageMime = &mime
	p.ImageSize = &size
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items    []*Product
	Total    int
	Page     int
	PerPage  int
	LastPage int
}

// From returns the 1-based position of the first item, 0 for an empty page.
func (p *ProductPage) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To returns the 1-based position of the last item, 0 for an empty page.
func (p *ProductPage) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
