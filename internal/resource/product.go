package resource

import (
	"time"

	"github.com/templui/catalog/internal/markdown"
	"github.com/templui/catalog/internal/model"
)

// TimeFormat is how timestamps appear in product payloads (UTC)
const TimeFormat = "2006-01-02 15:04:05"

// ProductListItem is the list view of a product
type ProductListItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  *string `json:"image_url"`
	UpdatedAt string  `json:"updated_at"`
}

// ProductDetail is the full view of a product
type ProductDetail struct {
	ProductListItem
	Description     string  `json:"description"`
	DescriptionHTML string  `json:"description_html"`
	ImageMime       *string `json:"image_mime"`
	ImageSize       *int64  `json:"image_size"`
	CreatedBy       string  `json:"created_by"`
	UpdatedBy       string  `json:"updated_by"`
	CreatedAt       string  `json:"created_at"`
}

type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

type Collection[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// Item wraps a single resource in a data envelope
type Item[T any] struct {
	Data T `json:"data"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func ProductItem(p *model.Product) ProductListItem {
	return ProductListItem{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		ImageURL:  p.Image,
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func Product(p *model.Product, md *markdown.Parser) Item[ProductDetail] {
	return Item[ProductDetail]{Data: ProductDetail{
		ProductListItem: ProductItem(p),
		Description:     p.Description,
		DescriptionHTML: md.Render(p.Description),
		ImageMime:       p.ImageMime,
		ImageSize:       p.ImageSize,
		CreatedBy:       p.CreatedBy,
		UpdatedBy:       p.UpdatedBy,
		CreatedAt:       formatTime(p.CreatedAt),
	}}
}

func ProductCollection(page *model.ProductPage) Collection[ProductListItem] {
	items := make([]ProductListItem, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, ProductItem(p))
	}

	return Collection[ProductListItem]{
		Data: items,
		Meta: Meta{
			CurrentPage: page.Page,
			LastPage:    page.LastPage,
			PerPage:     page.PerPage,
			Total:       page.Total,
			From:        page.From(),
			To:          page.To(),
		},
	}
}
