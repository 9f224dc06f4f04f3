package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/catalog/internal/model"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultProductSortField = "created_at"
	DefaultProductPerPage   = 10
)

// ProductSortFields maps accepted sort_field values to columns.
// Only these ever reach an ORDER BY clause.
var ProductSortFields = map[string]string{
	"id":         "id",
	"title":      "title",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrImageChanged means the row no longer holds the image a replacement expected.
	ErrImageChanged = errors.New("product image changed concurrently")
)

// ProductQuery filters, orders and pages a product listing.
type ProductQuery struct {
	Search        string
	SortField     string
	SortDirection string
	Page          int
	PerPage       int
}

// ProductImage is a stored image's public URL and metadata.
type ProductImage struct {
	URL  string
	Mime string
	Size int64
}

// ProductChanges lists the columns an update writes; nil fields are left as stored.
// Image replaces all three image columns, guarded by PreviousImage (nil means the
// row must have no image).
type ProductChanges struct {
	Title         *string
	Description   *string
	Price         *float64
	Image         *ProductImage
	PreviousImage *string
	UpdatedBy     string
}

type ProductRepository interface {
	Create(product *model.Product) error
	ByID(id string) (*model.Product, error)
	Query(q ProductQuery) (*model.ProductPage, error)
	Update(id string, changes ProductChanges) error
	Delete(id string) error
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	query := `INSERT INTO products (id, title, description, price, image, image_mime, image_size, created_by, updated_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.Image,
		product.ImageMime,
		product.ImageSize,
		product.CreatedBy,
		product.UpdatedBy,
		product.CreatedAt,
		product.UpdatedAt,
	)

	return err
}

func (r *productRepository) ByID(id string) (*model.Product, error) {
	product := &model.Product{}
	query := `SELECT * FROM products WHERE id = $1`

	err := r.db.Get(product, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) Query(q ProductQuery) (*model.ProductPage, error) {
	q = normalizeProductQuery(q)

	// Search is a literal, case-sensitive substring; LIKE folds case on sqlite
	pattern := q.Search
	where := `WHERE ` + r.substringFunc() + `(title, $1) > 0`

	var total int
	err := r.db.Get(&total, `SELECT COUNT(*) FROM products `+where, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := fmt.Sprintf("ORDER BY %s %s, id ASC", ProductSortFields[q.SortField], strings.ToUpper(q.SortDirection))
	query := `SELECT * FROM products ` + where + ` ` + orderBy + ` LIMIT $2 OFFSET $3`

	products := []*model.Product{}
	err = r.db.Select(&products, query, pattern, q.PerPage, (q.Page-1)*q.PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &model.ProductPage{
		Items:    products,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: lastPage(total, q.PerPage),
	}, nil
}

func (r *productRepository) Update(id string, changes ProductChanges) error {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Title != nil {
		set("title", *changes.Title)
	}
	if changes.Description != nil {
		set("description", *changes.Description)
	}
	if changes.Price != nil {
		set("price", *changes.Price)
	}
	if changes.Image != nil {
		set("image", changes.Image.URL)
		set("image_mime", changes.Image.Mime)
		set("image_size", changes.Image.Size)
	}
	set("updated_by", changes.UpdatedBy)
	set("updated_at", time.Now())

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if changes.Image != nil {
		if changes.PreviousImage == nil {
			where += " AND image IS NULL"
		} else {
			args = append(args, *changes.PreviousImage)
			where += fmt.Sprintf(" AND image = $%d", len(args))
		}
	}

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE ` + where
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		if changes.Image == nil {
			return ErrProductNotFound
		}
		_, err = r.ByID(id)
		if err != nil {
			return err
		}
		return ErrImageChanged
	}

	return nil
}

func (r *productRepository) Delete(id string) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProductNotFound
	}

	return nil
}

// normalizeProductQuery fills defaults and drops anything outside the allow lists.
func normalizeProductQuery(q ProductQuery) ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultProductPerPage
	}
	if _, ok := ProductSortFields[q.SortField]; !ok {
		q.SortField = DefaultProductSortField
	}
	q.SortDirection = strings.ToLower(q.SortDirection)
	if q.SortDirection != SortAsc && q.SortDirection != SortDesc {
		q.SortDirection = SortDesc
	}
	return q
}

// substringFunc names the 1-based substring position function of the driver
func (r *productRepository) substringFunc() string {
	if r.db.DriverName() == "sqlite" {
		return "instr"
	}
	return "strpos"
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
