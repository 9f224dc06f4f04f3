package validation

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
)

// ProductFields holds the validated product inputs. nil means "not supplied".
type ProductFields struct {
	Title       *string
	Description *string
	Price       *float64
}

// Apply copies every supplied field onto p.
func (f ProductFields) Apply(p *model.Product) {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
}

type createProductInput struct {
	Title       *string  `json:"title" validate:"required,min=1,max=2000"`
	Description *string  `json:"description" validate:"omitnil,max=65535"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
}

type updateProductInput struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=2000"`
	Description *string  `json:"description" validate:"omitnil,max=65535"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
}

// ParseProductForm validates product fields from a form (or a JSON body flattened to values).
// With partial set, as for updates, title may be omitted. Unknown keys are ignored.
func ParseProductForm(values url.Values, partial bool) (ProductFields, error) {
	verr := &ValidationError{}
	var fields ProductFields

	if _, ok := values["title"]; ok {
		title := strings.TrimSpace(values.Get("title"))
		fields.Title = &title
	}
	if _, ok := values["description"]; ok {
		description := strings.TrimSpace(values.Get("description"))
		fields.Description = &description
	}
	if raw := strings.TrimSpace(values.Get("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			verr.Add("price", "The price field must be a number.")
		} else {
			fields.Price = &price
		}
	}

	var ruleErr *ValidationError
	if partial {
		ruleErr = check(updateProductInput(fields))
	} else {
		ruleErr = check(createProductInput(fields))
	}
	if ruleErr != nil {
		for field, msg := range ruleErr.Fields {
			verr.Add(field, msg)
		}
	}

	if err := orNil(verr); err != nil {
		return ProductFields{}, err
	}
	return fields, nil
}

// ListParams are the validated listing inputs.
type ListParams struct {
	Page          int
	PerPage       int
	Search        string
	SortField     string
	SortDirection string
}

type listInput struct {
	Page          int    `json:"page" validate:"gte=1"`
	PerPage       int    `json:"per_page" validate:"gte=1"`
	SortField     string `json:"sort_field" validate:"sortfield"`
	SortDirection string `json:"sort_direction" validate:"oneof=asc desc"`
}

// ParseListParams validates listing query parameters, filling defaults for absent ones.
// perPageMax bounds per_page; zero disables the bound.
func ParseListParams(values url.Values, perPageMax int) (ListParams, error) {
	verr := &ValidationError{}

	in := listInput{
		Page:          1,
		PerPage:       repository.DefaultProductPerPage,
		SortField:     repository.DefaultProductSortField,
		SortDirection: repository.SortDesc,
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("page", "The page field must be an integer.")
		} else {
			in.Page = n
		}
	}
	if raw := strings.TrimSpace(values.Get("per_page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("per_page", "The per page field must be an integer.")
		} else {
			in.PerPage = n
		}
	}
	if raw := strings.TrimSpace(values.Get("sort_field")); raw != "" {
		in.SortField = raw
	}
	if raw := strings.TrimSpace(values.Get("sort_direction")); raw != "" {
		in.SortDirection = strings.ToLower(raw)
	}

	if ruleErr := check(in); ruleErr != nil {
		for field, msg := range ruleErr.Fields {
			verr.Add(field, msg)
		}
	}
	if perPageMax > 0 && in.PerPage > perPageMax {
		verr.Add("per_page", "The per page field must not be greater than "+strconv.Itoa(perPageMax)+".")
	}

	if err := orNil(verr); err != nil {
		return ListParams{}, err
	}

	return ListParams{
		Page:          in.Page,
		PerPage:       in.PerPage,
		Search:        values.Get("search"),
		SortField:     in.SortField,
		SortDirection: in.SortDirection,
	}, nil
}
