package handler

import (
	"net/http"

	"github.com/templui/catalog/internal/ctxkeys"
	"github.com/templui/catalog/internal/httpx"
	"github.com/templui/catalog/internal/markdown"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/resource"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/validation"
)

type ProductHandler struct {
	productService *service.ProductService
	markdown       *markdown.Parser
	uploadMaxSize  int64
	perPageMax     int
}

func NewProductHandler(productService *service.ProductService, markdown *markdown.Parser, uploadMaxSize int64, perPageMax int) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		markdown:       markdown,
		uploadMaxSize:  uploadMaxSize,
		perPageMax:     perPageMax,
	}
}

// Index lists products: GET /api/products?search=&sort_field=&sort_direction=&per_page=&page=
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	params, err := validation.ParseListParams(r.URL.Query(), h.perPageMax)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to list products.")
		return
	}

	page, err := h.productService.List(params)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to list products.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resource.ProductCollection(page))
}

func (h *ProductHandler) Store(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	in, err := parseInput(w, r, h.uploadMaxSize)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to create product.")
		return
	}
	defer in.Close()

	fields, err := validation.ParseProductForm(in.Values, false)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to create product.")
		return
	}

	product, err := h.productService.Create(r.Context(), user.ID, fields, in.Image)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to create product.")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, resource.Product(product, h.markdown))
}

func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	product, ok := h.product(w, r)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resource.Product(product, h.markdown))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	product, ok := h.product(w, r)
	if !ok {
		return
	}

	in, err := parseInput(w, r, h.uploadMaxSize)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to update product.")
		return
	}
	defer in.Close()

	fields, err := validation.ParseProductForm(in.Values, true)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to update product.")
		return
	}

	product, err = h.productService.Update(r.Context(), product, user.ID, fields, in.Image)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to update product.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resource.Product(product, h.markdown))
}

func (h *ProductHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	product, ok := h.product(w, r)
	if !ok {
		return
	}

	err := h.productService.Delete(r.Context(), product)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to delete product.")
		return
	}

	httpx.NoContent(w)
}

// product resolves {id}, writing a 404 when it does not exist
func (h *ProductHandler) product(w http.ResponseWriter, r *http.Request) (*model.Product, bool) {
	product, err := h.productService.ByID(r.PathValue("id"))
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to load product.")
		return nil, false
	}
	return product, true
}
