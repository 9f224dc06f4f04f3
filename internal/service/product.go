package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/storage"
	"github.com/templui/catalog/internal/validation"
)

// imageRoot is the storage directory all product images live below
const imageRoot = "images"

// maxImageSwapAttempts bounds retries when concurrent updates keep replacing the image
const maxImageSwapAttempts = 3

// ListParams are validated listing inputs, see validation.ParseListParams.
type ListParams = validation.ListParams

// ImageUpload is an image file received from a client.
// MimeType is the sniffed type, not the client's Content-Type header.
type ImageUpload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// StorageWriteError reports that an uploaded file could not be persisted.
type StorageWriteError struct {
	Filename string
	Err      error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to store file %q: %v", e.Filename, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

type ProductService struct {
	productRepository repository.ProductRepository
	storage           storage.BlobStore
	purgeOnDelete     bool
}

func NewProductService(productRepository repository.ProductRepository, storage storage.BlobStore, purgeOnDelete bool) *ProductService {
	return &ProductService{
		productRepository: productRepository,
		storage:           storage,
		purgeOnDelete:     purgeOnDelete,
	}
}

func (s *ProductService) List(params ListParams) (*model.ProductPage, error) {
	return s.productRepository.Query(repository.ProductQuery{
		Search:        params.Search,
		SortField:     params.SortField,
		SortDirection: params.SortDirection,
		Page:          params.Page,
		PerPage:       params.PerPage,
	})
}

func (s *ProductService) ByID(id string) (*model.Product, error) {
	return s.productRepository.ByID(id)
}

// Create stores the image first, then inserts the row.
// A failed insert removes the freshly written image directory.
func (s *ProductService) Create(ctx context.Context, userID string, fields validation.ProductFields, image *ImageUpload) (*model.Product, error) {
	now := time.Now()
	product := &model.Product{
		ID:        uuid.New().String(),
		CreatedBy: userID,
		UpdatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.Apply(product)

	var imageDir string
	if image != nil {
		p, err := s.SaveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		imageDir = path.Dir(p)
		product.SetImage(s.storage.URL(p), image.MimeType, image.Size)
	}

	err := s.productRepository.Create(product)
	if err != nil {
		if imageDir != "" {
			s.removeImageDirectory(ctx, imageDir, product.ID)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product created", "product_id", product.ID, "user_id", userID)
	return product, nil
}

// Update writes only the supplied fields. A new image replaces whatever image the
// row holds at write time; that image's directory is deleted only after the row
// update succeeded.
func (s *ProductService) Update(ctx context.Context, product *model.Product, userID string, fields validation.ProductFields, image *ImageUpload) (*model.Product, error) {
	changes := repository.ProductChanges{
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		UpdatedBy:   userID,
	}

	var newDir string
	if image != nil {
		p, err := s.SaveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newDir = path.Dir(p)
		changes.Image = &repository.ProductImage{
			URL:  s.storage.URL(p),
			Mime: image.MimeType,
			Size: image.Size,
		}

		replaced, err := s.swapImage(product, changes)
		if err != nil {
			s.removeImageDirectory(ctx, newDir, product.ID)
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
		if replaced != nil && *replaced != "" {
			if oldDir := s.imageDirectory(*replaced); oldDir != "" && oldDir != newDir {
				s.removeImageDirectory(ctx, oldDir, product.ID)
			}
		}
	} else {
		err := s.productRepository.Update(product.ID, changes)
		if err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	updated, err := s.productRepository.ByID(product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	slog.Info("product updated", "product_id", updated.ID, "user_id", userID, "image_replaced", newDir != "")
	return updated, nil
}

// swapImage writes changes while the row still holds the image last seen, re-reading
// the row when a concurrent update replaced it. It returns the image it replaced.
func (s *ProductService) swapImage(product *model.Product, changes repository.ProductChanges) (*string, error) {
	previous := product.Image
	for attempt := 1; ; attempt++ {
		changes.PreviousImage = previous
		err := s.productRepository.Update(product.ID, changes)
		if err == nil {
			return previous, nil
		}
		if !errors.Is(err, repository.ErrImageChanged) || attempt == maxImageSwapAttempts {
			return nil, err
		}

		current, err := s.productRepository.ByID(product.ID)
		if err != nil {
			return nil, err
		}
		previous = current.Image
	}
}

// Delete removes the row. The image is kept unless purging is enabled.
func (s *ProductService) Delete(ctx context.Context, product *model.Product) error {
	err := s.productRepository.Delete(product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if s.purgeOnDelete && product.HasImage() {
		if dir := s.imageDirectory(*product.Image); dir != "" {
			s.removeImageDirectory(ctx, dir, product.ID)
		}
	}

	slog.Info("product deleted", "product_id", product.ID)
	return nil
}

// SaveImage writes the upload to images/<random>/<filename> and returns its storage path
func (s *ProductService) SaveImage(ctx context.Context, image *ImageUpload) (string, error) {
	filename, err := validation.SanitizeFilename(image.Filename)
	if err != nil {
		return "", &StorageWriteError{Filename: image.Filename, Err: err}
	}

	dir := path.Join(imageRoot, uuid.New().String())

	exists, err := s.storage.Exists(ctx, dir)
	if err != nil {
		return "", &StorageWriteError{Filename: image.Filename, Err: err}
	}
	if !exists {
		err = s.storage.MakeDirectory(ctx, dir, 0755, true)
		if err != nil {
			return "", &StorageWriteError{Filename: image.Filename, Err: err}
		}
	}

	p := path.Join(dir, filename)
	err = s.storage.Write(ctx, p, image.Content, image.MimeType)
	if err != nil {
		s.removeImageDirectory(ctx, dir, "")
		return "", &StorageWriteError{Filename: image.Filename, Err: err}
	}

	return p, nil
}

// imageDirectory maps a stored image URL back to its random directory.
// It returns "" for URLs this store did not produce.
func (s *ProductService) imageDirectory(url string) string {
	p, ok := s.storage.PathFromURL(url)
	if !ok {
		slog.Warn("image url does not belong to storage, leaving it in place", "url", url)
		return ""
	}

	dir := path.Dir(path.Clean("/" + p))
	dir = strings.TrimPrefix(dir, "/")
	if !strings.HasPrefix(dir, imageRoot+"/") || strings.Count(dir, "/") != 1 {
		slog.Warn("image path outside the image root, leaving it in place", "path", p)
		return ""
	}

	return dir
}

func (s *ProductService) removeImageDirectory(ctx context.Context, dir, productID string) {
	err := s.storage.DeleteDirectory(ctx, dir)
	if err != nil {
		slog.Error("failed to delete image directory", "error", err, "path", dir, "product_id", productID)
	}
}
