package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/logging"
	"github.com/jeniistore/jenii-admin/internal/models"
)

type productStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, productID uuid.UUID) error
	SetStock(ctx context.Context, productID uuid.UUID, stock int) error
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error
}

type catalogStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CategoryExists(ctx context.Context, name string) (bool, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	CreateSlide(ctx context.Context, slide *models.Slide) error
	ListSlides(ctx context.Context) ([]*models.Slide, error)
	DeleteSlide(ctx context.Context, slideID uuid.UUID) error
}

// CatalogService manages products, categories and homepage slides.
type CatalogService struct {
	products productStore
	catalog  catalogStore
	logger   *slog.Logger
}

func NewCatalogService(products productStore, catalog catalogStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *CatalogService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type ProductInput struct {
	SKU           string   `json:"sku"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PriceCents    int      `json:"price_cents"`
	DiscountCents int      `json:"discount_cents"`
	Category      string   `json:"category"`
	SubCategory   string   `json:"sub_category"`
	Collections   []string `json:"collections"`
	Metal         string   `json:"metal"`
	Stock         int      `json:"stock"`
	ImageURLs     []string `json:"image_urls"`
	VideoURL      string   `json:"video_url"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := s.validateProductInput(ctx, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:              uuid.New(),
		SKU:             strings.TrimSpace(input.SKU),
		Name:            strings.TrimSpace(input.Name),
		Slug:            Slugify(input.Name),
		Description:     input.Description,
		PriceCents:      input.PriceCents,
		DiscountCents:   input.DiscountCents,
		DiscountPercent: discountPercent(input.PriceCents, input.DiscountCents),
		Category:        input.Category,
		SubCategory:     input.SubCategory,
		Collections:     input.Collections,
		Metal:           input.Metal,
		Stock:           input.Stock,
		ImageURLs:       input.ImageURLs,
		VideoURL:        input.VideoURL,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.loggerFromContext(ctx).Info("product created", "product_id", product.ID, "sku", product.SKU, "slug", product.Slug)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := s.validateProductInput(ctx, input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.SKU = strings.TrimSpace(input.SKU)
	product.Name = strings.TrimSpace(input.Name)
	product.Slug = Slugify(input.Name)
	product.Description = input.Description
	product.PriceCents = input.PriceCents
	product.DiscountCents = input.DiscountCents
	product.DiscountPercent = discountPercent(input.PriceCents, input.DiscountCents)
	product.Category = input.Category
	product.SubCategory = input.SubCategory
	product.Collections = input.Collections
	product.Metal = input.Metal
	product.Stock = input.Stock
	product.ImageURLs = input.ImageURLs
	product.VideoURL = input.VideoURL

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.loggerFromContext(ctx).Info("product deleted", "product_id", productID)
	return nil
}

// UpdateInventory sets the absolute stock level or applies a delta, never
// both in the same call.
func (s *CatalogService) UpdateInventory(ctx context.Context, productID uuid.UUID, stock *int, delta *int) (*models.Product, error) {
	switch {
	case stock != nil && delta != nil:
		return nil, validationError("provide either stock or delta, not both")
	case stock != nil:
		if *stock < 0 {
			return nil, validationError("stock must not be negative")
		}
		if err := s.products.SetStock(ctx, productID, *stock); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to set stock: %w", err)
		}
	case delta != nil:
		if err := s.products.AdjustStock(ctx, productID, *delta); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Also hit when the delta would push stock negative.
				return nil, validationError("stock adjustment not possible")
			}
			return nil, fmt.Errorf("failed to adjust stock: %w", err)
		}
	default:
		return nil, validationError("provide stock or delta")
	}

	return s.GetProduct(ctx, productID)
}

func (s *CatalogService) validateProductInput(ctx context.Context, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationError("name is required")
	}
	if input.PriceCents <= 0 {
		return validationError("price must be positive")
	}
	if input.DiscountCents < 0 {
		return validationError("discount must not be negative")
	}
	if input.DiscountCents >= input.PriceCents {
		return validationError("discount must be less than price")
	}
	if input.Stock < 0 {
		return validationError("stock must not be negative")
	}
	if strings.TrimSpace(input.Category) == "" {
		return validationError("category is required")
	}

	exists, err := s.catalog.CategoryExists(ctx, input.Category)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return validationError("unknown category %q", input.Category)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return validationError("name is required")
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := s.catalog.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return validationError("name is required")
	}
	if err := s.catalog.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateSlide(ctx context.Context, slide *models.Slide) error {
	if strings.TrimSpace(slide.ImageURL) == "" {
		return validationError("image_url is required")
	}
	if slide.ID == uuid.Nil {
		slide.ID = uuid.New()
	}
	if err := s.catalog.CreateSlide(ctx, slide); err != nil {
		return fmt.Errorf("failed to create slide: %w", err)
	}
	return nil
}

func (s *CatalogService) ListSlides(ctx context.Context) ([]*models.Slide, error) {
	slides, err := s.catalog.ListSlides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	return slides, nil
}

func (s *CatalogService) DeleteSlide(ctx context.Context, slideID uuid.UUID) error {
	if err := s.catalog.DeleteSlide(ctx, slideID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete slide: %w", err)
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL slug for a product name: lowercase, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugUnsafe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// discountPercent is the rounded-up percentage shown on product cards.
func discountPercent(priceCents, discountCents int) int {
	if priceCents <= 0 || discountCents <= 0 {
		return 0
	}
	return (discountCents*100 + priceCents - 1) / priceCents
}
