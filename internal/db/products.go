package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `
	id, sku, name, slug, description, price_cents, discount_cents, discount_percent,
	category, sub_category, collections, metal, stock, image_urls, video_url,
	created_at, updated_at`

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (id, sku, name, slug, description, price_cents, discount_cents,
			discount_percent, category, sub_category, collections, metal, stock, image_urls, video_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		product.ID, product.SKU, product.Name, product.Slug, product.Description,
		product.PriceCents, product.DiscountCents, product.DiscountPercent,
		product.Category, product.SubCategory, product.Collections, product.Metal,
		product.Stock, product.ImageURLs, nullableText(product.VideoURL))
	return row.Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (s *ProductStore) GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func (s *ProductStore) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT`+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET sku = $1, name = $2, slug = $3, description = $4, price_cents = $5,
		    discount_cents = $6, discount_percent = $7, category = $8, sub_category = $9,
		    collections = $10, metal = $11, stock = $12, image_urls = $13, video_url = $14,
		    updated_at = NOW()
		WHERE id = $15`,
		product.SKU, product.Name, product.Slug, product.Description, product.PriceCents,
		product.DiscountCents, product.DiscountPercent, product.Category, product.SubCategory,
		product.Collections, product.Metal, product.Stock, product.ImageURLs,
		nullableText(product.VideoURL), product.ID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, productID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetStock overwrites the stock count.
func (s *ProductStore) SetStock(ctx context.Context, productID uuid.UUID, stock int) error {
	cmdTag, err := s.pool.Exec(ctx, `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, productID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AdjustStock adds delta to the stock count, refusing to go negative.
func (s *ProductStore) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0`, delta, productID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("stock adjustment of %d rejected for product %s", delta, productID)
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		product     models.Product
		description pgtype.Text
		subCategory pgtype.Text
		metal       pgtype.Text
		videoURL    pgtype.Text
	)
	err := row.Scan(
		&product.ID, &product.SKU, &product.Name, &product.Slug, &description,
		&product.PriceCents, &product.DiscountCents, &product.DiscountPercent,
		&product.Category, &subCategory, &product.Collections, &metal,
		&product.Stock, &product.ImageURLs, &videoURL,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		product.Description = description.String
	}
	if subCategory.Valid {
		product.SubCategory = subCategory.String
	}
	if metal.Valid {
		product.Metal = metal.String
	}
	if videoURL.Valid {
		product.VideoURL = videoURL.String
	}
	return &product, nil
}

func nullableText(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}
