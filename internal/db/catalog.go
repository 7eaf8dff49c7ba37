package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

// CatalogStore covers the small presentation aggregates: categories and
// homepage slides.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

func (s *CatalogStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, type, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		category.ID, category.Name, nullableText(category.Type), nullableText(category.ImageURL))
	return row.Scan(&category.CreatedAt)
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, type, image_url, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var (
			category models.Category
			ctype    pgtype.Text
			imageURL pgtype.Text
		)
		if err := rows.Scan(&category.ID, &category.Name, &ctype, &imageURL, &category.CreatedAt); err != nil {
			return nil, err
		}
		if ctype.Valid {
			category.Type = ctype.String
		}
		if imageURL.Valid {
			category.ImageURL = imageURL.String
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) CategoryExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE categories SET name = $1, type = $2, image_url = $3 WHERE id = $4`,
		category.Name, nullableText(category.Type), nullableText(category.ImageURL), category.ID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *CatalogStore) CreateSlide(ctx context.Context, slide *models.Slide) error {
	if slide.ID == uuid.Nil {
		slide.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO slides (id, title, image_url, link_url, position, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		slide.ID, slide.Title, slide.ImageURL, nullableText(slide.LinkURL), slide.Position, slide.Active)
	return row.Scan(&slide.CreatedAt)
}

func (s *CatalogStore) ListSlides(ctx context.Context) ([]*models.Slide, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, image_url, link_url, position, active, created_at
		FROM slides ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slides []*models.Slide
	for rows.Next() {
		var (
			slide   models.Slide
			linkURL pgtype.Text
		)
		if err := rows.Scan(&slide.ID, &slide.Title, &slide.ImageURL, &linkURL, &slide.Position, &slide.Active, &slide.CreatedAt); err != nil {
			return nil, err
		}
		if linkURL.Valid {
			slide.LinkURL = linkURL.String
		}
		slides = append(slides, &slide)
	}
	return slides, rows.Err()
}

func (s *CatalogStore) DeleteSlide(ctx context.Context, slideID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM slides WHERE id = $1`, slideID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
