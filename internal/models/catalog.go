package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID              uuid.UUID `json:"id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	PriceCents      int       `json:"price_cents"`
	DiscountCents   int       `json:"discount_cents,omitempty"`
	DiscountPercent int       `json:"discount_percent,omitempty"`
	Category        string    `json:"category"`
	SubCategory     string    `json:"sub_category,omitempty"`
	Collections     []string  `json:"collections,omitempty"`
	Metal           string    `json:"metal,omitempty"`
	Stock           int       `json:"stock"`
	ImageURLs       []string  `json:"image_urls,omitempty"`
	VideoURL        string    `json:"video_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Slide is a homepage carousel entry managed from the back office.
type Slide struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url,omitempty"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Coupon struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	DiscountType      string    `json:"discount_type"`
	DiscountValue     int       `json:"discount_value"`
	MinimumOrderCents int       `json:"minimum_order_cents,omitempty"`
	UsageLimit        int       `json:"usage_limit"`
	UsedCount         int       `json:"used_count"`
	ValidUntil        time.Time `json:"valid_until"`
	CreatedAt         time.Time `json:"created_at"`
}

const (
	DiscountTypePercent = "percent"
	DiscountTypeFlat    = "flat"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	OrderCount int       `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
}
