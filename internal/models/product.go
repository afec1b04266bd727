package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item bought with wallet funds.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    Currency        `json:"currency" db:"currency"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty" db:"image_url"`
	IsActive    bool            `json:"isActive" db:"is_active"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" example:"Wireless Headphones"`
	Description string    `json:"description"`
	Price       string    `json:"price" example:"50.00"`
	Currency    Currency  `json:"currency" example:"FC"`
	Stock       int       `json:"stock" example:"10"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Product) Response() ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatMoney(p.Price),
		Currency:    p.Currency,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}
