package services

import (
	"context"
	"log"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

type ProductStore interface {
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
}

type CatalogService struct {
	store     ProductStore
	validator *ValidationHelper
}

// CreateProductRequest represents a new catalog item
// @Description Product creation request structure
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=120" example:"Wireless Headphones"`
	Description string          `json:"description" validate:"max=1000" example:"Over-ear, noise cancelling"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0" swaggertype:"string" example:"50.00"`
	Currency    models.Currency `json:"currency" validate:"required,oneof=FC USD" example:"FC"`
	Stock       int             `json:"stock" validate:"gte=0" example:"10"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
}

func NewCatalogService(store ProductStore) *CatalogService {
	return &CatalogService{
		store:     store,
		validator: NewValidationHelper(),
	}
}

// ListProducts returns the active catalog
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} models.ProductResponse
// @Router /products [get]
func (s *CatalogService) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListActiveProducts(r.Context())
	if err != nil {
		SendLedgerError(w, "CATALOG", err)
		return
	}

	resp := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, products[i].Response())
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateProduct adds a catalog item
// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/products [post]
func (s *CatalogService) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !s.validator.DecodeRequest(w, r, "CATALOG", &req) {
		return
	}

	if !models.HasMoneyScale(req.Price) {
		SendLedgerError(w, "CATALOG", ledger.ErrInvalidAmount)
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := s.store.CreateProduct(r.Context(), product); err != nil {
		SendLedgerError(w, "CATALOG", err)
		return
	}

	log.Printf("[CATALOG] Product %s created: %s at %s %s", product.ID, product.Name, models.FormatMoney(product.Price), product.Currency)
	writeJSON(w, http.StatusCreated, product.Response())
}
