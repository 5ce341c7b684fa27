package transport

import (
	"net/http"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/middleware"
	"listing-review/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductDetailsRequest is the editable part of a product as sent by clients
type ProductDetailsRequest struct {
	ID                 string  `json:"id"`
	ProductName        string  `json:"productName" validate:"required"`
	Price              float64 `json:"price" validate:"gte=0,lte=9999999999.99,cents"`
	ProductDescription string  `json:"productDescription"`
	Department         string  `json:"department"`
	Image              string  `json:"image"`
}

func (p ProductDetailsRequest) details() domain.ProductDetails {
	return domain.ProductDetails{
		ID:                 p.ID,
		ProductName:        p.ProductName,
		Price:              p.Price,
		ProductDescription: p.ProductDescription,
		Department:         p.Department,
		Image:              p.Image,
	}
}

// ProductHandler serves the Product Store
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// RegisterRoutes registers the product routes. Reads are open to any
// authenticated role, writes need SaveProductDirect.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(authz.ViewProducts, h.logger))
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(authz.SaveProductDirect, h.logger))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
		})
	})
}

// List returns every product
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductDetailsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "invalid request body")
		return
	}

	product, err := h.products.Create(r.Context(), req.details())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to create product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update overwrites the editable fields of a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductDetailsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "invalid request body")
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.details())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
