package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/category"
	"github.com/tokyogo/backend/internal/service/models/product"
	"github.com/tokyogo/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]product.Product, error)
	SearchProducts(ctx context.Context, query string) ([]product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (int64, error)
	DeactivateProduct(ctx context.Context, id int64) error
}

// ListCategories handles the category listing request.
func ListCategories(w http.ResponseWriter, r *http.Request, service service) {
	categories, err := service.ListCategories(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing categories", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, categories)
}

// ListProducts handles the product listing request, optionally filtered by
// category_id.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httperr.Write(w, errs.NewValidation("invalid category_id"))
			return
		}
		categoryID = parsed
	}

	products, err := service.ListProducts(r.Context(), categoryID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing products", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, products)
}

// SearchProducts handles the product search request.
func SearchProducts(w http.ResponseWriter, r *http.Request, service service) {
	products, err := service.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error searching products", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, products)
}

type createProductResponse struct {
	Success   bool  `json:"success"`
	ProductID int64 `json:"product_id"`
}

// CreateProduct handles the admin product creation request.
func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httperr.Write(w, errs.NewValidation("failed to decode request body"))
		return
	}

	id, err := service.CreateProduct(r.Context(), p)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating product", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, createProductResponse{Success: true, ProductID: id})
}

type deleteProductResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteProduct handles the admin product soft-delete request.
func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.Write(w, errs.NewValidation("invalid product id"))
		return
	}

	if err := service.DeactivateProduct(r.Context(), id); err != nil {
		httperr.Write(w, err)
		slog.Error("Error deactivating product", "product_id", id, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, deleteProductResponse{Success: true, Message: "Товар удалён"})
}
