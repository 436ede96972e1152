package httpserver

import (
	"net/http"

	"devconnect/internal/service"
)

func handleShop(catalog *service.CatalogService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := catalog.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"products": products})
	}
}

func handlePromotions(catalog *service.CatalogService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := catalog.Promotions(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"products": products})
	}
}

func handleProductPage(catalog *service.CatalogService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "productID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
			return
		}
		p, err := catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"product": p})
	}
}

// @Summary      List products
// @Tags         shop
// @Produce      json
// @Param        promotions query bool false "Only discounted products"
// @Success      200  {array}   service.ProductView
// @Router       /api/products [get]
func handleListProducts(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := catalog.List
		if r.URL.Query().Get("promotions") == "true" {
			list = catalog.Promotions
		}
		products, err := list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	}
}

// @Summary      Get a product
// @Tags         shop
// @Produce      json
// @Param        productID path int true "Product ID"
// @Success      200  {object}  service.ProductView
// @Failure      404  {object}  map[string]string
// @Router       /api/products/{productID} [get]
func handleGetProduct(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "productID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
			return
		}
		p, err := catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
