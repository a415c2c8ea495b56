// Catalog HTTP handlers.
//
// This file exposes the cached product catalog:
//   - GET  /catalog/products              (paginated, upstream order)
//   - GET  /catalog/products/{id}         (one product by identity)
//   - GET  /catalog/search?q=&k=          (top-k matches, best first)
//   - POST /catalog/products/{id}/visit   (forward a page view upstream)
//
// Every endpoint answers 503 when the server runs without a catalog.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/utils"
)

const (
	defaultSearchK = 10
	maxSearchK     = 50
)

// ListProductsResponse wraps a page of products and pagination information.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination utils.Page       `json:"pagination"`
}

// SearchResponse holds search hits, best first.
type SearchResponse struct {
	Query string        `json:"query"`
	Hits  []catalog.Hit `json:"hits"`
}

// requireCatalog answers 503 when no catalog is configured.
func (h *Handlers) requireCatalog(c *gin.Context) bool {
	if h.catalog == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "catalog not configured")
		return false
	}
	return true
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List catalog products (paginated)
// @Tags        Catalog
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListProductsResponse
// @Failure     503  {object} handlers.ErrorResponse "Catalog not configured"
// @Router      /catalog/products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))
	items, meta := utils.Paginate(h.catalog.All(), page, pageSize)
	ok(c, http.StatusOK, ListProductsResponse{Products: items, Pagination: meta})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get one catalog product
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  int  true  "Product identity"  example(1779518119)
//
// @Success     200  {object} domain.Product
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown product"
// @Failure     503  {object} handlers.ErrorResponse "Catalog not configured"
// @Router      /catalog/products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	id, valid := productParam(c)
	if !valid {
		return
	}
	p, found := h.catalog.Lookup(id)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeProductNotFound, "product not found")
		return
	}
	ok(c, http.StatusOK, p)
}

// SearchProducts godoc
// @ID          searchProducts
// @Summary     Search the catalog
// @Description Ranks products by token overlap with the query (name, description, category, vendor, community).
// @Tags        Catalog
// @Produce     json
//
// @Param       q  query  string  true   "Query text"                example(glazed mug)
// @Param       k  query  int     false  "Maximum number of hits"    minimum(1) maximum(50) default(10)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Catalog not configured"
// @Router      /catalog/search [get]
func (h *Handlers) SearchProducts(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q required")
		return
	}
	k := utils.AtoiDefault(c.Query("k"), defaultSearchK)
	if k < 1 {
		k = 1
	}
	if k > maxSearchK {
		k = maxSearchK
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Hits: h.catalog.Search(q, k)})
}

// RecordVisit godoc
// @ID          recordVisit
// @Summary     Record a product page view
// @Description Forwards the visit to the upstream product API.
// @Tags        Catalog
//
// @Param       id  path  int  true  "Product identity"  example(1779518119)
//
// @Success     204  "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown product"
// @Failure     502  {object} handlers.ErrorResponse "Upstream error"
// @Failure     503  {object} handlers.ErrorResponse "Catalog not configured"
// @Router      /catalog/products/{id}/visit [post]
func (h *Handlers) RecordVisit(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	id, valid := productParam(c)
	if !valid {
		return
	}
	err := h.catalog.RecordVisit(c.Request.Context(), id)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, catalog.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeProductNotFound, "product not found")
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	}
}
