// Cart HTTP handlers.
//
// This file exposes REST endpoints for the session cart:
//   - GET    /cart                          (lines and totals, ETag support)
//   - POST   /cart/items                    (add one unit of a product)
//   - PUT    /cart/items/{id}/quantity      (set a line quantity; <= 0 removes)
//   - DELETE /cart/items/{id}               (remove every line of a product)
//   - DELETE /cart                          (empty the cart)
//
// Cart operations never fail once the product is resolved; every mutation
// answers with the resulting cart.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/identity"
	"github.com/tbourn/marketplace-state/internal/session"
)

//
// DTOs
//

// AddCartItemRequest names the product to add. The catalog record is used
// when the product is known to it; otherwise the snapshot fields of the
// payload (name and price at least) describe the product.
type AddCartItemRequest struct {
	// ProductID is the numeric product identity.
	ProductID uint32 `json:"productId" example:"1779518119"`
	// ServerID is the opaque upstream id; it is mapped to ProductID when
	// ProductID is zero.
	ServerID  string   `json:"serverId" example:"64f1c2e9a7b3d5"`
	Name      string   `json:"name" binding:"max=255" example:"Glazed mug"`
	Price     *float64 `json:"price" binding:"omitempty,gte=0" example:"249.9"`
	Image     string   `json:"image" example:"https://cdn.example.com/mug.jpg"`
	Community string   `json:"community" example:"ceramics"`
	LikeCount *int     `json:"likeCount" binding:"omitempty,gte=0" example:"12"`
}

// SetQuantityRequest is the JSON payload for PUT /cart/items/{id}/quantity.
type SetQuantityRequest struct {
	// Quantity is the new line quantity. Zero or less removes the product.
	Quantity *int `json:"quantity" binding:"required" example:"3"`
}

// CartResponse is the cart view returned by every cart endpoint.
type CartResponse struct {
	Lines      []domain.CartLine `json:"lines"`
	TotalItems int               `json:"totalItems"`
	TotalPrice float64           `json:"totalPrice"`
}

//
// Helpers
//

func cartView(sess *session.Session) CartResponse {
	return CartResponse{
		Lines:      sess.Cart.Lines(),
		TotalItems: sess.Cart.TotalItemCount(),
		TotalPrice: sess.Cart.TotalPrice(),
	}
}

// productParam parses the {id} path parameter as a product identity.
func productParam(c *gin.Context) (uint32, bool) {
	id, err := identity.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be an unsigned 32-bit integer")
		return 0, false
	}
	return id, true
}

// resolveProduct turns an AddCartItemRequest into the product snapshot to
// store.
func (h *Handlers) resolveProduct(req AddCartItemRequest) (domain.Product, bool) {
	id := req.ProductID
	serverID := strings.TrimSpace(req.ServerID)
	if id == 0 && serverID != "" {
		id = identity.StableIdentity(serverID)
	}
	if h.catalog != nil && id != 0 {
		if p, found := h.catalog.Lookup(id); found {
			return p, true
		}
	}
	name := strings.TrimSpace(req.Name)
	if id == 0 || name == "" || req.Price == nil {
		return domain.Product{}, false
	}
	return domain.Product{
		ID:        id,
		ServerID:  serverID,
		Name:      name,
		Price:     *req.Price,
		Image:     req.Image,
		Community: req.Community,
		LikeCount: req.LikeCount,
	}, true
}

//
// Handlers
//

// GetCart godoc
// @ID          getCart
// @Summary     Get the cart
// @Description Returns cart lines with item and price totals. Supports weak ETag via If-None-Match.
// @Tags        Cart
// @Produce     json
//
// @Param       X-Session-ID   header  string  false "Session ID"                  example(tab-42)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.CartResponse
// @Success     304  {string} string "Not Modified"
// @Router      /cart [get]
func (h *Handlers) GetCart(c *gin.Context) {
	sess := h.sessionFrom(c)
	if notModified(c, "cart", sess) {
		return
	}
	ok(c, http.StatusOK, cartView(sess))
}

// AddCartItem godoc
// @ID          addCartItem
// @Summary     Add a product to the cart
// @Description Adds one unit. A product already in the cart under the same community gets its quantity increased; otherwise a new line is created from the product snapshot.
// @Tags        Cart
// @Accept      json
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"  example(tab-42)
// @Param       body          body    handlers.AddCartItemRequest  true  "Product to add"
//
// @Success     200  {object} handlers.CartResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown product"
// @Router      /cart/items [post]
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, found := h.resolveProduct(req)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeProductNotFound, "product unknown to the catalog and no snapshot given")
		return
	}

	sess := h.sessionFrom(c)
	sess.Cart.AddItem(p)
	writeRevision(c, "cart", sess)
	ok(c, http.StatusOK, cartView(sess))
}

// SetCartQuantity godoc
// @ID          setCartQuantity
// @Summary     Set a cart line quantity
// @Description Sets the quantity of the product's line. Zero or less removes the product; an absent product is a no-op.
// @Tags        Cart
// @Accept      json
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"          example(tab-42)
// @Param       id            path    int     true  "Product identity"    example(1779518119)
// @Param       body          body    handlers.SetQuantityRequest  true  "New quantity"
//
// @Success     200  {object} handlers.CartResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /cart/items/{id}/quantity [put]
func (h *Handlers) SetCartQuantity(c *gin.Context) {
	id, valid := productParam(c)
	if !valid {
		return
	}
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "quantity required")
		return
	}

	sess := h.sessionFrom(c)
	sess.Cart.SetQuantity(id, *req.Quantity)
	writeRevision(c, "cart", sess)
	ok(c, http.StatusOK, cartView(sess))
}

// RemoveCartItem godoc
// @ID          removeCartItem
// @Summary     Remove a product from the cart
// @Description Removes every line of the product regardless of community. Removing an absent product is a no-op.
// @Tags        Cart
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"        example(tab-42)
// @Param       id            path    int     true  "Product identity"  example(1779518119)
//
// @Success     200  {object} handlers.CartResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /cart/items/{id} [delete]
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	id, valid := productParam(c)
	if !valid {
		return
	}
	sess := h.sessionFrom(c)
	sess.Cart.RemoveItem(id)
	writeRevision(c, "cart", sess)
	ok(c, http.StatusOK, cartView(sess))
}

// ClearCart godoc
// @ID          clearCart
// @Summary     Empty the cart
// @Tags        Cart
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"  example(tab-42)
//
// @Success     200  {object} handlers.CartResponse
// @Router      /cart [delete]
func (h *Handlers) ClearCart(c *gin.Context) {
	sess := h.sessionFrom(c)
	sess.Cart.Clear()
	writeRevision(c, "cart", sess)
	ok(c, http.StatusOK, cartView(sess))
}
