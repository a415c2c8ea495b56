// Wishlist HTTP handlers.
//
// This file exposes REST endpoints for the session wishlist:
//   - GET    /wishlist               (ids, most recent first; ETag support)
//   - PUT    /wishlist/{id}          (add, or move to the front)
//   - DELETE /wishlist/{id}          (remove; absent ids are a no-op)
//   - POST   /wishlist/{id}/toggle   (flip membership)
//   - DELETE /wishlist               (empty the wishlist)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/session"
)

// WishlistResponse is the wishlist view returned by every wishlist endpoint.
type WishlistResponse struct {
	IDs   []uint32 `json:"ids"`
	Count int      `json:"count"`
	// Products holds the catalog records of the ids the catalog knows, in
	// wishlist order. It is omitted when no catalog is configured.
	Products []domain.Product `json:"products,omitempty"`
}

// ToggleWishlistResponse reports the membership after a toggle.
type ToggleWishlistResponse struct {
	WishlistResponse
	InWishlist bool `json:"inWishlist"`
}

func (h *Handlers) wishlistView(sess *session.Session) WishlistResponse {
	ids := sess.Wishlist.IDs()
	out := WishlistResponse{IDs: ids, Count: len(ids)}
	if h.catalog == nil {
		return out
	}
	out.Products = make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, found := h.catalog.Lookup(id); found {
			out.Products = append(out.Products, p)
		}
	}
	return out
}

// GetWishlist godoc
// @ID          getWishlist
// @Summary     Get the wishlist
// @Description Returns wishlist ids, most recently added first, and the matching catalog products. Supports weak ETag via If-None-Match.
// @Tags        Wishlist
// @Produce     json
//
// @Param       X-Session-ID   header  string  false "Session ID"                  example(tab-42)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.WishlistResponse
// @Success     304  {string} string "Not Modified"
// @Router      /wishlist [get]
func (h *Handlers) GetWishlist(c *gin.Context) {
	sess := h.sessionFrom(c)
	if notModified(c, "wishlist", sess) {
		return
	}
	ok(c, http.StatusOK, h.wishlistView(sess))
}

// AddToWishlist godoc
// @ID          addToWishlist
// @Summary     Add a product to the wishlist
// @Description Puts the id at the front. Re-adding a present id moves it to the front.
// @Tags        Wishlist
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"        example(tab-42)
// @Param       id            path    int     true  "Product identity"  example(1779518119)
//
// @Success     200  {object} handlers.WishlistResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /wishlist/{id} [put]
func (h *Handlers) AddToWishlist(c *gin.Context) {
	id, valid := productParam(c)
	if !valid {
		return
	}
	sess := h.sessionFrom(c)
	sess.Wishlist.Add(id)
	writeRevision(c, "wishlist", sess)
	ok(c, http.StatusOK, h.wishlistView(sess))
}

// RemoveFromWishlist godoc
// @ID          removeFromWishlist
// @Summary     Remove a product from the wishlist
// @Tags        Wishlist
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"        example(tab-42)
// @Param       id            path    int     true  "Product identity"  example(1779518119)
//
// @Success     200  {object} handlers.WishlistResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /wishlist/{id} [delete]
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	id, valid := productParam(c)
	if !valid {
		return
	}
	sess := h.sessionFrom(c)
	sess.Wishlist.Remove(id)
	writeRevision(c, "wishlist", sess)
	ok(c, http.StatusOK, h.wishlistView(sess))
}

// ToggleWishlist godoc
// @ID          toggleWishlist
// @Summary     Toggle wishlist membership
// @Description Removes the id when present, otherwise adds it at the front.
// @Tags        Wishlist
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"        example(tab-42)
// @Param       id            path    int     true  "Product identity"  example(1779518119)
//
// @Success     200  {object} handlers.ToggleWishlistResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /wishlist/{id}/toggle [post]
func (h *Handlers) ToggleWishlist(c *gin.Context) {
	id, valid := productParam(c)
	if !valid {
		return
	}
	sess := h.sessionFrom(c)
	in := sess.Wishlist.Toggle(id)
	writeRevision(c, "wishlist", sess)
	ok(c, http.StatusOK, ToggleWishlistResponse{WishlistResponse: h.wishlistView(sess), InWishlist: in})
}

// ClearWishlist godoc
// @ID          clearWishlist
// @Summary     Empty the wishlist
// @Tags        Wishlist
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"  example(tab-42)
//
// @Success     200  {object} handlers.WishlistResponse
// @Router      /wishlist [delete]
func (h *Handlers) ClearWishlist(c *gin.Context) {
	sess := h.sessionFrom(c)
	sess.Wishlist.Clear()
	writeRevision(c, "wishlist", sess)
	ok(c, http.StatusOK, h.wishlistView(sess))
}
