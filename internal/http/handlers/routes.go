package handlers

import "github.com/gin-gonic/gin"

// Mount registers every API endpoint on api. Session resolution and
// idempotency validation are expected to run before these handlers.
func (h *Handlers) Mount(api gin.IRouter) {
	// Cart
	api.GET("/cart", h.GetCart)
	api.DELETE("/cart", h.ClearCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PUT("/cart/items/:id/quantity", h.SetCartQuantity)
	api.DELETE("/cart/items/:id", h.RemoveCartItem)

	// Wishlist
	api.GET("/wishlist", h.GetWishlist)
	api.DELETE("/wishlist", h.ClearWishlist)
	api.PUT("/wishlist/:id", h.AddToWishlist)
	api.DELETE("/wishlist/:id", h.RemoveFromWishlist)
	api.POST("/wishlist/:id/toggle", h.ToggleWishlist)

	// Chat
	api.GET("/chat/threads", h.ListThreads)
	api.POST("/chat/threads", h.UpsertThread)
	api.GET("/chat/threads/:id/messages", h.ListMessages)
	api.POST("/chat/threads/:id/messages", h.PostMessage)
	api.POST("/chat/threads/:id/replies", h.SimulateReply)

	// Catalog
	api.GET("/catalog/products", h.ListProducts)
	api.GET("/catalog/products/:id", h.GetProduct)
	api.POST("/catalog/products/:id/visit", h.RecordVisit)
	api.GET("/catalog/search", h.SearchProducts)
}
