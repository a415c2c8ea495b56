// Message HTTP handlers.
//
// This file exposes REST endpoints for chat messages:
//   - GET  /chat/threads/{id}/messages   (list a thread's messages, oldest first)
//   - POST /chat/threads/{id}/messages   (append a buyer message)
//   - POST /chat/threads/{id}/replies    (append a simulated seller reply now)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous buyer
// message exists for (session, thread, key), the handler returns that
// message and sets `Idempotency-Replayed: true`. Replays never schedule a
// second seller reply.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/http/middleware"
	"github.com/tbourn/marketplace-state/internal/session"
	"github.com/tbourn/marketplace-state/internal/stores"
	"github.com/tbourn/marketplace-state/internal/utils"
)

//
// DTOs
//

// PostMessageRequest is the JSON payload for sending a buyer message.
//
// Seller and product fields describe the thread. They may be omitted when
// the thread already exists; its stored values are used then.
type PostMessageRequest struct {
	// Body is the message text. It must be non-empty after trimming.
	Body        string  `json:"body" example:"Is this mug dishwasher safe?"`
	SellerID    string  `json:"sellerId" binding:"max=128" example:"seller-9"`
	SellerName  string  `json:"sellerName" binding:"max=255" example:"Ayşe's Ceramics"`
	ProductID   *uint32 `json:"productId" example:"1779518119"`
	ProductName string  `json:"productName" binding:"max=255" example:"Glazed mug"`
}

// MessageResponse is the JSON envelope for one created message.
type MessageResponse struct {
	Message domain.ChatMessage `json:"message"`
}

// ListMessagesResponse contains a page of chat messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination utils.Page           `json:"pagination"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes message text:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// replay answers a request whose Idempotency-Key already produced a message.
// It reports whether a response was written.
func (h *Handlers) replay(c *gin.Context, sess *session.Session, threadID, key string) bool {
	if h.idem == nil || key == "" {
		return false
	}
	msgID, found, err := h.idem.Lookup(c.Request.Context(), sess.ID, threadID, key, time.Now().UTC())
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("thread_id", threadID).Msg("idempotency lookup failed")
		return false
	}
	if !found {
		return false
	}
	prev, exists := sess.Chat.Message(threadID, msgID)
	if !exists {
		// The session's slots were reset since the key was stored.
		return false
	}
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	writeRevision(c, "messages", sess)
	c.JSON(http.StatusOK, MessageResponse{Message: prev})
	return true
}

// scheduleReply arranges the simulated seller answer to a buyer message.
func (h *Handlers) scheduleReply(sess *session.Session, msg domain.ChatMessage) {
	if !h.opts.AutoReply {
		return
	}
	h.opts.Schedule(h.opts.ReplyDelay, func() {
		if _, err := sess.Chat.SimulateSellerReply(msg.ThreadID, msg.SellerID, msg.ProductID); err != nil {
			log.Warn().Err(err).
				Str("session_id", sess.ID).
				Str("thread_id", msg.ThreadID).
				Msg("simulated reply failed")
		}
	})
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a buyer message
// @Description Appends a buyer message to the thread (creating or refreshing the thread) and, when auto-reply is on, schedules a simulated seller reply.
// @Description Supports idempotency via the Idempotency-Key header (same key → same message).
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-Session-ID     header  string  false "Session ID"  example(tab-42)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Thread ID"   example(seller-9::inbox)
// @Param       body             body    handlers.PostMessageRequest  true  "Buyer message payload"
//
// @Success     201  {object}  handlers.MessageResponse  "Created message"
// @Success     200  {object}  handlers.MessageResponse  "Replayed message"
// @Failure     400  {object}  handlers.ErrorResponse    "Bad request, or thread id not derived from sellerId/productId"
// @Router      /chat/threads/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	threadID := c.Param("id")
	sess := h.sessionFrom(c)

	// Replay path: the middleware flagged a stored record for this key.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if middleware.IsReplay(c) && h.replay(c, sess, threadID, idemKey) {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body required")
		return
	}
	body := sanitizeContent(req.Body)

	in := stores.BuyerMessage{
		ThreadID:    threadID,
		SellerID:    strings.TrimSpace(req.SellerID),
		SellerName:  strings.TrimSpace(req.SellerName),
		ProductID:   req.ProductID,
		ProductName: strings.TrimSpace(req.ProductName),
		Body:        body,
	}
	if th, exists := sess.Chat.Thread(threadID); exists {
		if in.SellerID == "" {
			in.SellerID = th.SellerID
		}
		if in.SellerName == "" {
			in.SellerName = th.SellerName
		}
		if in.ProductID == nil {
			in.ProductID = th.ProductID
		}
		if in.ProductName == "" {
			in.ProductName = th.ProductName
		}
	}
	if in.SellerID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sellerId required for a new thread")
		return
	}

	msg, err := sess.Chat.SendBuyerMessage(in)
	switch {
	case errors.Is(err, stores.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeEmptyMessage, "message body is empty")
		return
	case errors.Is(err, stores.ErrThreadMismatch):
		fail(c, http.StatusBadRequest, ErrCodeThreadMismatch,
			fmt.Sprintf("thread %q does not belong to seller %q and the given product", threadID, in.SellerID))
		return
	case errors.Is(err, stores.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeMessageTooLong, fmt.Sprintf("message too long: max %d runes", h.opts.MaxMessageRunes))
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	// Idempotency (store path) – best effort.
	if h.idem != nil && idemKey != "" {
		if err := h.idem.Remember(c.Request.Context(), sess.ID, threadID, idemKey, msg.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("thread_id", threadID).Msg("idempotency record not stored")
		}
	}

	h.scheduleReply(sess, msg)
	writeRevision(c, "messages", sess)
	ok(c, http.StatusCreated, MessageResponse{Message: msg})
}

// SimulateReply godoc
// @ID          simulateReply
// @Summary     Append a simulated seller reply
// @Description Picks a canned seller answer at random and appends it to the thread immediately.
// @Tags        Chat
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"  example(tab-42)
// @Param       id            path    string  true  "Thread ID"   example(seller-9::inbox)
//
// @Success     201  {object} handlers.MessageResponse
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Router      /chat/threads/{id}/replies [post]
func (h *Handlers) SimulateReply(c *gin.Context) {
	threadID := c.Param("id")
	sess := h.sessionFrom(c)

	th, exists := sess.Chat.Thread(threadID)
	if !exists {
		threadNotFound(c, threadID)
		return
	}
	msg, err := sess.Chat.SimulateSellerReply(th.ID, th.SellerID, th.ProductID)
	if err != nil {
		if errors.Is(err, stores.ErrThreadNotFound) {
			threadNotFound(c, threadID)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	writeRevision(c, "messages", sess)
	ok(c, http.StatusCreated, MessageResponse{Message: msg})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages in a thread
// @Description Returns a paginated list of the thread's messages in ascending timestamp order.
// @Tags        Chat
// @Produce     json
//
// @Param       X-Session-ID   header string  false "Session ID"                  example(tab-42)
// @Param       If-None-Match  header string  false "Return 304 if ETag matches"
// @Param       id             path   string  true  "Thread ID"                   example(seller-9::inbox)
// @Param       page           query  int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query  int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Router      /chat/threads/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	threadID := c.Param("id")
	sess := h.sessionFrom(c)

	if _, exists := sess.Chat.Thread(threadID); !exists {
		threadNotFound(c, threadID)
		return
	}
	if notModified(c, "messages", sess) {
		return
	}

	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))
	items, meta := utils.Paginate(sess.Chat.GetMessages(threadID), page, pageSize)
	ok(c, http.StatusOK, ListMessagesResponse{Messages: items, Pagination: meta})
}
