// Chat thread HTTP handlers.
//
// This file exposes REST endpoints for chat threads:
//   - GET    /chat/threads     (list, most recent first, paginated, ETag support)
//   - POST   /chat/threads     (insert or replace a thread)
//
// It also holds the contracts and wiring shared by every handler in this
// package. Handlers are transport-thin: they resolve the session, validate
// input, call the session's stores, and translate results into HTTP
// responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/http/middleware"
	"github.com/tbourn/marketplace-state/internal/session"
	"github.com/tbourn/marketplace-state/internal/stores"
	"github.com/tbourn/marketplace-state/internal/utils"
)

//
// Contracts
//

// Sessions resolves a normalized session id to its stores.
type Sessions interface {
	Get(id string) *session.Session
}

// Catalog is the read side of the product catalog plus visit tracking.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation and timeouts.
type Catalog interface {
	All() []domain.Product
	Lookup(id uint32) (domain.Product, bool)
	Search(q string, k int) []catalog.Hit
	RecordVisit(ctx context.Context, id uint32) error
}

// IdempotencyStore remembers which buyer message an Idempotency-Key
// produced within a (session, thread).
type IdempotencyStore interface {
	// Lookup returns the stored message id, or ok=false when the key is
	// unknown or expired.
	Lookup(ctx context.Context, sessionID, threadID, key string, now time.Time) (messageID string, ok bool, err error)
	// Remember records messageID for the key.
	Remember(ctx context.Context, sessionID, threadID, key, messageID string) error
}

// Scheduler runs fn after d. time.AfterFunc satisfies it through
// AfterFunc below.
type Scheduler func(d time.Duration, fn func())

// AfterFunc schedules fn on its own goroutine after d.
func AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

//
// Handler wiring
//

// Options tunes handler behavior.
type Options struct {
	// AutoReply schedules a simulated seller reply after every buyer message.
	AutoReply bool
	// ReplyDelay is the wait before the simulated reply.
	ReplyDelay time.Duration
	// MaxMessageRunes is reported in "too long" errors; the chat store
	// enforces it.
	MaxMessageRunes int
	// Schedule defaults to AfterFunc.
	Schedule Scheduler
}

// Handlers groups HTTP endpoints for cart, wishlist, chat and catalog.
// It depends on narrow interfaces to keep transport concerns separate from
// the stores.
type Handlers struct {
	sessions Sessions
	catalog  Catalog
	idem     IdempotencyStore
	opts     Options
}

// New constructs and returns a Handlers instance. cat and idem may be nil:
// catalog endpoints then answer 503 and Idempotency-Key headers are
// validated but not recorded.
func New(sessions Sessions, cat Catalog, idem IdempotencyStore, opts Options) *Handlers {
	if opts.Schedule == nil {
		opts.Schedule = AfterFunc
	}
	return &Handlers{sessions: sessions, catalog: cat, idem: idem, opts: opts}
}

// sessionFrom returns the stores of the session resolved by
// middleware.SessionID.
func (h *Handlers) sessionFrom(c *gin.Context) *session.Session {
	return h.sessions.Get(middleware.SessionIDFrom(c))
}

//
// DTOs
//

// UpsertThreadRequest is the JSON payload for creating or replacing a thread.
type UpsertThreadRequest struct {
	// SellerID is the opaque seller id.
	SellerID string `json:"sellerId" binding:"required,max=128" example:"seller-9"`
	// SellerName is shown in the thread list.
	SellerName string `json:"sellerName" binding:"max=255" example:"Ayşe's Ceramics"`
	// SellerAvatar defaults to the upper-cased first letter of SellerName.
	SellerAvatar string `json:"sellerAvatar" binding:"max=16" example:"A"`
	// ProductID scopes the thread to one product; omit for the seller inbox.
	ProductID *uint32 `json:"productId" example:"1779518119"`
	// ProductName is shown next to product-scoped threads.
	ProductName string `json:"productName" binding:"max=255" example:"Glazed mug"`
}

// ListThreadsResponse wraps a page of threads and pagination information.
type ListThreadsResponse struct {
	Threads    []domain.ChatThread `json:"threads"`
	Pagination utils.Page          `json:"pagination"`
}

//
// Handlers
//

// ListThreads godoc
// @ID          listThreads
// @Summary     List chat threads (paginated)
// @Description Returns the session's threads, most recently active first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Chat
// @Produce     json
//
// @Param       X-Session-ID   header  string  false "Session ID"                  example(tab-42)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"threads:tab-42:1700000000000000000-3\")
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListThreadsResponse
// @Header      200  {string} ETag              "Weak ETag for the session state"
// @Header      200  {string} X-State-Revision  "Session state revision"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /chat/threads [get]
func (h *Handlers) ListThreads(c *gin.Context) {
	sess := h.sessionFrom(c)
	if notModified(c, "threads", sess) {
		return
	}
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))
	items, meta := utils.Paginate(sess.Chat.ListThreads(), page, pageSize)
	ok(c, http.StatusOK, ListThreadsResponse{Threads: items, Pagination: meta})
}

// UpsertThread godoc
// @ID          upsertThread
// @Summary     Create or replace a chat thread
// @Description Inserts the thread for (sellerId, productId) or replaces it, and moves it to the top of the list.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-Session-ID  header  string  false "Session ID"  example(tab-42)
// @Param       body          body    handlers.UpsertThreadRequest  true  "Thread payload"
//
// @Success     201  {object}  domain.ChatThread
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /chat/threads [post]
func (h *Handlers) UpsertThread(c *gin.Context) {
	var req UpsertThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SellerID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sellerId required")
		return
	}

	sess := h.sessionFrom(c)
	th := sess.Chat.UpsertThread(stores.ThreadInput{
		SellerID:     strings.TrimSpace(req.SellerID),
		SellerName:   strings.TrimSpace(req.SellerName),
		SellerAvatar: strings.TrimSpace(req.SellerAvatar),
		ProductID:    req.ProductID,
		ProductName:  strings.TrimSpace(req.ProductName),
	})
	writeRevision(c, "threads", sess)
	ok(c, http.StatusCreated, th)
}

// threadNotFound writes the 404 used by every thread-scoped endpoint.
func threadNotFound(c *gin.Context, id string) {
	fail(c, http.StatusNotFound, ErrCodeThreadNotFound, fmt.Sprintf("thread %q not found", id))
}
