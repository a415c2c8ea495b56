package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/http/middleware"
	"github.com/tbourn/marketplace-state/internal/session"
	"github.com/tbourn/marketplace-state/internal/storage"
	"github.com/tbourn/marketplace-state/internal/stores"
)

// ---------- fakes ----------

type fakeIdem struct {
	mu   sync.Mutex
	recs map[string]string
	err  error
}

func newFakeIdem() *fakeIdem { return &fakeIdem{recs: map[string]string{}} }

func idemRecKey(sid, tid, key string) string { return sid + "|" + tid + "|" + key }

func (f *fakeIdem) Lookup(_ context.Context, sid, tid, key string, _ time.Time) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.recs[idemRecKey(sid, tid, key)]
	return id, ok, nil
}

func (f *fakeIdem) Remember(_ context.Context, sid, tid, key, msgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[idemRecKey(sid, tid, key)] = msgID
	return nil
}

type fakeCatalog struct {
	products []domain.Product
	visitErr error
	visits   []uint32
}

func (f *fakeCatalog) All() []domain.Product { return append([]domain.Product(nil), f.products...) }

func (f *fakeCatalog) Lookup(id uint32) (domain.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (f *fakeCatalog) Search(q string, k int) []catalog.Hit {
	var out []catalog.Hit
	for _, p := range f.products {
		if len(out) == k {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, catalog.Hit{Product: p, Score: 1})
		}
	}
	return out
}

func (f *fakeCatalog) RecordVisit(_ context.Context, id uint32) error {
	if _, ok := f.Lookup(id); !ok {
		return catalog.ErrProductNotFound
	}
	if f.visitErr != nil {
		return f.visitErr
	}
	f.visits = append(f.visits, id)
	return nil
}

// ---------- harness ----------

type scheduled struct {
	delay time.Duration
	fn    func()
}

type harness struct {
	r       *gin.Engine
	reg     *session.Registry
	pending []scheduled
}

// stepClock advances by one second on every call so message order is
// unambiguous.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newHarness(t *testing.T, cat Catalog, idem IdempotencyStore, opts Options) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	hs := &harness{
		reg: session.NewRegistry(storage.NewMemoryStore(),
			session.WithChatOptions(
				stores.WithClock(clock.Now),
				stores.WithRandom(stores.NewRandomSource(1)),
				stores.WithMaxBodyRunes(opts.MaxMessageRunes),
			),
		),
	}
	if opts.Schedule == nil {
		opts.Schedule = func(d time.Duration, fn func()) {
			hs.pending = append(hs.pending, scheduled{delay: d, fn: fn})
		}
	}
	h := New(hs.reg, cat, idem, opts)

	var lookup middleware.IdempotencyLookup
	if idem != nil {
		lookup = func(ctx context.Context, sid, tid, key string, now time.Time) (bool, error) {
			_, found, err := idem.Lookup(ctx, sid, tid, key, now)
			return found, err
		}
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.SessionID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))
	h.Mount(r)
	hs.r = r
	return hs
}

func (hs *harness) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

// runPending fires every scheduled callback as if its delay had elapsed.
func (hs *harness) runPending() {
	p := hs.pending
	hs.pending = nil
	for _, s := range p {
		s.fn()
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func sessionHdr(id string) map[string]string { return map[string]string{middleware.HeaderSessionID: id} }

// ---------- threads ----------

func TestListThreads_EmptySession(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})

	w := hs.do(http.MethodGet, "/chat/threads", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[ListThreadsResponse](t, w)
	if got.Threads == nil || len(got.Threads) != 0 {
		t.Fatalf("threads=%v", got.Threads)
	}
	if got.Pagination.Total != 0 || got.Pagination.Page != 1 || got.Pagination.PageSize != 20 {
		t.Fatalf("pagination=%+v", got.Pagination)
	}
	if w.Header().Get(HeaderStateRevision) != "0" {
		t.Fatalf("revision=%q", w.Header().Get(HeaderStateRevision))
	}
}

func TestUpsertThread_CreatesAndLists(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})

	w := hs.do(http.MethodPost, "/chat/threads", `{"sellerId":"seller-9","sellerName":"ayşe","productId":5,"productName":"Mug"}`, sessionHdr("tab-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	th := decode[domain.ChatThread](t, w)
	if th.ID != "seller-9::product::5" || th.SellerAvatar != "A" {
		t.Fatalf("thread=%+v", th)
	}

	list := decode[ListThreadsResponse](t, hs.do(http.MethodGet, "/chat/threads", "", sessionHdr("tab-1")))
	if len(list.Threads) != 1 || list.Threads[0].ID != th.ID {
		t.Fatalf("threads=%+v", list.Threads)
	}

	// Sessions are isolated.
	other := decode[ListThreadsResponse](t, hs.do(http.MethodGet, "/chat/threads", "", sessionHdr("tab-2")))
	if len(other.Threads) != 0 {
		t.Fatalf("leaked threads=%+v", other.Threads)
	}
}

func TestUpsertThread_RequiresSeller(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})

	for _, body := range []string{`{}`, `{"sellerId":"   "}`, `not json`} {
		w := hs.do(http.MethodPost, "/chat/threads", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d", body, w.Code)
		}
		if got := decode[ErrorResponse](t, w); got.Code != ErrCodeBadRequest {
			t.Fatalf("code=%q", got.Code)
		}
	}
}

func TestListThreads_ETagAndNotModified(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})
	hs.do(http.MethodPost, "/chat/threads", `{"sellerId":"s1"}`, nil)

	first := hs.do(http.MethodGet, "/chat/threads", "", nil)
	etag := first.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"threads:demo-session:`) {
		t.Fatalf("etag=%q", etag)
	}

	second := hs.do(http.MethodGet, "/chat/threads", "", map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Fatalf("status=%d", second.Code)
	}

	// Any change invalidates the tag.
	hs.do(http.MethodPost, "/chat/threads", `{"sellerId":"s2"}`, nil)
	third := hs.do(http.MethodGet, "/chat/threads", "", map[string]string{"If-None-Match": etag})
	if third.Code != http.StatusOK {
		t.Fatalf("status=%d", third.Code)
	}
	if got := decode[ListThreadsResponse](t, third); len(got.Threads) != 2 || got.Threads[0].SellerID != "s2" {
		t.Fatalf("threads=%+v", got.Threads)
	}
}

func TestListThreads_Pagination(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})
	for _, s := range []string{"a", "b", "c"} {
		hs.do(http.MethodPost, "/chat/threads", `{"sellerId":"`+s+`"}`, nil)
	}

	got := decode[ListThreadsResponse](t, hs.do(http.MethodGet, "/chat/threads?page=2&page_size=2", "", nil))
	if len(got.Threads) != 1 || got.Threads[0].SellerID != "a" {
		t.Fatalf("threads=%+v", got.Threads)
	}
	if got.Pagination.Total != 3 || got.Pagination.TotalPages != 2 || got.Pagination.HasNext {
		t.Fatalf("pagination=%+v", got.Pagination)
	}
}

func TestSessionHeader_Invalid(t *testing.T) {
	hs := newHarness(t, nil, nil, Options{})

	w := hs.do(http.MethodGet, "/chat/threads", "", sessionHdr("bad id!"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "bad_session_id") {
		t.Fatalf("body=%s", w.Body.String())
	}
}
