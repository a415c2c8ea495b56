package stores

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/storage"
)

// DeriveThreadID returns the thread id for a (seller, product) pair. Product
// threads are "{seller}::product::{product}", product-less threads collapse
// into "{seller}::inbox". The format is persisted and must not change.
func DeriveThreadID(sellerID string, productID *uint32) string {
	if productID != nil {
		return sellerID + "::product::" + strconv.FormatUint(uint64(*productID), 10)
	}
	return sellerID + "::inbox"
}

// AvatarInitial returns the upper-cased first letter of name, or "S".
func AvatarInitial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "S"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return cases.Upper(language.Und).String(string(r))
}

// ThreadInput describes a thread to insert or replace.
type ThreadInput struct {
	ThreadID     string
	SellerID     string
	SellerName   string
	SellerAvatar string // derived from SellerName when empty
	ProductID    *uint32
	ProductName  string
}

// BuyerMessage is the input of SendBuyerMessage. ThreadID defaults to
// DeriveThreadID(SellerID, ProductID) and must equal it when set.
type BuyerMessage struct {
	ThreadID    string
	SellerID    string
	SellerName  string
	ProductID   *uint32
	ProductName string
	Body        string
}

// Chat holds conversation threads, most recently active first, and their
// append-only messages. Threads and messages live in separate slots.
type Chat struct {
	Notifier

	mu           sync.Mutex
	threadsSlot  *Slot[[]domain.ChatThread]
	messagesSlot *Slot[[]domain.ChatMessage]
	threads      []domain.ChatThread
	messages     []domain.ChatMessage

	now          func() time.Time
	newID        func() string
	rnd          RandomSource
	replies      []string
	maxBodyRunes int
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ChatOption { return func(c *Chat) { c.now = now } }

// WithIDGenerator overrides the message id generator (uuid by default).
func WithIDGenerator(gen func() string) ChatOption { return func(c *Chat) { c.newID = gen } }

// WithRandom sets the source used to pick seller replies.
func WithRandom(r RandomSource) ChatOption { return func(c *Chat) { c.rnd = r } }

// WithReplies replaces DefaultReplies. An empty set is ignored.
func WithReplies(replies []string) ChatOption {
	return func(c *Chat) {
		if len(replies) > 0 {
			c.replies = append([]string(nil), replies...)
		}
	}
}

// WithMaxBodyRunes rejects buyer messages longer than n runes. Zero disables
// the check.
func WithMaxBodyRunes(n int) ChatOption { return func(c *Chat) { c.maxBodyRunes = n } }

// NewChat loads threads and messages persisted in backend. Duplicate thread
// ids are collapsed to their first (most recent) occurrence and messages
// with an unknown sender are dropped.
func NewChat(backend storage.Backend, opts ...ChatOption) *Chat {
	c := &Chat{
		threadsSlot:  NewSlot(backend, SlotChatThreads, ShapeArray, func() []domain.ChatThread { return []domain.ChatThread{} }),
		messagesSlot: NewSlot(backend, SlotChatMessages, ShapeArray, func() []domain.ChatMessage { return []domain.ChatMessage{} }),
		now:          time.Now,
		newID:        uuid.NewString,
		replies:      DefaultReplies,
	}
	for _, o := range opts {
		o(c)
	}
	if c.rnd == nil {
		c.rnd = defaultRandom()
	}

	loaded := c.threadsSlot.Load()
	seen := make(map[string]struct{}, len(loaded))
	c.threads = make([]domain.ChatThread, 0, len(loaded))
	for _, t := range loaded {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		c.threads = append(c.threads, t)
	}
	loadedMsgs := c.messagesSlot.Load()
	c.messages = make([]domain.ChatMessage, 0, len(loadedMsgs))
	for _, m := range loadedMsgs {
		if !m.Sender.Valid() {
			log.Warn().
				Str("slot", SlotChatMessages).
				Str("message_id", m.ID).
				Str("sender", string(m.Sender)).
				Msg("dropping chat message with unknown sender")
			continue
		}
		c.messages = append(c.messages, m)
	}
	return c
}

// UpsertThread inserts or replaces the thread, stamps updatedAt and
// lastMessageAt with now and moves it to the front. An empty ThreadID is
// derived from (SellerID, ProductID).
func (c *Chat) UpsertThread(in ThreadInput) domain.ChatThread {
	if in.ThreadID == "" {
		in.ThreadID = DeriveThreadID(in.SellerID, in.ProductID)
	}
	c.mu.Lock()
	t := c.upsertLocked(in, c.now().UTC())
	c.threadsSlot.Save(c.threads)
	c.mu.Unlock()
	c.notify()
	return t
}

// ListThreads returns a copy of the threads, most recently active first.
func (c *Chat) ListThreads() []domain.ChatThread {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ChatThread(nil), c.threads...)
}

// Thread returns the thread with id.
func (c *Chat) Thread(id string) (domain.ChatThread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.threadIndexLocked(id); i >= 0 {
		return c.threads[i], true
	}
	return domain.ChatThread{}, false
}

// GetMessages returns the messages of threadID in ascending timestamp order.
// Ties keep insertion order.
func (c *Chat) GetMessages(threadID string) []domain.ChatMessage {
	c.mu.Lock()
	out := make([]domain.ChatMessage, 0)
	for _, m := range c.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].SortKey() < out[j].SortKey() })
	return out
}

// Message returns the message id of threadID.
func (c *Chat) Message(threadID, id string) (domain.ChatMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.messages {
		if m.ID == id && m.ThreadID == threadID {
			return m, true
		}
	}
	return domain.ChatMessage{}, false
}

// SendBuyerMessage trims the body, upserts the target thread and appends a
// buyer message. Empty bodies fail with ErrEmptyMessage and a ThreadID that
// disagrees with the seller and product fails with ErrThreadMismatch; both
// leave the store untouched.
func (c *Chat) SendBuyerMessage(in BuyerMessage) (domain.ChatMessage, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}
	if c.maxBodyRunes > 0 && utf8.RuneCountInString(body) > c.maxBodyRunes {
		return domain.ChatMessage{}, ErrTooLong
	}
	threadID := DeriveThreadID(in.SellerID, in.ProductID)
	if in.ThreadID != "" && in.ThreadID != threadID {
		return domain.ChatMessage{}, ErrThreadMismatch
	}

	c.mu.Lock()
	now := c.now().UTC()
	c.upsertLocked(ThreadInput{
		ThreadID:    threadID,
		SellerID:    in.SellerID,
		SellerName:  in.SellerName,
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
	}, now)
	msg := c.appendLocked(threadID, in.SellerID, in.ProductID, domain.SenderBuyer, body, now)
	c.threadsSlot.Save(c.threads)
	c.messagesSlot.Save(c.messages)
	c.mu.Unlock()

	c.notify()
	return msg, nil
}

// SimulateSellerReply appends a canned seller message to an existing thread
// and refreshes the thread's lastMessageAt in place. It fails with
// ErrThreadNotFound when the thread does not exist.
func (c *Chat) SimulateSellerReply(threadID, sellerID string, productID *uint32) (domain.ChatMessage, error) {
	c.mu.Lock()
	i := c.threadIndexLocked(threadID)
	if i < 0 {
		c.mu.Unlock()
		return domain.ChatMessage{}, ErrThreadNotFound
	}
	now := c.now().UTC()
	msg := c.appendLocked(threadID, sellerID, productID, domain.SenderSeller, PickReply(c.rnd, c.replies), now)
	c.threads[i].LastMessageAt = &now
	c.threadsSlot.Save(c.threads)
	c.messagesSlot.Save(c.messages)
	c.mu.Unlock()

	c.notify()
	return msg, nil
}

func (c *Chat) threadIndexLocked(id string) int {
	for i := range c.threads {
		if c.threads[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Chat) upsertLocked(in ThreadInput, now time.Time) domain.ChatThread {
	avatar := strings.TrimSpace(in.SellerAvatar)
	if avatar == "" {
		avatar = AvatarInitial(in.SellerName)
	}
	var product *uint32
	if in.ProductID != nil {
		v := *in.ProductID
		product = &v
	}
	last := now
	t := domain.ChatThread{
		ID:            in.ThreadID,
		SellerID:      in.SellerID,
		SellerName:    in.SellerName,
		SellerAvatar:  avatar,
		ProductID:     product,
		ProductName:   in.ProductName,
		UpdatedAt:     now,
		LastMessageAt: &last,
	}

	rest := make([]domain.ChatThread, 0, len(c.threads)+1)
	rest = append(rest, t)
	for _, old := range c.threads {
		if old.ID != t.ID {
			rest = append(rest, old)
		}
	}
	c.threads = rest
	return t
}

func (c *Chat) appendLocked(threadID, sellerID string, productID *uint32, sender domain.Sender, body string, now time.Time) domain.ChatMessage {
	var product *uint32
	if productID != nil {
		v := *productID
		product = &v
	}
	m := domain.ChatMessage{
		ID:        c.newID(),
		ThreadID:  threadID,
		SellerID:  sellerID,
		ProductID: product,
		Sender:    sender,
		Body:      body,
		CreatedAt: now,
		Timestamp: now.UnixMilli(),
	}
	c.messages = append(c.messages, m)
	return m
}
