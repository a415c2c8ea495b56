package domain

import "time"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderBuyer  Sender = "buyer"
	SenderSeller Sender = "seller"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool { return s == SenderBuyer || s == SenderSeller }

// ChatThread is a conversation between the buyer and one seller, optionally
// scoped to a product. ID is derived from (SellerID, ProductID) so that there
// is at most one thread per pair.
type ChatThread struct {
	ID            string     `json:"id"`
	SellerID      string     `json:"sellerId"`
	SellerName    string     `json:"sellerName"`
	SellerAvatar  string     `json:"sellerAvatar"`
	ProductID     *uint32    `json:"productId,omitempty"`
	ProductName   string     `json:"productName,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// ChatMessage is one append-only message within a thread.
//
// Timestamp (unix milliseconds) is authoritative for ordering. Messages
// persisted before it existed carry 0 and are ordered by CreatedAt.
type ChatMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	SellerID  string    `json:"sellerId"`
	ProductID *uint32   `json:"productId,omitempty"`
	Sender    Sender    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// SortKey returns the ordering key of the message in unix milliseconds.
func (m ChatMessage) SortKey() int64 {
	if m.Timestamp != 0 {
		return m.Timestamp
	}
	return m.CreatedAt.UnixMilli()
}
