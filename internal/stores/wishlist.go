package stores

import (
	"sync"

	"github.com/tbourn/marketplace-state/internal/storage"
)

// Wishlist is an ordered set of product identities, most recently added
// first. It is persisted only when membership or order changes.
type Wishlist struct {
	Notifier

	mu   sync.Mutex
	slot *Slot[[]uint32]
	ids  []uint32
}

// NewWishlist loads the wishlist persisted in backend. Duplicate ids are
// collapsed to their first occurrence.
func NewWishlist(backend storage.Backend) *Wishlist {
	slot := NewSlot(backend, SlotWishlist, ShapeArray, func() []uint32 { return []uint32{} })
	loaded := slot.Load()
	seen := make(map[uint32]struct{}, len(loaded))
	ids := make([]uint32, 0, len(loaded))
	for _, id := range loaded {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return &Wishlist{slot: slot, ids: ids}
}

// Add puts id at the front. Re-adding a present id moves it to the front.
func (w *Wishlist) Add(id uint32) {
	w.mu.Lock()
	changed := w.addLocked(id)
	w.finish(changed)
}

// Remove drops id. Removing an absent id is a no-op.
func (w *Wishlist) Remove(id uint32) {
	w.mu.Lock()
	changed := w.removeLocked(id)
	w.finish(changed)
}

// Toggle flips membership of id and reports whether it is now present.
func (w *Wishlist) Toggle(id uint32) bool {
	w.mu.Lock()
	present := w.indexLocked(id) >= 0
	if present {
		w.removeLocked(id)
	} else {
		w.addLocked(id)
	}
	w.finish(true)
	return !present
}

// Contains reports whether id is wishlisted.
func (w *Wishlist) Contains(id uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexLocked(id) >= 0
}

// Clear removes every id.
func (w *Wishlist) Clear() {
	w.mu.Lock()
	changed := len(w.ids) > 0
	w.ids = w.ids[:0]
	w.finish(changed)
}

// Count returns the number of wishlisted ids.
func (w *Wishlist) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ids)
}

// IDs returns a copy of the ids, most recently added first.
func (w *Wishlist) IDs() []uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]uint32(nil), w.ids...)
}

func (w *Wishlist) indexLocked(id uint32) int {
	for i, v := range w.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (w *Wishlist) addLocked(id uint32) bool {
	i := w.indexLocked(id)
	if i == 0 {
		return false
	}
	if i > 0 {
		w.ids = append(w.ids[:i], w.ids[i+1:]...)
	}
	w.ids = append([]uint32{id}, w.ids...)
	return true
}

func (w *Wishlist) removeLocked(id uint32) bool {
	i := w.indexLocked(id)
	if i < 0 {
		return false
	}
	w.ids = append(w.ids[:i], w.ids[i+1:]...)
	return true
}

// finish persists when changed, releases the lock and notifies.
func (w *Wishlist) finish(changed bool) {
	if changed {
		w.slot.Save(w.ids)
	}
	w.mu.Unlock()
	if changed {
		w.notify()
	}
}
