package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	var n Notifier
	a, b := 0, 0
	unsubA := n.Subscribe(func() { a++ })
	n.Subscribe(func() { b++ })

	n.notify()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	unsubA()
	unsubA() // idempotent
	n.notify()
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestNotifier_CallbackMayReenterStore(t *testing.T) {
	_, b := newCounting()
	w := NewWishlist(b)
	seen := -1
	w.Subscribe(func() { seen = w.Count() })
	w.Add(7)
	assert.Equal(t, 1, seen)
}
