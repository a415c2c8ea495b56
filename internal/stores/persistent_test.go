package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/marketplace-state/internal/storage"
)

// countingBackend wraps a backend and counts writes.
type countingBackend struct {
	storage.Backend
	sets   int
	getErr error
	setErr error
}

func (b *countingBackend) Get(ctx context.Context, name string) ([]byte, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.Backend.Get(ctx, name)
}

func (b *countingBackend) Set(ctx context.Context, name string, v []byte) error {
	b.sets++
	if b.setErr != nil {
		return b.setErr
	}
	return b.Backend.Set(ctx, name, v)
}

func newCounting() (*storage.MemoryStore, *countingBackend) {
	mem := storage.NewMemoryStore()
	return mem, &countingBackend{Backend: mem.Namespace("s1")}
}

func emptyInts() []int { return []int{} }

func TestSlot_AbsentReturnsDefault(t *testing.T) {
	_, b := newCounting()
	s := NewSlot(b, "t-absent", ShapeArray, emptyInts)
	assert.Equal(t, []int{}, s.Load())
	assert.Equal(t, "t-absent", s.Name())
}

func TestSlot_RoundTrip(t *testing.T) {
	_, b := newCounting()
	s := NewSlot(b, "t-roundtrip", ShapeArray, emptyInts)
	s.Save([]int{3, 1, 2})
	assert.Equal(t, []int{3, 1, 2}, s.Load())
}

func TestSlot_FallbacksAreCounted(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		shape  Shape
		reason string
	}{
		{"t-truncated", `[1, "x"`, ShapeArray, "decode"},
		{"t-garbage", `not json`, ShapeArray, "shape"},
		{"t-object-in-array", `{"a":1}`, ShapeArray, "shape"},
		{"t-null", `null`, ShapeArray, "shape"},
		{"t-bad-elem", `[1,"x"]`, ShapeArray, "decode"},
		{"t-array-in-object", `[1]`, ShapeObject, "shape"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem, b := newCounting()
			mem.Put("s1", tc.name, []byte(tc.raw))
			before := testutil.ToFloat64(slotLoadFallbacks.WithLabelValues(tc.name, tc.reason))

			if tc.shape == ShapeObject {
				s := NewSlot(b, tc.name, tc.shape, func() map[string]int { return map[string]int{"d": 1} })
				assert.Equal(t, map[string]int{"d": 1}, s.Load())
			} else {
				s := NewSlot(b, tc.name, tc.shape, emptyInts)
				assert.Equal(t, []int{}, s.Load())
			}
			assert.Equal(t, before+1, testutil.ToFloat64(slotLoadFallbacks.WithLabelValues(tc.name, tc.reason)))
		})
	}
}

func TestSlot_UnreadableReturnsDefault(t *testing.T) {
	_, b := newCounting()
	b.getErr = errors.New("disk on fire")
	before := testutil.ToFloat64(slotLoadFallbacks.WithLabelValues("t-unreadable", "unreadable"))

	s := NewSlot(b, "t-unreadable", ShapeArray, emptyInts)
	assert.Equal(t, []int{}, s.Load())
	assert.Equal(t, before+1, testutil.ToFloat64(slotLoadFallbacks.WithLabelValues("t-unreadable", "unreadable")))
}

func TestSlot_ObjectShape(t *testing.T) {
	_, b := newCounting()
	s := NewSlot(b, "t-object", ShapeObject, func() map[string]int { return map[string]int{} })
	s.Save(map[string]int{"a": 1})
	assert.Equal(t, map[string]int{"a": 1}, s.Load())
}

func TestSlot_SaveFailureIsSwallowedAndCounted(t *testing.T) {
	mem := storage.NewMemoryStore(storage.WithMaxBytes(4))
	s := NewSlot(mem.Namespace("s1"), "t-quota", ShapeArray, emptyInts)
	before := testutil.ToFloat64(slotWriteFailures.WithLabelValues("t-quota"))

	require.NotPanics(t, func() { s.Save([]int{1, 2, 3, 4, 5}) })
	assert.Equal(t, before+1, testutil.ToFloat64(slotWriteFailures.WithLabelValues("t-quota")))
	assert.Equal(t, []int{}, s.Load())
}

func TestSlot_DefaultIsFreshEachTime(t *testing.T) {
	_, b := newCounting()
	s := NewSlot(b, "t-fresh", ShapeArray, emptyInts)
	a := append(s.Load(), 9)
	assert.Len(t, a, 1)
	assert.Equal(t, []int{}, s.Load())
}
