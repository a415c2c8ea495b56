package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/identity"
	"github.com/tbourn/marketplace-state/internal/storage"
)

func product(serverID string, price float64, community string) domain.Product {
	return domain.Product{
		ID:        identity.StableIdentity(serverID),
		ServerID:  serverID,
		Name:      "Item " + serverID,
		Price:     price,
		Image:     "/img/" + serverID + ".jpg",
		Community: community,
	}
}

func TestCart_EndToEndScenario(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	p := product("abc123", 1000, "kendem")

	c.AddItem(p)
	assert.Equal(t, 1, c.TotalItemCount())
	assert.Equal(t, 1000.0, c.TotalPrice())

	c.AddItem(p)
	assert.Equal(t, 2, c.TotalItemCount())
	assert.Equal(t, 2000.0, c.TotalPrice())

	c.SetQuantity(identity.StableIdentity("abc123"), 5)
	assert.Equal(t, 5, c.TotalItemCount())

	c.Clear()
	assert.Equal(t, 0, c.TotalItemCount())
}

func TestCart_MergeBySameProductAndCommunity(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	p := product("p1", 10, "kendem")
	c.AddItem(p)
	c.AddItem(p)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCart_DifferentCommunitiesAreSeparateLines(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	c.AddItem(product("p1", 10, "kendem"))
	c.AddItem(product("p1", 10, "other"))
	assert.Len(t, c.Lines(), 2)

	// Removal is identity-scoped and drops both.
	c.RemoveItem(identity.StableIdentity("p1"))
	assert.Empty(t, c.Lines())
}

func TestCart_SnapshotOnAdd(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	likes := 3
	p := product("p1", 10, "kendem")
	p.LikeCount = &likes
	c.AddItem(p)

	// Later server-side changes do not leak into the line.
	p.Price = 99
	p.Name = "renamed"
	likes = 100
	c.AddItem(p)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 10.0, lines[0].Price)
	assert.Equal(t, "Item p1", lines[0].Name)
	require.NotNil(t, lines[0].LikeCount)
	assert.Equal(t, 3, *lines[0].LikeCount)
	assert.Equal(t, 20.0, c.TotalPrice())
}

func TestCart_QuantityFloor(t *testing.T) {
	for _, q := range []int{0, -1, -50} {
		c := NewCart(storage.NewMemoryStore().Namespace("s1"))
		p := product("p1", 10, "kendem")
		c.AddItem(p)
		c.AddItem(product("p2", 5, "kendem"))

		c.SetQuantity(p.ID, q)
		lines := c.Lines()
		require.Len(t, lines, 1, "quantity %d", q)
		assert.Equal(t, identity.StableIdentity("p2"), lines[0].ProductID)
	}
}

func TestCart_MissingIDsAreNoOps(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	c.AddItem(product("p1", 10, "kendem"))

	c.RemoveItem(42)
	c.SetQuantity(42, 3)
	assert.Equal(t, 1, c.TotalItemCount())
}

func TestCart_PersistsEveryMutationAndReloads(t *testing.T) {
	mem, b := newCounting()
	c := NewCart(b)
	c.AddItem(product("p1", 2.5, "kendem"))
	c.AddItem(product("p2", 4, "kendem"))
	c.SetQuantity(identity.StableIdentity("p2"), 3)
	c.RemoveItem(identity.StableIdentity("p1"))
	assert.Equal(t, 4, b.sets)

	again := NewCart(mem.Namespace("s1"))
	assert.Equal(t, c.Lines(), again.Lines())
	assert.Equal(t, 12.0, again.TotalPrice())
}

func TestCart_LoadDropsInvalidQuantitiesAndSurvivesCorruption(t *testing.T) {
	mem := storage.NewMemoryStore()
	mem.Put("s1", SlotCart, []byte(`[{"id":1,"name":"a","price":1,"community":"k","quantity":0},{"id":2,"name":"b","price":2,"community":"k","quantity":2}]`))
	c := NewCart(mem.Namespace("s1"))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, uint32(2), c.Lines()[0].ProductID)

	mem.Put("s2", SlotCart, []byte(`{"oops":true}`))
	assert.Empty(t, NewCart(mem.Namespace("s2")).Lines())
}

func TestCart_WriteFailureKeepsMemoryState(t *testing.T) {
	mem := storage.NewMemoryStore(storage.WithMaxBytes(8))
	c := NewCart(mem.Namespace("s1"))
	c.AddItem(product("p1", 10, "kendem"))
	assert.Equal(t, 1, c.TotalItemCount())
}

func TestCart_NotifiesOnMutation(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	n := 0
	unsub := c.Subscribe(func() { n++ })
	c.AddItem(product("p1", 1, "k"))
	c.Clear()
	unsub()
	c.AddItem(product("p1", 1, "k"))
	assert.Equal(t, 2, n)
}

func TestCart_LinesIsACopy(t *testing.T) {
	c := NewCart(storage.NewMemoryStore().Namespace("s1"))
	c.AddItem(product("p1", 1, "k"))
	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.TotalItemCount())
}
