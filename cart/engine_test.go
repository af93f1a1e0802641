package cart

import (
	"math/rand"
	"testing"
	"time"

	"loja-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(func() time.Time { return fixedNow })
}

func product(id string, price string) *models.Product {
	return &models.Product{ID: id, Name: "Produto " + id, UnitPrice: decimal.RequireFromString(price)}
}

func TestAddItem_CreatesCart(t *testing.T) {
	e := newTestEngine()

	c, err := e.AddItem(nil, "U", product("P1", "10"), 2)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "U", c.OwnerID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "P1", c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(c.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(c.Total), "total = %s", c.Total)
	assert.Equal(t, fixedNow, c.LastUpdatedAt)
}

func TestAddItem_AccumulatesQuantity(t *testing.T) {
	e := newTestEngine()

	c, err := e.AddItem(nil, "U", product("P1", "10"), 2)
	require.NoError(t, err)
	c, err = e.AddItem(c, "U", product("P1", "10"), 1)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(c.Total))
}

func TestAddItem_AccumulationLaw(t *testing.T) {
	e := newTestEngine()
	p := product("p", "4.25")

	c, err := e.AddItem(nil, "U", p, 2)
	require.NoError(t, err)
	c, err = e.AddItem(c, "U", p, 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItem_KeepsFirstPriceSnapshot(t *testing.T) {
	e := newTestEngine()

	c, err := e.AddItem(nil, "U", product("P1", "10"), 1)
	require.NoError(t, err)
	c, err = e.AddItem(c, "U", product("P1", "99.90"), 1)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(c.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(c.Total))
}

func TestAddItem_AppendsInFirstAddOrder(t *testing.T) {
	e := newTestEngine()

	c, _ := e.AddItem(nil, "U", product("B", "1"), 1)
	c, _ = e.AddItem(c, "U", product("A", "2"), 1)
	c, _ = e.AddItem(c, "U", product("B", "1"), 4)
	c, _ = e.AddItem(c, "U", product("C", "3"), 1)

	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	assert.Equal(t, []string{"B", "A", "C"}, ids)
	assert.True(t, decimal.NewFromInt(10).Equal(c.Total))
}

func TestAddItem_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.AddItem(nil, "U", product("P1", "10"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.AddItem(nil, "U", product("P1", "10"), -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.AddItem(nil, "U", nil, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	c, _ := e.AddItem(nil, "U", product("P1", "10"), 1)
	before := c.Clone()

	_, err := e.AddItem(c, "U", product("P1", "10"), 5)
	require.NoError(t, err)
	_, err = e.AddItem(c, "U", product("P2", "1"), 1)
	require.NoError(t, err)

	assert.Equal(t, before, c)
}

func TestRemoveItem(t *testing.T) {
	e := newTestEngine()
	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)
	c, _ = e.AddItem(c, "U", product("P2", "2.5"), 2)

	next, err := e.RemoveItem(c, "P1")
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Len(t, next.Items, 1)
	assert.Equal(t, "P2", next.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(5).Equal(next.Total))
}

func TestRemoveItem_CascadesToDeletion(t *testing.T) {
	e := newTestEngine()
	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)

	next, err := e.RemoveItem(c, "P1")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRemoveItem_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.RemoveItem(nil, "P1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)
	before := c.Clone()
	_, err = e.RemoveItem(c, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, before, c)
}

func TestSetQuantity_Overwrites(t *testing.T) {
	e := newTestEngine()
	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)

	next, err := e.SetQuantity(c, "P1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, next.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(70).Equal(next.Total))
}

func TestSetQuantity_FloorMatchesRemove(t *testing.T) {
	e := newTestEngine()
	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)
	c, _ = e.AddItem(c, "U", product("P2", "3"), 1)

	removed, err := e.RemoveItem(c, "P1")
	require.NoError(t, err)

	for _, q := range []int{0, -1} {
		got, err := e.SetQuantity(c, "P1", q)
		require.NoError(t, err)
		assert.Equal(t, removed, got, "quantity %d", q)
	}

	single, _ := e.AddItem(nil, "U", product("P1", "10"), 2)
	got, err := e.SetQuantity(single, "P1", 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetQuantity_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.SetQuantity(nil, "P1", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)

	c, _ := e.AddItem(nil, "U", product("P1", "10"), 2)
	_, err = e.SetQuantity(c, "P9", 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestComputeTotal(t *testing.T) {
	items := []models.LineItem{
		{ProductID: "a", Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
		{ProductID: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("19.99")},
	}

	first := ComputeTotal(items)
	second := ComputeTotal(items)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "20.29", first.StringFixed(2))

	assert.True(t, ComputeTotal(nil).IsZero())
}

// Random AddItem sequences never produce duplicate lines and the total always
// equals the dot product of prices and quantities.
func TestAddItem_RandomSequences(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(42))
	catalog := []*models.Product{
		product("p1", "1.99"), product("p2", "10"), product("p3", "0.05"), product("p4", "250.00"),
	}

	for run := 0; run < 200; run++ {
		var c *models.Cart
		want := map[string]int{}
		for step := 0; step < 1+rng.Intn(20); step++ {
			p := catalog[rng.Intn(len(catalog))]
			q := 1 + rng.Intn(5)
			var err error
			c, err = e.AddItem(c, "U", p, q)
			require.NoError(t, err)
			want[p.ID] += q
		}

		seen := map[string]bool{}
		dot := decimal.Zero
		for _, it := range c.Items {
			require.False(t, seen[it.ProductID], "duplicate line for %s", it.ProductID)
			seen[it.ProductID] = true
			assert.Equal(t, want[it.ProductID], it.Quantity)
			dot = dot.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		assert.Len(t, seen, len(want))
		assert.True(t, dot.Equal(c.Total), "run %d: total %s != %s", run, c.Total, dot)
	}
}
