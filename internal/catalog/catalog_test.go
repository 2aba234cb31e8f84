package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w := decimal.RequireFromString(want)
	assert.Truef(t, w.Equal(got), "want %s, got %s", w, got)
}

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestGetAll_OnlyActiveFiltersRetired(t *testing.T) {
	c := New(Seed())

	assert.Len(t, c.GetAll(false), 10)
	active := c.GetAll(true)
	assert.Len(t, active, 9)
	assert.NotContains(t, ids(active), "P010")
	assert.Equal(t, "P001", active[0].ID)
}

func TestGetByID(t *testing.T) {
	c := New(Seed())

	p, err := c.GetByID("P005")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Earbuds", p.Name)

	_, err = c.GetByID("P999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdd_AssignsPaddedIDAndDefaultsActive(t *testing.T) {
	c := New(Seed())

	p, err := c.Add(NewProduct{Name: "Canvas Tote Bag", Category: "accessories", Price: decimal.RequireFromString("17.99"), Stock: 110, SKU: "AC-011"})

	require.NoError(t, err)
	assert.Equal(t, "P011", p.ID)
	assert.True(t, p.Active)
	assert.Len(t, c.GetAll(false), 11)
}

func TestAdd_ExplicitInactive(t *testing.T) {
	c := New(Seed())
	inactive := false

	p, err := c.Add(NewProduct{Name: "Old Stock", Category: "home", SKU: "HM-100", Active: &inactive})

	require.NoError(t, err)
	assert.False(t, p.Active)
}

func TestAdd_DuplicateSKU_IsRejectedAndCatalogUnchanged(t *testing.T) {
	c := New(Seed())
	before := c.GetAll(false)

	_, err := c.Add(NewProduct{Name: "Copy", Category: "clothing", SKU: "CL-002"})

	assert.ErrorIs(t, err, ErrDuplicateSKU)
	assert.Len(t, c.GetAll(false), 10)
	assert.Equal(t, before, c.GetAll(false))

	// the next successful add still gets the next id
	p, err := c.Add(NewProduct{Name: "Fresh", Category: "clothing", SKU: "CL-099"})
	require.NoError(t, err)
	assert.Equal(t, "P011", p.ID)
}

func TestUpdateStock(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		delta int
		want  int
	}{
		{"restock", "P003", 50, 250},
		{"consume", "P001", -30, 90},
		{"clamp at zero", "P001", -1000, 0},
		{"zero delta", "P004", 0, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Seed())

			p, err := c.UpdateStock(tt.id, tt.delta)

			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Stock)
			stored, _ := c.GetByID(tt.id)
			assert.Equal(t, tt.want, stored.Stock)
		})
	}
}

func TestUpdateStock_Unknown(t *testing.T) {
	c := New(Seed())

	_, err := c.UpdateStock("P999", 5)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyBulkDiscount_OnlyActiveProductsInCategory(t *testing.T) {
	c := New(Seed())

	affected := c.ApplyBulkDiscount("clothing", decimal.NewFromInt(20))

	assert.Equal(t, []string{"P002", "P009"}, ids(affected))
	jeans, _ := c.GetByID("P002")
	vintage, _ := c.GetByID("P009")
	assertDecimal(t, "39.99", jeans.Price)
	assertDecimal(t, "18.39", vintage.Price)

	shoes, _ := c.GetByID("P001")
	assertDecimal(t, "89.99", shoes.Price)
}

func TestApplyBulkDiscount_SkipsInactive(t *testing.T) {
	c := New(Seed())

	affected := c.ApplyBulkDiscount("sports", decimal.NewFromInt(10))

	assert.Equal(t, []string{"P004"}, ids(affected))
	retired, _ := c.GetByID("P010")
	assertDecimal(t, "18.99", retired.Price)
	mat, _ := c.GetByID("P004")
	assertDecimal(t, "31.49", mat.Price)
}

func TestApplyBulkDiscount_UncheckedPercentages(t *testing.T) {
	tests := []struct {
		name string
		pct  int64
		want string
	}{
		{"negative raises price", -10, "54.99"},
		{"over one hundred goes negative", 150, "-25.00"},
		{"exactly one hundred is free", 100, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Seed())

			c.ApplyBulkDiscount("clothing", decimal.NewFromInt(tt.pct))

			jeans, _ := c.GetByID("P002")
			assertDecimal(t, tt.want, jeans.Price)
		})
	}
}

func TestApplyBulkDiscount_UnknownCategory(t *testing.T) {
	c := New(Seed())

	assert.Empty(t, c.ApplyBulkDiscount("garden", decimal.NewFromInt(20)))
}

func TestLowStockAlerts(t *testing.T) {
	c := New(Seed())

	assert.Equal(t, []string{"P005", "P009"}, ids(c.LowStockAlerts(DefaultLowStockThreshold)))
	assert.Equal(t, []string{"P005", "P009"}, ids(c.LowStockAlerts(45)))
	assert.Equal(t, []string{"P009"}, ids(c.LowStockAlerts(40)))
	assert.Empty(t, c.LowStockAlerts(10))
}

func TestInventoryValue(t *testing.T) {
	c := New(Seed())

	assertDecimal(t, "35411.35", c.InventoryValue())
}

func TestInventoryValue_AfterRestock(t *testing.T) {
	c := New(Seed())

	p, err := c.UpdateStock("P003", 50)
	require.NoError(t, err)
	assert.Equal(t, 250, p.Stock)

	// 19.99 * 250 = 4997.50 replaces the seeded 3998.00 contribution
	assertDecimal(t, "36410.85", c.InventoryValue())
}

func TestGroupByCategory_FirstSeenOrder(t *testing.T) {
	c := New(Seed())

	groups := c.GroupByCategory()

	assert.Equal(t, []CategoryGroup{
		{Category: "footwear", Names: []string{"Running Shoes"}},
		{Category: "clothing", Names: []string{"Slim-Fit Denim Jeans", "Vintage Cap"}},
		{Category: "accessories", Names: []string{"Stainless Water Bottle", "Leather Wallet"}},
		{Category: "sports", Names: []string{"Yoga Mat"}},
		{Category: "electronics", Names: []string{"Wireless Earbuds"}},
		{Category: "home", Names: []string{"Scented Candle Set"}},
		{Category: "beauty", Names: []string{"Sunscreen SPF 50"}},
	}, groups)
}

func TestListing(t *testing.T) {
	c := New(Seed())

	name, price, ok := c.Listing("P003")
	assert.True(t, ok)
	assert.Equal(t, "Stainless Water Bottle", name)
	assertDecimal(t, "19.99", price)

	_, price, ok = c.Listing("P404")
	assert.False(t, ok)
	assert.True(t, price.IsZero())
}
