package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 50

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("sku already exists")
)

var hundred = decimal.NewFromInt(100)

// Catalog holds products in insertion order. Products are never deleted.
// It is not safe for concurrent use; callers serialize access.
type Catalog struct {
	products []Product
	nextSeq  int
}

func New(seed []Product) *Catalog {
	c := &Catalog{products: make([]Product, 0, len(seed))}
	for _, p := range seed {
		c.products = append(c.products, p)
		if n := seqOf(p.ID); n > c.nextSeq {
			c.nextSeq = n
		}
	}
	return c
}

func (c *Catalog) GetAll(onlyActive bool) []Product {
	if onlyActive {
		return c.filter(func(p Product) bool { return p.Active })
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) GetByID(id string) (Product, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return c.products[i], nil
}

// Add rejects a SKU already present in the catalog; nothing is appended in
// that case. Otherwise the product gets the next P### id.
func (c *Catalog) Add(np NewProduct) (Product, error) {
	for _, p := range c.products {
		if p.SKU == np.SKU {
			return Product{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, np.SKU)
		}
	}
	active := true
	if np.Active != nil {
		active = *np.Active
	}
	c.nextSeq++
	p := Product{
		ID:       fmt.Sprintf("P%03d", c.nextSeq),
		Name:     np.Name,
		Category: np.Category,
		Price:    np.Price,
		Stock:    np.Stock,
		SKU:      np.SKU,
		Active:   active,
	}
	c.products = append(c.products, p)
	return p, nil
}

// UpdateStock adds delta to the current stock, clamping at zero.
func (c *Catalog) UpdateStock(id string, delta int) (Product, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	c.products[i].Stock = max(0, c.products[i].Stock+delta)
	return c.products[i], nil
}

// ApplyBulkDiscount reprices every active product in category to
// price*(1-pct/100) rounded to cents. pct is not range checked: a negative
// value raises prices and a value above 100 yields negative prices.
func (c *Catalog) ApplyBulkDiscount(category string, pct decimal.Decimal) []Product {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	affected := []Product{}
	for i := range c.products {
		p := &c.products[i]
		if p.Category != category || !p.Active {
			continue
		}
		p.Price = p.Price.Mul(factor).Round(2)
		affected = append(affected, *p)
	}
	return affected
}

func (c *Catalog) LowStockAlerts(threshold int) []Product {
	return c.filter(func(p Product) bool { return p.Active && p.Stock <= threshold })
}

func (c *Catalog) InventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.products {
		if p.Active {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		}
	}
	return total
}

// GroupByCategory lists active product names per category, categories in
// first-seen order.
func (c *Catalog) GroupByCategory() []CategoryGroup {
	var groups []CategoryGroup
	pos := make(map[string]int)
	for _, p := range c.products {
		if !p.Active {
			continue
		}
		i, ok := pos[p.Category]
		if !ok {
			i = len(groups)
			pos[p.Category] = i
			groups = append(groups, CategoryGroup{Category: p.Category})
		}
		groups[i].Names = append(groups[i].Names, p.Name)
	}
	return groups
}

// Listing resolves the name and current unit price used to price orders.
func (c *Catalog) Listing(id string) (name string, unitPrice decimal.Decimal, ok bool) {
	i := c.indexOf(id)
	if i < 0 {
		return "", decimal.Zero, false
	}
	return c.products[i].Name, c.products[i].Price, true
}

func (c *Catalog) indexOf(id string) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func seqOf(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "P"))
	if err != nil {
		return 0
	}
	return n
}
