package catalog

import "github.com/shopspring/decimal"

type Product struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
	SKU      string
	Active   bool
}

// NewProduct is the input to Catalog.Add. Active defaults to true when nil.
type NewProduct struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
	SKU      string
	Active   *bool
}

type CategoryGroup struct {
	Category string
	Names    []string
}

func Seed() []Product {
	return []Product{
		{ID: "P001", Name: "Running Shoes", Category: "footwear", Price: price("89.99"), Stock: 120, SKU: "FW-001", Active: true},
		{ID: "P002", Name: "Slim-Fit Denim Jeans", Category: "clothing", Price: price("49.99"), Stock: 85, SKU: "CL-002", Active: true},
		{ID: "P003", Name: "Stainless Water Bottle", Category: "accessories", Price: price("19.99"), Stock: 200, SKU: "AC-003", Active: true},
		{ID: "P004", Name: "Yoga Mat", Category: "sports", Price: price("34.99"), Stock: 60, SKU: "SP-004", Active: true},
		{ID: "P005", Name: "Wireless Earbuds", Category: "electronics", Price: price("129.99"), Stock: 45, SKU: "EL-005", Active: true},
		{ID: "P006", Name: "Scented Candle Set", Category: "home", Price: price("24.99"), Stock: 90, SKU: "HM-006", Active: true},
		{ID: "P007", Name: "Leather Wallet", Category: "accessories", Price: price("39.99"), Stock: 75, SKU: "AC-007", Active: true},
		{ID: "P008", Name: "Sunscreen SPF 50", Category: "beauty", Price: price("14.99"), Stock: 150, SKU: "BT-008", Active: true},
		{ID: "P009", Name: "Vintage Cap", Category: "clothing", Price: price("22.99"), Stock: 40, SKU: "CL-009", Active: true},
		{ID: "P010", Name: "Foam Roller (Retired)", Category: "sports", Price: price("18.99"), Stock: 0, SKU: "SP-010", Active: false},
	}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
