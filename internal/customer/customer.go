package customer

import "time"

type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

type Customer struct {
	ID        int
	Name      string
	Email     string
	Country   string
	Tier      Tier
	CreatedAt time.Time
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name      *string
	Email     *string
	Country   *string
	Tier      *Tier
	CreatedAt *time.Time
}

func (p Patch) apply(c Customer) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Country != nil {
		c.Country = *p.Country
	}
	if p.Tier != nil {
		c.Tier = *p.Tier
	}
	if p.CreatedAt != nil {
		c.CreatedAt = *p.CreatedAt
	}
	return c
}

type TierCount struct {
	Tier  Tier
	Count int
}

type Stats struct {
	Total int
	// ByTier is ordered by first occurrence of each tier in the store.
	ByTier []TierCount
}

func Seed() []Customer {
	return []Customer{
		{ID: 1, Name: "Alice Dupont", Email: "alice@acme.com", Country: "FR", Tier: TierGold, CreatedAt: date(2023, time.January, 15)},
		{ID: 2, Name: "Bob Nguyen", Email: "bob@orbit.io", Country: "US", Tier: TierSilver, CreatedAt: date(2023, time.March, 22)},
		{ID: 3, Name: "Clara Schmidt", Email: "clara@zenith.de", Country: "DE", Tier: TierGold, CreatedAt: date(2023, time.June, 1)},
		{ID: 4, Name: "David Martin", Email: "david@apex.fr", Country: "FR", Tier: TierBronze, CreatedAt: date(2024, time.January, 10)},
		{ID: 5, Name: "Eva Lindstrom", Email: "eva@nordic.se", Country: "SE", Tier: TierSilver, CreatedAt: date(2024, time.February, 28)},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
