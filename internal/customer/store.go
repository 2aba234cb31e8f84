package customer

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer not found")

// Store holds customer records in insertion order. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	customers []Customer
	nextID    int
	now       func() time.Time
}

// NewStore copies seed into a fresh store. Ids handed out by Add continue
// after the highest seeded id and are never reused after a delete.
func NewStore(seed []Customer, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		customers: make([]Customer, 0, len(seed)),
		now:       now,
	}
	for _, c := range seed {
		s.customers = append(s.customers, c)
		if c.ID > s.nextID {
			s.nextID = c.ID
		}
	}
	return s
}

func (s *Store) GetAll() []Customer {
	out := make([]Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

func (s *Store) GetByID(id int) (Customer, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Customer{}, ErrNotFound
	}
	return s.customers[i], nil
}

// Add assigns the next id and defaults CreatedAt to today when it is zero.
// Any id set on c is ignored.
func (s *Store) Add(c Customer) Customer {
	s.nextID++
	c.ID = s.nextID
	if c.CreatedAt.IsZero() {
		now := s.now().UTC()
		c.CreatedAt = date(now.Year(), now.Month(), now.Day())
	}
	s.customers = append(s.customers, c)
	return c
}

func (s *Store) Update(id int, p Patch) (Customer, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Customer{}, ErrNotFound
	}
	s.customers[i] = p.apply(s.customers[i])
	return s.customers[i], nil
}

func (s *Store) Delete(id int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.customers = append(s.customers[:i], s.customers[i+1:]...)
	return nil
}

// ListByTier matches the tier string exactly; "Gold" does not match "gold".
func (s *Store) ListByTier(tier Tier) []Customer {
	return s.filter(func(c Customer) bool { return c.Tier == tier })
}

func (s *Store) ListByCountry(country string) []Customer {
	return s.filter(func(c Customer) bool { return c.Country == country })
}

func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.customers)}
	pos := make(map[Tier]int)
	for _, c := range s.customers {
		i, ok := pos[c.Tier]
		if !ok {
			i = len(st.ByTier)
			pos[c.Tier] = i
			st.ByTier = append(st.ByTier, TierCount{Tier: c.Tier})
		}
		st.ByTier[i].Count++
	}
	return st
}

// Profile resolves the display data the order engine needs for enrichment.
func (s *Store) Profile(id int) (name, country string, ok bool) {
	i := s.indexOf(id)
	if i < 0 {
		return "", "", false
	}
	return s.customers[i].Name, s.customers[i].Country, true
}

func (s *Store) indexOf(id int) int {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) filter(keep func(Customer) bool) []Customer {
	out := []Customer{}
	for _, c := range s.customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
