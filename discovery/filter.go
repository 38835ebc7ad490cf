package discovery

import (
	"strings"
	"sync"
	"unicode"
)

type Category string

const (
	CategoryAll     Category = ""
	CategorySale    Category = "sale"
	CategoryRent    Category = "rent"
	CategoryPremium Category = "premium"
)

type PriceRange struct {
	Min int64
	Max int64
}

func (r PriceRange) Contains(v int64) bool {
	return v >= r.Min && v <= r.Max
}

// DefaultPriceRange is the range a category starts with.
func DefaultPriceRange(c Category) PriceRange {
	if c == CategoryRent {
		return PriceRange{Min: 0, Max: 2_00_000}
	}
	return PriceRange{Min: 0, Max: 50_00_00_000}
}

// NormalizeStatus lowercases s and drops everything but letters and
// digits, so "For_Sale", "for-sale" and "ForSale" all become "forsale".
func NormalizeStatus(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c Category) Matches(status string) bool {
	if c == CategoryAll {
		return true
	}
	return strings.Contains(NormalizeStatus(status), string(c))
}

type Filter struct {
	Category Category
	Price    PriceRange
	Search   string
}

func (f Filter) Match(l Listing) bool {
	if !f.Category.Matches(l.Status) {
		return false
	}
	if !f.Price.Contains(l.PriceValue) {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return search == "" || strings.Contains(strings.ToLower(l.Title), search)
}

// FilterListings keeps the listings matching every predicate of f.
func FilterListings(listings []Listing, f Filter) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Browser holds the filter state of the listing page.
type Browser struct {
	mu     sync.RWMutex
	filter Filter
}

func NewBrowser(c Category) *Browser {
	return &Browser{filter: Filter{Category: c, Price: DefaultPriceRange(c)}}
}

// SetCategory switches category and resets the price range to the new
// category's default.
func (b *Browser) SetCategory(c Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.filter.Category == c {
		return
	}
	b.filter.Category = c
	b.filter.Price = DefaultPriceRange(c)
}

func (b *Browser) SetPriceRange(r PriceRange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	b.filter.Price = r
}

func (b *Browser) SetSearch(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Search = s
}

func (b *Browser) Filter() Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

func (b *Browser) Apply(listings []Listing) []Listing {
	return FilterListings(listings, b.Filter())
}
