package discovery

import (
	"context"

	"go.uber.org/zap"
)

type ListingSource interface {
	ListProperties(ctx context.Context) ([]map[string]interface{}, error)
}

type Catalog struct {
	source ListingSource
	logger *zap.Logger
}

func NewCatalog(source ListingSource, logger *zap.Logger) *Catalog {
	return &Catalog{source: source, logger: logger.With(zap.String("component", "catalog"))}
}

// FetchListings never fails: a broken fetch yields an empty list. For the
// rent category the fallback dataset is added when the backend has no
// rent listings at all.
func (c *Catalog) FetchListings(ctx context.Context, category Category, fallbackRent []map[string]interface{}) []Listing {
	raw, err := c.source.ListProperties(ctx)
	if err != nil {
		c.logger.Warn("fetching listings failed", zap.Error(err))
		raw = nil
	}
	listings := NormalizeListings(raw)

	if category == CategoryRent && len(fallbackRent) > 0 {
		for _, l := range listings {
			if CategoryRent.Matches(l.Status) {
				return listings
			}
		}
		c.logger.Info("no rent listings from backend, using fallback", zap.Int("fallback", len(fallbackRent)))
		listings = append(listings, NormalizeListings(fallbackRent)...)
	}
	return listings
}
