package client

import (
	"EstateHub/models"
	"context"
	"net/http"
	"net/url"
)

// ListProperties returns listings as raw JSON objects; field naming is not
// uniform across listing sources and is normalized by the caller.
func (c *Client) ListProperties(ctx context.Context) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/properties", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListWishlist(ctx context.Context) ([]models.WishlistEntry, error) {
	var out []models.WishlistEntry
	if err := c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToWishlist(ctx context.Context, req models.WishlistRequest) error {
	return c.do(ctx, http.MethodPost, "/wishlist", nil, req, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(key), nil, nil, nil)
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *Client) Geocode(ctx context.Context, address string) (Coordinates, error) {
	var out Coordinates
	err := c.do(ctx, http.MethodGet, "/geocode", url.Values{"address": {address}}, nil, &out)
	return out, err
}
