package client

import (
	"EstateHub/models"
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListVisits(ctx context.Context, uid string) ([]models.Visit, error) {
	var out []models.Visit
	if err := c.do(ctx, http.MethodGet, "/visits", url.Values{"uid": {uid}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVisit(ctx context.Context, req models.VisitRequest) (*models.Visit, error) {
	var out models.Visit
	if err := c.do(ctx, http.MethodPost, "/visits", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVisit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/visits/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) DeleteAllVisits(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodDelete, "/visits/all", url.Values{"uid": {uid}}, nil, nil)
}
