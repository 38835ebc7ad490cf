package client

import (
	"EstateHub/models"
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
)

func (c *Client) ListReviews(ctx context.Context) ([]models.Review, error) {
	var out []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, req models.ReviewRequest) (*models.Review, error) {
	var out models.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkHelpful(ctx context.Context, id string, helpful bool) (*models.Review, error) {
	vote := "no"
	if helpful {
		vote = "yes"
	}
	var out models.Review
	err := c.do(ctx, http.MethodPost, "/reviews/"+url.PathEscape(id)+"/helpful", nil, models.HelpfulRequest{Type: vote}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyReview(ctx context.Context, id string, verified bool) (*models.Review, error) {
	var out models.Review
	err := c.do(ctx, http.MethodPatch, "/reviews/"+url.PathEscape(id)+"/verify", nil, models.VerifyRequest{Verified: verified}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) DeleteAllReviews(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/reviews", nil, nil, nil)
}

// UploadReviewImage posts the image as multipart form field "image".
func (c *Client) UploadReviewImage(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/reviews/upload-image", nil, &buf, "")
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out models.UploadResponse
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}
