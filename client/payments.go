package client

import (
	"EstateHub/models"
	"context"
	"net/http"
)

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	var out models.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/payments/create-order", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/verify", nil, req, nil)
}

func (c *Client) FetchPaymentDetails(ctx context.Context, paymentID string) (*models.PaymentOrder, error) {
	var out models.PaymentOrder
	err := c.do(ctx, http.MethodPost, "/payments/fetch-payment-details", nil, models.PaymentLookupRequest{PaymentID: paymentID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendInvoice(ctx context.Context, paymentID string) error {
	return c.do(ctx, http.MethodPost, "/payments/send-invoice", nil, models.PaymentLookupRequest{PaymentID: paymentID}, nil)
}
