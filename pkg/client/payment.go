package client

import (
	"context"
	"net/http"
	"net/url"
	"shubakar/pkg/model"
)

type PaymentClient struct {
	httpClient *HttpClient
}

func NewPaymentClient(httpClient *HttpClient) *PaymentClient {
	return &PaymentClient{httpClient: httpClient}
}

// Pay sends idempotencyKey as Idempotency-Key when it is not empty.
func (c *PaymentClient) Pay(ctx context.Context, req *model.PayRequest, idempotencyKey string) (*model.PaymentReceipt, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	resp, err := c.httpClient.POSTWithHeaders(ctx, "/api/v1/payments/pay", req, headers)
	if err != nil {
		return nil, err
	}
	var out model.PaymentReceipt
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentClient) Invoice(ctx context.Context, bookingID string) (*model.Invoice, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/payments/invoice/"+url.PathEscape(bookingID))
	if err != nil {
		return nil, err
	}
	var out struct {
		Invoice *model.Invoice `json:"invoice"`
	}
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}
