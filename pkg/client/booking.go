package client

import (
	"context"
	"net/http"
	"net/url"
	"shubakar/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(httpClient *HttpClient) *BookingClient {
	return &BookingClient{httpClient: httpClient}
}

func (c *BookingClient) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings", req)
	if err != nil {
		return nil, err
	}
	return decodeBooking(resp, http.StatusCreated)
}

func (c *BookingClient) List(ctx context.Context) ([]*model.BookingView, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings")
	if err != nil {
		return nil, err
	}
	var out struct {
		Bookings []*model.BookingView `json:"bookings"`
	}
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	resp, err := c.httpClient.PATCH(ctx, "/api/v1/bookings/"+url.PathEscape(id), model.UpdateStatusRequest{Status: status})
	if err != nil {
		return nil, err
	}
	return decodeBooking(resp, http.StatusOK)
}

func decodeBooking(resp *Response, want int) (*model.Booking, error) {
	var out struct {
		Booking *model.Booking `json:"booking"`
	}
	if err := expect(resp, want, &out); err != nil {
		return nil, err
	}
	return out.Booking, nil
}
