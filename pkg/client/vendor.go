package client

import (
	"context"
	"net/http"
	"net/url"
	"shubakar/pkg/model"
	"strconv"
)

type VendorClient struct {
	httpClient *HttpClient
}

func NewVendorClient(httpClient *HttpClient) *VendorClient {
	return &VendorClient{httpClient: httpClient}
}

func (c *VendorClient) Search(ctx context.Context, filter model.VendorSearchFilter) ([]*model.VendorProfile, error) {
	q := url.Values{}
	if filter.Service != "" {
		q.Set("service", filter.Service)
	}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}

	path := "/api/v1/vendors/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var out struct {
		Vendors []*model.VendorProfile `json:"vendors"`
	}
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Vendors, nil
}

// OwnProfile returns the calling vendor's profile.
func (c *VendorClient) OwnProfile(ctx context.Context) (*model.VendorProfile, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/vendors/profile")
	if err != nil {
		return nil, err
	}
	return decodeProfile(resp)
}

// Approve moderates a profile; status is "approved" or "rejected".
func (c *VendorClient) Approve(ctx context.Context, profileID, status string) (*model.VendorProfile, error) {
	resp, err := c.httpClient.PATCH(ctx, "/api/v1/vendors/approve/"+url.PathEscape(profileID), model.ApproveVendorRequest{Status: status})
	if err != nil {
		return nil, err
	}
	return decodeProfile(resp)
}

func decodeProfile(resp *Response) (*model.VendorProfile, error) {
	var out struct {
		Profile *model.VendorProfile `json:"profile"`
	}
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}
