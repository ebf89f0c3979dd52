package client

import (
	"context"
	"net/http"
	"shubakar/pkg/model"
)

type AuthResult struct {
	User  *model.Account `json:"user"`
	Token string         `json:"token"`
}

type AuthClient struct {
	httpClient *HttpClient
}

func NewAuthClient(httpClient *HttpClient) *AuthClient {
	return &AuthClient{httpClient: httpClient}
}

func (c *AuthClient) Register(ctx context.Context, req *model.RegisterRequest) (*AuthResult, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/auth/register", req)
	if err != nil {
		return nil, err
	}
	var out AuthResult
	return &out, expect(resp, http.StatusCreated, &out)
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/auth/login", model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var out AuthResult
	return &out, expect(resp, http.StatusOK, &out)
}

// Me requires a client carrying a token.
func (c *AuthClient) Me(ctx context.Context) (*model.Account, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/auth/me")
	if err != nil {
		return nil, err
	}
	var out struct {
		User *model.Account `json:"user"`
	}
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}
