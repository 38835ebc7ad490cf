package client

import (
	"EstateHub/models"
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil,
		models.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GoogleSignIn(ctx context.Context, code string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", nil, models.GoogleSignInRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the user behind token, which may differ from the client's
// token source while a session is being restored.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.doWithToken(ctx, http.MethodGet, "/auth/me", nil, nil, &out, token); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/password-reset", nil, models.EmailRequest{Email: email}, nil)
}

func (c *Client) RequestEmailVerification(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-email", nil, struct{}{}, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateUserRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, "/profile", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchRole(ctx context.Context, email string) (string, error) {
	var out models.RoleResponse
	if err := c.do(ctx, http.MethodGet, "/role", url.Values{"email": {email}}, nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) UpsertUser(ctx context.Context, req models.UpsertUserRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/user", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
