// Package identity signs users in and out against the EstateHub auth
// endpoints and translates failures into user-facing errors.
package identity

import (
	"EstateHub/client"
	"EstateHub/models"
	"context"
	"errors"
	"net/http"
)

const (
	CodeInvalidCredential   = "invalid-credential"
	CodeEmailInUse          = "email-already-in-use"
	CodeRequiresRecentLogin = "requires-recent-login"
	CodeNotConfigured       = "not-configured"
	CodeUnavailable         = "unavailable"
	CodeRejected            = "rejected"
)

// Error carries a message meant to be shown to the user as is.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Account is the identity returned by a successful sign-in.
type Account struct {
	UID           string
	Name          string
	Email         string
	AvatarURL     string
	EmailVerified bool
	Token         string
}

type ProfileUpdate struct {
	Name      string
	Email     string
	AvatarURL string
}

type Client struct {
	api *client.Client
}

func New(api *client.Client) *Client {
	return &Client{api: api}
}

func toAccount(u models.User, token string) *Account {
	return &Account{
		UID:           u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		AvatarURL:     u.Avatar,
		EmailVerified: u.EmailVerified,
		Token:         token,
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return &Error{Code: CodeUnavailable, Message: "Unable to reach the sign-in service. Please try again.", Err: err}
	}
	e := &Error{Code: CodeRejected, Message: apiErr.Message, Err: err}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		e.Code = CodeInvalidCredential
	case http.StatusConflict:
		e.Code = CodeEmailInUse
	case http.StatusForbidden:
		e.Code = CodeRequiresRecentLogin
	case http.StatusServiceUnavailable, http.StatusNotImplemented:
		e.Code = CodeNotConfigured
	}
	if e.Message == "" {
		e.Message = "Something went wrong. Please try again."
	}
	return e
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, translate(err)
	}
	return toAccount(resp.User, resp.Token), nil
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*Account, error) {
	resp, err := c.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, translate(err)
	}
	return toAccount(resp.User, resp.Token), nil
}

// SignInFederated exchanges a Google authorization code.
func (c *Client) SignInFederated(ctx context.Context, code string) (*Account, error) {
	resp, err := c.api.GoogleSignIn(ctx, code)
	if err != nil {
		return nil, translate(err)
	}
	return toAccount(resp.User, resp.Token), nil
}

// SignOut has nothing to revoke: tokens are stateless and expire on their
// own. Callers drop their local copy.
func (c *Client) SignOut(ctx context.Context) error {
	return nil
}

// CurrentUser treats a deleted account like a rejected token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*Account, error) {
	u, err := c.api.Me(ctx, token)
	if errors.Is(err, client.ErrNotFound) {
		return nil, &Error{Code: CodeInvalidCredential, Message: "This account no longer exists.", Err: err}
	}
	if err != nil {
		return nil, translate(err)
	}
	return toAccount(*u, token), nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return translate(c.api.RequestPasswordReset(ctx, email))
}

func (c *Client) SendEmailVerification(ctx context.Context, token string) error {
	return translate(c.api.WithToken(token).RequestEmailVerification(ctx))
}

// UpdateProfile changes name, avatar and email. The server starts a new
// email verification when the address changes.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*Account, error) {
	u, err := c.api.WithToken(token).UpdateProfile(ctx, models.UpdateUserRequest{
		Name:   update.Name,
		Email:  update.Email,
		Avatar: update.AvatarURL,
	})
	if err != nil {
		return nil, translate(err)
	}
	return toAccount(*u, token), nil
}

// IsUnauthorized reports whether err means the token or credentials were
// rejected, as opposed to the service being unreachable.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeInvalidCredential
}
