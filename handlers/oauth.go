package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

type FederatedProfile struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// FederatedExchanger turns an authorization code into the provider's view
// of the user.
type FederatedExchanger interface {
	Exchange(ctx context.Context, code string) (*FederatedProfile, error)
}

type GoogleExchanger struct {
	Config           *oauth2.Config
	UserInfoEndpoint string
}

func NewGoogleExchanger(clientID, clientSecret, redirectURL string) *GoogleExchanger {
	return &GoogleExchanger{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoEndpoint: googleUserInfoEndpoint,
	}
}

func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*FederatedProfile, error) {
	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := g.Config.Client(ctx, token)
	resp, err := client.Get(g.UserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info status: %s", resp.Status)
	}

	var info struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("user info: missing email")
	}
	return &FederatedProfile{
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.VerifiedEmail,
	}, nil
}
