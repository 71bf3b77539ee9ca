// Package services holds the typed resource clients: one service per API
// domain, each declaring its cache keys, staleness windows and the key
// prefixes its mutations invalidate.
package services

import (
	"context"
	"time"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

const userMaxAge = 10 * time.Minute

// AuthService handles sign-in/out and the current-user resource.
type AuthService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewAuthService creates the auth resource client.
func NewAuthService(client *api.Client, c *cache.Cache) *AuthService {
	return &AuthService{api: client, cache: c}
}

// CurrentUser returns the authenticated user. A failed check is never
// silently retried here: a 401 already cleared the token globally, and
// the cache only re-fetches on the next explicit read.
func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("auth", "user"), userMaxAge, func(ctx context.Context) (models.User, error) {
		var user models.User
		err := s.api.Get(ctx, "/users/me", &user)
		return user, err
	})
}

// SignIn authenticates, stores the session token and seeds the current-user
// cache from the response.
func (s *AuthService) SignIn(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	if resp.Token != "" {
		s.api.Tokens().Set(resp.Token)
	}
	if resp.User.ID != "" {
		s.cache.Put(cache.Key("auth", "user"), resp.User)
	}
	return resp, nil
}

// SignUp registers a new account. The caller signs in separately; no token
// is stored here.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := s.api.Post(ctx, "/auth/register", req, &resp)
	return resp, err
}

// SignOut ends the session server-side, then drops the token and every
// cached resource.
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.api.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
		return err
	}
	s.api.Tokens().Clear()
	s.cache.Clear()
	return nil
}
