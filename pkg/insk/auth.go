package insk

import (
	"context"
	"fmt"

	"github.com/inskhq/insk-go/pkg/gateway"
	"github.com/inskhq/insk-go/pkg/session"
)

// AuthService manages the session lifecycle against the auth endpoints.
type AuthService struct {
	gw    *gateway.Client
	store session.Store
}

// Login exchanges credentials for a session token and stores it. The store
// emits its change signal before Login returns.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := s.gw.Post(ctx, "/auth/login", Credentials{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("insk: login response carried no token")
	}
	return s.store.Set(resp.AccessToken)
}

// Logout discards the session locally. There is no server-side session to
// tear down; expiry is the backend's concern.
func (s *AuthService) Logout() error {
	return s.store.Clear()
}

// Authenticated reports whether a session token is held.
func (s *AuthService) Authenticated() bool {
	return s.store.Authenticated()
}

// SignUp registers a new user. It does not create a session.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (SignUpResponse, error) {
	var resp SignUpResponse
	err := s.gw.Post(ctx, "/auth/signup", req, &resp)
	return resp, err
}

// UpdateDepartment changes the calling user's department.
func (s *AuthService) UpdateDepartment(ctx context.Context, department string) error {
	body := map[string]string{"department": department}
	return s.gw.Put(ctx, "/auth/me/department", body, nil)
}

// ForgotPassword requests a password-reset ticket.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (PasswordResetTicket, error) {
	var resp PasswordResetTicket
	err := s.gw.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, &resp)
	return resp, err
}

// ResetPassword redeems a reset ticket.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return s.gw.Post(ctx, "/auth/reset-password", body, nil)
}
