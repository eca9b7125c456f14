package api

import (
	"context"
	"net/http"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateUserRequest is the body of PUT /auth/user. Nil fields are kept.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) SignUp(ctx context.Context, in SignUpRequest) (*domain.User, error) {
	var out struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var sess domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{Email: email, Password: password}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var sess domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshBody{RefreshToken: refreshToken}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "", refreshBody{RefreshToken: refreshToken}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, accessToken string, in UpdateUserRequest) (*domain.User, error) {
	var out struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/user", accessToken, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}
