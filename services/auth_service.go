package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hotel-reservations/repositories"
	"hotel-reservations/utils"
)

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type AuthService struct {
	store  *repositories.Store
	secret string
	now    func() time.Time
}

func NewAuthService(store *repositories.Store, secret string) *AuthService {
	return &AuthService{store: store, secret: secret, now: time.Now}
}

// Login checks the password and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	customer, err := s.store.Customers.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, fmt.Errorf("find customer: %w", err)
	}
	if customer.PasswordHash == "" {
		return LoginResult{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrUnauthorized
	}

	tok, err := utils.NewAccessToken(s.secret, customer.ID, customer.Username, s.now())
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{Name: customer.Name, Username: customer.Username, Token: tok.Token}, nil
}
