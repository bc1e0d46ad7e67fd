package app

import (
	"askpa/internal/model"
	"askpa/internal/registry"
)

// AuthService resolves credentials against the user registry.
type AuthService struct {
	registry *registry.Registry
}

func NewAuthService(reg *registry.Registry) *AuthService {
	return &AuthService{registry: reg}
}

// Login matches the email case-insensitively (trimmed) and the password
// exactly, mirroring how accounts were created.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user := s.registry.FindByEmailFold(email)
	if user == nil || user.Password != password {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
