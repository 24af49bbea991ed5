package library

import (
	"errors"
	"fmt"
)

// AuthService verifies credentials against the users table. Email doubles as
// the login name.
type AuthService struct {
	users *Table[*User]
}

// NewAuthService creates an auth service over an existing users table.
func NewAuthService(users *Table[*User]) *AuthService {
	return &AuthService{users: users}
}

// Authenticate returns the account matching the email/password pair.
// Unknown email and wrong password are indistinguishable to the caller;
// an inactive account is reported explicitly.
func (a *AuthService) Authenticate(email, password string) (*User, error) {
	user, err := a.findByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrNotFound)
		}
		return nil, err
	}
	if !user.VerifyPassword(password) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrNotFound)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account %s is inactive", email)
	}
	return user, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (a *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := a.users.FindByKey(userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(oldPassword) {
		return fmt.Errorf("old password does not match for user %s", userID)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return a.users.UpdateByKey(user)
}

func (a *AuthService) findByEmail(email string) (*User, error) {
	users, err := a.users.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("email %q: %w", email, ErrNotFound)
}
