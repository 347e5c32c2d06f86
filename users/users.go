package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinUsernameLength is the shortest username accepted at registration and login.
const MinUsernameLength = 5

// PasswordPolicy describes the composite password rule in user-facing terms.
const PasswordPolicy = "password must be at least 8 characters long and contain at least one uppercase letter, one number and one special character"

type User struct {
	ID           string    `json:"user_id,omitempty"`    // Unique identifier for the user
	Email        string    `json:"email,omitempty"`      // User's email address
	Username     string    `json:"username,omitempty"`   // Unique username
	PasswordHash string    `json:"-"`                    // Hashed version of the user's password - never serialize
	FirstName    string    `json:"first_name,omitempty"` // First name of the user
	LastName     string    `json:"last_name,omitempty"`  // Last name of the user
	Role         Role      `json:"role,omitempty"`       // Single hospital role
	Active       bool      `json:"is_active"`            // Disabled accounts cannot log in
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// Profile is the denormalized snapshot of a user that clients cache for rendering.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ValidateUsername checks the minimum username length.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains at least one uppercase letter
// - Contains at least one number
// - Contains at least one symbol
//
// Any failure reports the whole policy so the user sees every rule at once.
func ValidatePasswordStrength(password string) error {
	var (
		hasUpper  bool
		hasNumber bool
		hasSymbol bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSymbol = true
		}
	}

	if utf8.RuneCountInString(password) < 8 || !hasUpper || !hasNumber || !hasSymbol {
		return fmt.Errorf("%s", PasswordPolicy)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
