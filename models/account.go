package models

import (
	"strings"
	"time"
)

// Account is a registered user identity
type Account struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// Profile holds optional display names for an account
type Profile struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	AccountID int64     `json:"accountId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

// ProfileView is the name pair returned to clients; both fields are empty when no profile exists
type ProfileView struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// User is an account composed with its profile, if any
type User struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	CreatedAt time.Time    `json:"createdAt"`
	Profile   *ProfileView `json:"profile"`
}

// NewUser composes the public view of an account
func NewUser(account *Account, profile *Profile) *User {
	user := &User{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
	if profile != nil {
		user.Profile = &ProfileView{FirstName: profile.FirstName, LastName: profile.LastName}
	}
	return user
}

// RegisterForm is the registration request body
type RegisterForm struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate checks that the required fields are present
func (f *RegisterForm) Validate() []string {
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return []string{"Username, email, and password are required"}
	}
	return nil
}

// LoginForm is the sign-in request body
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present
func (f *LoginForm) Validate() []string {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" {
		return []string{"Username and password are required"}
	}
	return nil
}
