package models

import "strings"

// ChangeUsernameForm is the body of PUT /user/username
type ChangeUsernameForm struct {
	NewUsername string `json:"newUsername"`
	Password    string `json:"password"`
}

func (f *ChangeUsernameForm) Validate() []string {
	if strings.TrimSpace(f.NewUsername) == "" || f.Password == "" {
		return []string{"Username and password are required"}
	}
	return nil
}

// ChangePasswordForm is the body of PUT /user/password
type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (f *ChangePasswordForm) Validate() []string {
	if f.CurrentPassword == "" || f.NewPassword == "" {
		return []string{"Current password and new password are required"}
	}
	return nil
}

// ProfileForm is the body of PUT /user/profile. Nil fields are left unchanged.
type ProfileForm struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (f *ProfileForm) Validate() []string {
	var errors []string

	if f.FirstName != nil && len(*f.FirstName) > 100 {
		errors = append(errors, "First name must be less than 100 characters")
	}
	if f.LastName != nil && len(*f.LastName) > 100 {
		errors = append(errors, "Last name must be less than 100 characters")
	}

	return errors
}

// DeleteAccountForm is the body of DELETE /user/account
type DeleteAccountForm struct {
	Password string `json:"password"`
}

func (f *DeleteAccountForm) Validate() []string {
	if f.Password == "" {
		return []string{"Password is required"}
	}
	return nil
}
