package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func TestRegisterFormValidation(t *testing.T) {
	valid := RegisterForm{Username: "alice", Email: "a@x.com", Password: "password1"}
	assert.Empty(t, valid.Validate())

	missing := RegisterForm{Username: "  ", Email: "a@x.com", Password: "password1"}
	assert.Equal(t, []string{"Username, email, and password are required"}, missing.Validate())
}

func TestLoginFormValidation(t *testing.T) {
	assert.Empty(t, (&LoginForm{Username: "alice", Password: "x"}).Validate())
	assert.NotEmpty(t, (&LoginForm{Username: "alice"}).Validate())
}

func TestSettingsFormValidation(t *testing.T) {
	assert.NotEmpty(t, (&ChangeUsernameForm{NewUsername: "bob"}).Validate())
	assert.Empty(t, (&ChangeUsernameForm{NewUsername: "bob", Password: "pw"}).Validate())

	assert.NotEmpty(t, (&ChangePasswordForm{CurrentPassword: "old"}).Validate())
	assert.Empty(t, (&ChangePasswordForm{CurrentPassword: "old", NewPassword: "new"}).Validate())

	assert.NotEmpty(t, (&DeleteAccountForm{}).Validate())

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, (&ProfileForm{FirstName: strPtr(string(long)), LastName: strPtr(string(long))}).Validate(), 2)
	assert.Empty(t, (&ProfileForm{}).Validate())
}

func TestAudioFileUpdateValidation(t *testing.T) {
	assert.Equal(t, []string{"Nothing to update"}, (&AudioFileUpdate{}).Validate())
	assert.Empty(t, (&AudioFileUpdate{Description: strPtr("live take")}).Validate())
	assert.Equal(t, []string{"Category ID must be positive"}, (&AudioFileUpdate{CategoryID: int64Ptr(0)}).Validate())
}

func TestNewUser(t *testing.T) {
	account := &Account{ID: 7, Username: "alice", Email: "a@x.com", PasswordHash: "secret", CreatedAt: time.Now()}

	user := NewUser(account, nil)
	assert.Nil(t, user.Profile)

	user = NewUser(account, &Profile{FirstName: "A", LastName: "L"})
	require.NotNil(t, user.Profile)
	assert.Equal(t, ProfileView{FirstName: "A", LastName: "L"}, *user.Profile)
}

func TestAccountJSONHidesPasswordHash(t *testing.T) {
	data, err := json.Marshal(Account{ID: 1, Username: "alice", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	assert.False(t, ve.HasErrors())

	ve = append(ve, ValidationError{Field: "a.mp3", Message: "too big"})
	assert.True(t, ve.HasErrors())
	assert.Equal(t, []string{"too big"}, ve.GetMessages())
}
