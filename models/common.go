package models

// PageData represents common data passed to templates
type PageData struct {
	Title       string      `json:"title"`
	CurrentPage string      `json:"current_page"`
	User        *User       `json:"user,omitempty"`
	OIDCEnabled bool        `json:"oidc_enabled"`
	Data        interface{} `json:"data,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// GetMessages returns all error messages as a slice of strings
func (ve ValidationErrors) GetMessages() []string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Message
	}
	return messages
}
