package models

import "time"

// Category is a shared, read-only classification tag
type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (Category) TableName() string { return "categories" }

// AudioFile is the metadata row for one uploaded file. FilePath is the storage key of its bytes.
type AudioFile struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AccountID   int64     `json:"accountId"`
	CategoryID  int64     `json:"categoryId"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	Description *string   `json:"description"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (AudioFile) TableName() string { return "audio_files" }

// AudioFileUpdate carries optional metadata changes; nil fields are left unchanged
type AudioFileUpdate struct {
	Description *string `json:"description"`
	CategoryID  *int64  `json:"categoryId"`
}

// Validate checks the update body
func (f *AudioFileUpdate) Validate() []string {
	var errors []string

	if f.Description == nil && f.CategoryID == nil {
		errors = append(errors, "Nothing to update")
	}
	if f.CategoryID != nil && *f.CategoryID <= 0 {
		errors = append(errors, "Category ID must be positive")
	}
	if f.Description != nil && len(*f.Description) > 1000 {
		errors = append(errors, "Description must be less than 1000 characters")
	}

	return errors
}
