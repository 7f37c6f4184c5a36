package repositories

import (
	"gorm.io/gorm"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Account   AccountRepository
	Profile   ProfileRepository
	Category  CategoryRepository
	AudioFile AudioFileRepository
	Audit     AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:   NewAccountRepository(db),
		Profile:   NewProfileRepository(db),
		Category:  NewCategoryRepository(db),
		AudioFile: NewAudioFileRepository(db),
		Audit:     NewAuditRepository(db),
	}
}
