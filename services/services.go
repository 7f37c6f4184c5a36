package services

import (
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/storage"
	"go.uber.org/zap"
)

// Options carries the settings services need from the configuration
type Options struct {
	MaxFileSize int64
	BcryptCost  int
}

// Services holds all service instances
type Services struct {
	User     UserService
	Settings SettingsService
	Audio    AudioService
	Audit    AuditService
}

// NewServices creates and initializes all service instances
func NewServices(
	repos *repositories.Repositories,
	store storage.Storage,
	recorder UploadRecorder,
	opts Options,
	logger *zap.Logger,
) *Services {
	audit := NewAuditService(repos.Audit, logger.Named("audit"))

	return &Services{
		User:     NewUserService(repos.Account, repos.Profile, audit, opts.BcryptCost, logger.Named("user")),
		Settings: NewSettingsService(repos, store, audit, opts.BcryptCost, logger.Named("settings")),
		Audio: NewAudioService(repos.AudioFile, repos.Category, store, audit, recorder,
			opts.MaxFileSize, logger.Named("audio")),
		Audit: audit,
	}
}
