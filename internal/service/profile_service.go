package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/repository"
)

// ProfileService reads and edits user profiles.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Update(ctx context.Context, actor Actor, userID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	UploadPhoto(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.ProfileResponse, error)
}

type profileService struct {
	users     repository.UserRepository
	uploads   UploadService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, uploads UploadService, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		uploads:   uploads,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(user), nil
}

func (s *profileService) Update(ctx context.Context, actor Actor, userID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if actor.ID != userID {
		return dto.ProfileResponse{}, ErrProfileForbidden
	}

	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, validationError(err)
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil || req.Email != nil {
		taken, err := s.users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		if taken {
			return dto.ProfileResponse{}, ErrUserExists
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.ProfileResponse{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ProfileResponse{}, ErrUserExists
		}
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) UploadPhoto(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.ProfileResponse, error) {
	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	uploaded, err := s.uploads.Upload(ctx, actor.ID, models.UploadPurposePhoto, file)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	user.PhotoURL = &uploaded.URL
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Error().Err(err).Str("photo_url", uploaded.URL).Msg("photo stored but profile not updated")
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) load(ctx context.Context, userID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
