package services

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

var supportedLanguages = map[string]bool{"en": true, "es": true}

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateLanguage(dbc dbctx.Context, language string) error

	// ApplyTierChange is the billing-webhook entry point. The raw tier string
	// is normalized before storage; an unknown tier lands the user on free.
	ApplyTierChange(dbc dbctx.Context, userID uuid.UUID, rawTier string) (*types.User, error)
}

type userService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:    db,
		log:   baseLog.With("service", "UserService"),
		users: userRepo,
	}
}

func (s *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	users, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}
	return users[0], nil
}

func (s *userService) UpdateLanguage(dbc dbctx.Context, language string) error {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	if !supportedLanguages[language] {
		return apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("unsupported language %q", language))
	}
	return s.users.UpdateFields(dbc, rd.UserID, map[string]interface{}{
		"language_preference": language,
	})
}

func (s *userService) ApplyTierChange(dbc dbctx.Context, userID uuid.UUID, rawTier string) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("missing user id"))
	}
	tier := mirrors.NormalizeTier(rawTier)

	users, err := s.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}
	user := users[0]

	if err := s.users.UpdateFields(dbc, userID, map[string]interface{}{
		"subscription_tier": string(tier),
	}); err != nil {
		return nil, fmt.Errorf("failed to update subscription tier: %w", err)
	}
	s.log.Info("subscription tier changed", "user_id", userID, "tier", tier)

	user.SubscriptionTier = string(tier)
	return user, nil
}
