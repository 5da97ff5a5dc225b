package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

type AuthService interface {
	Register(dbc dbctx.Context, email, password, firstName, lastName string) (*types.User, string, error)
	Login(dbc dbctx.Context, email, password string) (*types.User, string, error)

	// SetContextFromToken verifies the bearer token and attaches the resolved
	// identity to the context. Tokens are stateless; there is no server-side
	// session row to revoke.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

	AccessTTL() time.Duration
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	journeys  JourneyService
	jwtSecret string
	accessTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	journeyService JourneyService,
	jwtSecret string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:        db,
		log:       baseLog.With("service", "AuthService"),
		users:     userRepo,
		journeys:  journeyService,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

func (s *authService) AccessTTL() time.Duration { return s.accessTTL }

func (s *authService) Register(dbc dbctx.Context, email, password, firstName, lastName string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("valid email required"))
	}
	if len(password) < 8 {
		return nil, "", apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("password must be at least 8 characters"))
	}

	exists, err := s.users.EmailExists(dbc, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, "", apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:               uuid.New(),
		Email:            email,
		Password:         string(hashed),
		FirstName:        firstName,
		LastName:         lastName,
		SubscriptionTier: "free",
		LastResetDate:    time.Now().UTC(),
	}

	if err := s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.users.Create(txc, []*types.User{user}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if s.journeys != nil {
			if _, err := s.journeys.EnsureJourney(txc, user.ID); err != nil {
				return fmt.Errorf("failed to create journey: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, "", err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(dbc dbctx.Context, email, password string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("email and password required"))
	}

	users, err := s.users.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, "", apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing token"))
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid token"))
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid token claims"))
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid token subject"))
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (s *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
