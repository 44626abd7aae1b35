package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for Users table data access used by authentication
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID and CreatedAt fields are filled in on success.
	//
	// If a user with the same email already exists, an error matching models.ErrConflict is returned.
	Create(ctx context.Context, user *models.User) error
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, an error matching models.ErrNotFound is returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AccessTokenGenerator issues signed access tokens
type AccessTokenGenerator interface {
	GenerateAccessToken(userID string, role string) (string, error)
}

type authService struct {
	userRepo       UserRepository
	tokenGenerator AccessTokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator AccessTokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var errInvalidCredentials = models.NewError(models.ErrUnauthorized, "invalid credentials")

// Register creates a new learner account with role user and no track
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return models.NewError(models.ErrValidation, "all fields required")
	}
	if !emailRegex.MatchString(email) {
		return models.NewError(models.ErrValidation, "invalid email format")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return models.NewError(models.ErrConflict, "user already exists")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		Track:        models.TrackUnassigned,
	}

	// The repository maps a duplicate key to ErrConflict, which covers a concurrent registration
	// slipping in between the check above and the insert.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.NewError(models.ErrConflict, "user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("userId", user.ID))
	return nil
}

// Login authenticates a user and issues an access token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, models.NewError(models.ErrValidation, "email and password required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		Token: token,
		User: models.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
			Track: user.Track,
		},
	}, nil
}
