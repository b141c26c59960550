package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rikscandle/rikscandle-backend/pkg/auth"
	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/security"
)

var errRepoRequired = errors.New("user repository is required")

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service handles login and account provisioning.
type Service struct {
	repo     Store
	jwtCfg   config.JWTConfig
	passCfg  config.PasswordConfig
	logger   *logger.Logger
	timeFunc func() time.Time
}

// NewService wires the user service.
func NewService(repo Store, jwtCfg config.JWTConfig, passCfg config.PasswordConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errRepoRequired
	}
	return &Service{
		repo:     repo,
		jwtCfg:   jwtCfg,
		passCfg:  passCfg,
		logger:   logg,
		timeFunc: time.Now,
	}, nil
}

// LoginResult carries the minted token and the public account view.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials and mints an access token. Unknown emails and
// bad passwords return the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.MintAccessToken(s.jwtCfg, s.timeFunc(), auth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	ctx = s.logger.WithUserID(ctx, user.ID.String())
	s.logger.Info(ctx, "user logged in")

	return &LoginResult{Token: token, User: user}, nil
}

// CreateAdmin provisions an administrator account. Used by the bootstrap CLI.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and password are required")
	}

	hash, err := security.HashPassword(password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	return s.repo.Create(ctx, user)
}
