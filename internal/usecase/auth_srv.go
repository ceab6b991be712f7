package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/data/repository"
	"content-catalog/internal/dto/request"
	"content-catalog/internal/dto/response"
	"content-catalog/pkg/mailer"
	"content-catalog/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const confirmationSubject = "Your confirmation code"

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error)
	Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error)
}

type authService struct {
	repo   *repository.Repository
	config utils.CodeConfig
	mailer mailer.Mailer
	tokens *utils.TokenManager
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config utils.CodeConfig,
	mail mailer.Mailer,
	tokens *utils.TokenManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		mailer: mail,
		tokens: tokens,
		log:    log.With(zap.String("service", "auth")),
	}
}

// Signup registers a user, or re-sends a code when the same username and
// email pair signs up again.
func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Signup validation failed", zap.Error(err))
		return nil, err
	}

	byUsername, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	byEmail, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}

	user := byUsername
	switch {
	case byUsername != nil && byEmail != nil && byUsername.ID == byEmail.ID:
		s.log.Info("Re-sending confirmation code", zap.String("username", req.Username))
	case byUsername != nil:
		return nil, invalidField("username", "A user with that username already exists")
	case byEmail != nil:
		return nil, invalidField("email", "A user with that email already exists")
	default:
		now := time.Now()
		user = &entity.User{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Username: req.Username,
			Email:    req.Email,
			Role:     entity.RoleUser,
		}

		if err := s.repo.User.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, fmt.Errorf("signup %s: %w", req.Username, ErrConflict)
			}
			s.log.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
			return nil, fmt.Errorf("create user: %w", err)
		}

		s.log.Info("User signed up",
			zap.String("user_id", user.ID.String()),
			zap.String("username", user.Username),
		)
	}

	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}

	return &response.SignupResponse{Email: user.Email, Username: user.Username}, nil
}

func (s *authService) issueCode(ctx context.Context, user *entity.User) error {
	code, err := utils.GenerateCode(s.config.Length)
	if err != nil {
		return fmt.Errorf("generate confirmation code: %w", err)
	}

	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("hash confirmation code: %w", err)
	}

	now := time.Now()
	record := &entity.ConfirmationCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: now.Add(time.Duration(s.config.ExpiryMinutes) * time.Minute),
	}

	if err := s.repo.ConfirmationCode.Create(ctx, record); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}

	body := fmt.Sprintf("Hello %s,\n\nyour confirmation code is %s. It expires in %d minutes.",
		user.Username, code, s.config.ExpiryMinutes)
	if err := s.mailer.Send(ctx, user.Email, confirmationSubject, body); err != nil {
		return fmt.Errorf("mail confirmation code: %w", err)
	}

	return nil
}

// Token exchanges a confirmation code for an access token. Codes are single
// use.
func (s *authService) Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", req.Username, ErrNotFound)
	}

	codes, err := s.repo.ConfirmationCode.FindActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find confirmation codes: %w", err)
	}

	var matched *entity.ConfirmationCode
	for _, c := range codes {
		if utils.CheckCodeHash(req.ConfirmationCode, c.CodeHash) {
			matched = c
			break
		}
	}

	invalid := invalidField("confirmation_code", "Invalid or expired confirmation code")
	if matched == nil {
		s.log.Warn("Invalid confirmation code", zap.String("username", user.Username))
		return nil, invalid
	}

	if err := s.repo.ConfirmationCode.MarkAsUsed(ctx, matched.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("mark code used: %w", err)
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		return nil, err
	}

	s.log.Info("Token issued", zap.String("user_id", user.ID.String()))

	return &response.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}
