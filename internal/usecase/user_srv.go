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
	"content-catalog/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Admin endpoints
	GetAllUsers(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	GetUser(ctx context.Context, username string) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, username string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, username string) error

	// Own profile
	GetMe(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error)

	// CreateSuperuser bootstraps an administrator from the command line.
	CreateSuperuser(ctx context.Context, username, email string) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	normalizePage(req)

	users, err := us.userRepo.FindAll(ctx, search, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, len(users))
	for i, u := range users {
		data[i] = response.UserToResponse(u)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	role := entity.UserRole(req.Role)
	if role == "" {
		role = entity.RoleUser
	}

	now := time.Now()
	user := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:  req.Username,
		Email:     req.Email,
		FirstName: utils.SanitizeText(req.FirstName),
		LastName:  utils.SanitizeText(req.LastName),
		Bio:       utils.SanitizeText(req.Bio),
		Role:      role,
	}

	if err := us.create(ctx, user); err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) CreateSuperuser(ctx context.Context, username, email string) (*response.UserResponse, error) {
	req := &request.CreateUserRequest{Username: username, Email: email, Role: string(entity.RoleAdmin)}
	if err := validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:    username,
		Email:       email,
		Role:        entity.RoleAdmin,
		IsSuperuser: true,
	}

	if err := us.create(ctx, user); err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// create checks both unique fields up front so clients get a field error.
func (us *userService) create(ctx context.Context, user *entity.User) error {
	if err := us.ensureUnique(ctx, user); err != nil {
		return err
	}

	if err := us.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("create user %s: %w", user.Username, ErrConflict)
		}
		us.log.Error("Failed to create user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("create user: %w", err)
	}

	us.log.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return nil
}

func (us *userService) ensureUnique(ctx context.Context, user *entity.User) error {
	existing, err := us.userRepo.FindByUsername(ctx, user.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if existing != nil && existing.ID != user.ID {
		return invalidField("username", "A user with that username already exists")
	}

	existing, err = us.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != user.ID {
		return invalidField("email", "A user with that email already exists")
	}

	return nil
}

func (us *userService) findByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := us.userRepo.FindByUsername(ctx, username)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return user, nil
}

func (us *userService) findByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id.String(), ErrNotFound)
	}
	return user, nil
}

func (us *userService) GetUser(ctx context.Context, username string) (*response.UserResponse, error) {
	user, err := us.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, username string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := us.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return us.update(ctx, user, req, true)
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateMe edits the caller's own profile. A role in the payload is ignored.
func (us *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := us.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return us.update(ctx, user, req, false)
}

func (us *userService) update(ctx context.Context, user *entity.User, req *request.UpdateUserRequest, allowRole bool) (*response.UserResponse, error) {
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = utils.SanitizeText(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = utils.SanitizeText(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = utils.SanitizeText(*req.Bio)
	}
	if allowRole && req.Role != nil {
		user.Role = entity.UserRole(*req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := us.ensureUnique(ctx, user); err != nil {
		return nil, err
	}

	if err := us.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("update user %s: %w", user.Username, ErrConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("update user %s: %w", user.Username, ErrNotFound)
		}
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("update user: %w", err)
	}

	us.log.Info("User updated", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, username string) error {
	user, err := us.findByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := us.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete user %s: %w", username, ErrNotFound)
		}
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("delete user: %w", err)
	}

	us.log.Info("User deleted", zap.String("username", username))
	return nil
}
