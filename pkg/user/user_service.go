package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserDataInvalid = errors.New("user data is invalid")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.GetUser(ctx, userId)
}

func (s *ServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.DisplayName) == "" {
		return User{}, ErrUserDataInvalid
	}
	user.Uid = uuid.NewString()

	userId, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}
