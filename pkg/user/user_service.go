package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

// CreateUser assigns a fresh uid when none is given and defaults the currency.
func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.Username == "" || user.DisplayName == "" {
		return User{}, ErrUserDataInvalid
	}
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	} else if _, err := uuid.Parse(user.Uid); err != nil {
		return User{}, fmt.Errorf("%w: uid must be a UUID", ErrUserDataInvalid)
	}
	if user.Currency == "" {
		user.Currency = DefaultCurrency
	}

	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		return User{}, ErrUserDataInvalid
	}
	if user.Currency == "" {
		user.Currency = DefaultCurrency
	}
	return u.repo.UpdateUser(ctx, userId, user)
}
