package user

import (
	"context"
)

type StubUserRepository struct {
	nextId int
	data   map[int]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{nextId: 0, data: map[int]User{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, user User) (int, error) {
	for _, existing := range s.data {
		if existing.Username == user.Username {
			return 0, ErrUsernameTaken
		}
	}
	s.nextId++
	user.Id = s.nextId
	s.data[s.nextId] = user
	return s.nextId, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, user := range s.data {
		if user.Uid == uid {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepository) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	existing, ok := s.data[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	existing.DisplayName = user.DisplayName
	existing.Currency = user.Currency
	s.data[userId] = existing
	return existing, nil
}
