package app

import (
	"context"
	"strings"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/port"
)

const maxIdentifierLen = 64

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.SetState(state) })
}

// BeginCheck переводит пользователя в ожидание фото поверхности.
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetInspector запоминает имя инспектора для следующих записей.
func (s *UserService) SetInspector(ctx context.Context, userID, chatID int64, name string) (*entity.User, error) {
	name = clean(name)
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.Inspector = name })
}

// SetBatch запоминает текущую партию.
func (s *UserService) SetBatch(ctx context.Context, userID, chatID int64, batch string) (*entity.User, error) {
	batch = clean(batch)
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.Batch = batch })
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, apply func(*entity.User)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	apply(user)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if r := []rune(v); len(r) > maxIdentifierLen {
		v = string(r[:maxIdentifierLen])
	}
	return v
}
