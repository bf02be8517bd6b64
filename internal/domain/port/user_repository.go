package port

import (
	"context"

	"surface-inspector/internal/domain/entity"
)

// UserRepository хранилище сессий инспекторов в боте.
// Get и Save работают с копиями, чтобы обработчики разных чатов не делили состояние.
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет пользователя целиком
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет только состояние диалога
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
