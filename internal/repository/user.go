package repository

import (
	"context"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	SetMeta(ctx context.Context, userID int64, values map[string]string) error

	// ResetPassword clears reset_password_key only while it still equals
	// resetKey, then stores the hash, in one transaction. A key that was
	// already consumed yields domain.ErrResetEmptyKey and nothing is written.
	ResetPassword(ctx context.Context, userID int64, resetKey, passwordHash string) error
}
