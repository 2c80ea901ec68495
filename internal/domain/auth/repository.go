package auth

import (
	"context"

	"gatepass-server-go/internal/models"
)

// AccountRepository abstracts the credential store. Implementations return
// (nil, nil) when a lookup finds nothing.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindConflicting(ctx context.Context, username, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.Account, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
