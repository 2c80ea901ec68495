package storage

import (
	"context"

	"gorm.io/gorm"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
)

// AccountRepository persists staff accounts.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByUsername matches the username exactly. Returns (nil, nil) when absent.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "account.find_by_username", "failed to find account", err)
	}
	return &account, nil
}

// FindConflicting matches username or email case-insensitively, the check
// applied before registration. Returns (nil, nil) when no conflict exists.
func (r *AccountRepository) FindConflicting(ctx context.Context, username, email string) (*models.Account, error) {
	var account models.Account
	q := r.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username)
	if email != "" {
		q = q.Or("LOWER(email) = LOWER(?)", email)
	}
	err := q.First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "account.find_conflicting", "failed to check for existing account", err)
	}
	return &account, nil
}

// FindByID returns (nil, nil) when absent.
func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "account.find_by_id", "failed to find account", err)
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "account.create", "failed to create account", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "account.update", "failed to update account", err)
	}
	return nil
}

// Delete is a no-op when the account is already absent.
func (r *AccountRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Account{}, id).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "account.delete", "failed to delete account", err)
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "account.list", "failed to list accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "account.count_by_role", "failed to count accounts", err)
	}
	return count, nil
}
