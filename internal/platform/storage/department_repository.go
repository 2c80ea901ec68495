package storage

import (
	"context"

	"gorm.io/gorm"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
)

// DepartmentRepository persists the department directory.
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments in insertion order.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.WithContext(ctx).Order("id").Find(&departments).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "department.list", "failed to list departments", err)
	}
	return departments, nil
}

// FindByName matches exactly, not case-folded. Returns (nil, nil) when absent.
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&department).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "department.find_by_name", "failed to find department", err)
	}
	return &department, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if err := r.db.WithContext(ctx).Create(department).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "department.create", "failed to create department", err)
	}
	return nil
}

// Delete succeeds even when the id does not exist.
func (r *DepartmentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Department{}, id).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "department.delete", "failed to delete department", err)
	}
	return nil
}
