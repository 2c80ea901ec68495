package directory

import (
	"context"
	"strings"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/logging"
)

// Repository persists the department directory.
type Repository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByName(ctx context.Context, name string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id uint) error
}

// Service manages the admin-curated department list offered during
// visitor registration.
type Service struct {
	departments Repository
	logger      *logging.Logger
}

func NewService(departments Repository, logger *logging.Logger) (*Service, error) {
	if departments == nil {
		return nil, errors.New(errors.KindBootstrap, "directory.new", "department repository is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindBootstrap, "directory.new", "logger is required")
	}
	return &Service{departments: departments, logger: logger}, nil
}

// List returns departments in insertion order.
func (s *Service) List(ctx context.Context) ([]models.Department, error) {
	return s.departments.List(ctx)
}

// Create adds a department. Duplicate detection is exact-match, unlike the
// case-insensitive account check.
func (s *Service) Create(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.KindDomain, "directory.create", "department name is required")
	}

	existing, err := s.departments.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.KindConflict, "directory.create", "department already exists")
	}

	department := &models.Department{Name: name}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, err
	}

	s.logger.InfoTag("STORE", "created department %q", department.Name)
	return department, nil
}

// Delete removes a department; absent ids succeed as a no-op. Visit records
// keep their free-text department name, so deletion never rewrites history.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.departments.Delete(ctx, id)
}
