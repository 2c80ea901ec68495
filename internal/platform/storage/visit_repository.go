package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
)

// VisitRepository persists visit records. Records are append-only.
type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(ctx context.Context, visit *models.VisitRecord) error {
	if err := r.db.WithContext(ctx).Create(visit).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "visit.create", "failed to create visit record", err)
	}
	return nil
}

// FindByID returns (nil, nil) when absent.
func (r *VisitRepository) FindByID(ctx context.Context, id uint) (*models.VisitRecord, error) {
	var visit models.VisitRecord
	err := r.db.WithContext(ctx).First(&visit, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "visit.find_by_id", "failed to find visit record", err)
	}
	return &visit, nil
}

// ListByRange returns visits created within [from, to], optionally restricted
// to an exact department match. An empty result is a valid outcome.
func (r *VisitRepository) ListByRange(ctx context.Context, from, to time.Time, department string) ([]models.VisitRecord, error) {
	q := r.db.WithContext(ctx).Where("created_at BETWEEN ? AND ?", from, to)
	if department != "" {
		q = q.Where("department = ?", department)
	}

	visits := make([]models.VisitRecord, 0)
	if err := q.Order("created_at").Find(&visits).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "visit.list_by_range", "failed to list visit records", err)
	}
	return visits, nil
}
