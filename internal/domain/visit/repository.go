package visit

import (
	"context"
	"time"

	"gatepass-server-go/internal/models"
)

// Repository persists visit records. Implementations return (nil, nil) when
// a lookup finds nothing.
type Repository interface {
	Create(ctx context.Context, visit *models.VisitRecord) error
	FindByID(ctx context.Context, id uint) (*models.VisitRecord, error)
	ListByRange(ctx context.Context, from, to time.Time, department string) ([]models.VisitRecord, error)
}
