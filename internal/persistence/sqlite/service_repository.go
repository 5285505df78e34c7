package sqlite

import (
	"context"
	"time"

	"github.com/example/booking-scheduler/internal/persistence"
)

// ServiceRepository implements persistence.ServiceRepository using SQLite.
type ServiceRepository struct {
	pool *ConnectionPool
}

// NewServiceRepository creates a new SQLite service repository.
func NewServiceRepository(pool *ConnectionPool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// CreateService inserts a service catalog entry.
func (r *ServiceRepository) CreateService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if service.CreatedAt.IsZero() {
		service.CreatedAt = now
	}
	if service.UpdatedAt.IsZero() {
		service.UpdatedAt = service.CreatedAt
	}

	query := `
		INSERT INTO services (id, business_id, name, duration_mins, price_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		service.ID,
		service.BusinessID,
		service.Name,
		service.DurationMins,
		service.PriceCents,
		encodeTime(service.CreatedAt),
		encodeTime(service.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetService retrieves a service scoped to a business.
func (r *ServiceRepository) GetService(ctx context.Context, businessID, serviceID string) (persistence.Service, error) {
	query := `
		SELECT id, business_id, name, duration_mins, price_cents, created_at, updated_at
		FROM services
		WHERE id = ? AND business_id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, serviceID, businessID)

	var (
		service   persistence.Service
		createdAt string
		updatedAt string
	)
	err := row.Scan(&service.ID, &service.BusinessID, &service.Name, &service.DurationMins, &service.PriceCents, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Service{}, mapError(err)
	}
	if service.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Service{}, err
	}
	if service.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Service{}, err
	}
	return service, nil
}
