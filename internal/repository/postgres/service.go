package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
)

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (id, name, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.Name,
		service.Price,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NotFound("service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, price = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Price,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("service", nil)
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("service", nil)
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM services
		ORDER BY name ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
