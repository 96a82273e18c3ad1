package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

// ServiceRepository implements port.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewServiceRepository wires a PostgreSQL-backed service repository.
func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new organizational unit.
func (r *ServiceRepository) Create(ctx context.Context, service domain.Service) error {
	stmt, args, err := r.builder.Insert("oddl.services").
		Columns("id", "name", "description", "head_id", "color", "workload_capacity").
		Values(service.ID, service.Name, service.Description, service.HeadID, service.Color, service.WorkloadCapacity).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert service sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert service: %w", err)
	}

	return nil
}

// GetByID retrieves a service by id, including its member roster.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "head_id", "color", "workload_capacity").
		From("oddl.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select service sql: %w", err)
	}

	var (
		service domain.Service
		headID  sql.NullString
	)

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&headID,
		&service.Color,
		&service.WorkloadCapacity,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}

	if headID.Valid {
		val := headID.String
		service.HeadID = &val
	}

	members, err := r.listMembers(ctx, service.ID)
	if err != nil {
		return nil, err
	}
	service.MemberIDs = members

	return &service, nil
}

// Update modifies an existing service.
func (r *ServiceRepository) Update(ctx context.Context, service domain.Service) error {
	stmt, args, err := r.builder.Update("oddl.services").
		Set("name", service.Name).
		Set("description", service.Description).
		Set("head_id", service.HeadID).
		Set("color", service.Color).
		Set("workload_capacity", service.WorkloadCapacity).
		Where(squirrel.Eq{"id": service.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a service.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("oddl.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete service sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns all services with their member rosters.
func (r *ServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "head_id", "color", "workload_capacity").
		From("oddl.services").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list services sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var (
			service domain.Service
			headID  sql.NullString
		)
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&headID,
			&service.Color,
			&service.WorkloadCapacity,
		); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		if headID.Valid {
			val := headID.String
			service.HeadID = &val
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	for i := range services {
		members, err := r.listMembers(ctx, services[i].ID)
		if err != nil {
			return nil, err
		}
		services[i].MemberIDs = members
	}

	return services, nil
}

func (r *ServiceRepository) listMembers(ctx context.Context, serviceID string) ([]string, error) {
	stmt, args, err := r.builder.Select("id").
		From("oddl.users").
		Where(squirrel.Eq{"service_id": serviceID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select service members sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query service members: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan service member: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service members: %w", err)
	}

	return ids, nil
}

var _ port.ServiceRepository = (*ServiceRepository)(nil)
