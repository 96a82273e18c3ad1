package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

// ProjectRepository implements port.ProjectRepository using PostgreSQL.
// Membership is stored once in oddl.project_members; the aliased fields on
// domain.Project exist for inbound payload compatibility, and reads populate
// the canonical MemberIDs field only.
type ProjectRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProjectRepository wires a PostgreSQL-backed project repository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var projectColumns = []string{
	"id",
	"name",
	"description",
	"status",
	"progress",
	"color",
	"risk_level",
	"created_by",
	"chef_id",
	"service_id",
	"start_date",
	"end_date",
	"created_at",
	"updated_at",
}

// Create inserts a new project with its membership and service links.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Insert("oddl.projects").
		Columns(projectColumns...).
		Values(
			project.ID,
			project.Name,
			project.Description,
			project.Status,
			project.Progress,
			project.Color,
			project.RiskLevel,
			project.CreatedBy,
			project.ChefID,
			project.ServiceID,
			project.StartDate,
			project.EndDate,
			project.CreatedAt,
			project.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert project sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	members := project.MemberSet()
	if len(members) > 0 {
		ids := make([]string, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		if err := r.SetMembers(ctx, project.ID, ids); err != nil {
			return err
		}
	}

	if err := r.setSecondaryServices(ctx, project.ID, project.ServiceIDs); err != nil {
		return err
	}

	return nil
}

func (r *ProjectRepository) scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		project   domain.Project
		chefID    sql.NullString
		riskLevel sql.NullString
		startDate *time.Time
		endDate   *time.Time
	)

	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Progress,
		&project.Color,
		&riskLevel,
		&project.CreatedBy,
		&chefID,
		&project.ServiceID,
		&startDate,
		&endDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	project.StartDate = startDate
	project.EndDate = endDate
	if chefID.Valid {
		val := chefID.String
		project.ChefID = &val
	}
	if riskLevel.Valid {
		project.RiskLevel = riskLevel.String
	}

	return &project, nil
}

// GetByID retrieves a project with membership and secondary services.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	stmt, args, err := r.builder.Select(projectColumns...).
		From("oddl.projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	project, err := r.scanProject(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	if err := r.attachRelations(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Update modifies an existing project's fields.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Update("oddl.projects").
		Set("name", project.Name).
		Set("description", project.Description).
		Set("status", project.Status).
		Set("progress", project.Progress).
		Set("color", project.Color).
		Set("risk_level", project.RiskLevel).
		Set("chef_id", project.ChefID).
		Set("service_id", project.ServiceID).
		Set("start_date", project.StartDate).
		Set("end_date", project.EndDate).
		Set("updated_at", project.UpdatedAt).
		Where(squirrel.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update project sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if err := r.setSecondaryServices(ctx, project.ID, project.ServiceIDs); err != nil {
		return err
	}

	return nil
}

// Delete removes a project and its membership rows.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("oddl.projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns projects with optional filtering and pagination.
func (r *ProjectRepository) List(ctx context.Context, filter port.ProjectFilter) ([]domain.Project, error) {
	query := r.builder.Select(projectColumns...).
		From("oddl.projects").
		OrderBy("created_at DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.ServiceID != "" {
		query = query.Where(squirrel.Eq{"service_id": filter.ServiceID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	for i := range projects {
		if err := r.attachRelations(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// SetMembers replaces the project's team roster.
func (r *ProjectRepository) SetMembers(ctx context.Context, projectID string, memberIDs []string) error {
	del, args, err := r.builder.Delete("oddl.project_members").
		Where(squirrel.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project members sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, args...); err != nil {
		return fmt.Errorf("delete project members: %w", err)
	}

	if len(memberIDs) == 0 {
		return nil
	}

	insert := r.builder.Insert("oddl.project_members").
		Columns("project_id", "user_id")
	for _, userID := range memberIDs {
		insert = insert.Values(projectID, userID)
	}

	stmt, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert project members sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project members: %w", err)
	}

	return nil
}

func (r *ProjectRepository) setSecondaryServices(ctx context.Context, projectID string, serviceIDs []string) error {
	del, args, err := r.builder.Delete("oddl.project_services").
		Where(squirrel.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project services sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, args...); err != nil {
		return fmt.Errorf("delete project services: %w", err)
	}

	if len(serviceIDs) == 0 {
		return nil
	}

	insert := r.builder.Insert("oddl.project_services").
		Columns("project_id", "service_id")
	for _, serviceID := range serviceIDs {
		insert = insert.Values(projectID, serviceID)
	}

	stmt, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert project services sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project services: %w", err)
	}

	return nil
}

func (r *ProjectRepository) attachRelations(ctx context.Context, project *domain.Project) error {
	memberStmt, args, err := r.builder.Select("user_id").
		From("oddl.project_members").
		Where(squirrel.Eq{"project_id": project.ID}).
		OrderBy("user_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select project members sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, memberStmt, args...)
	if err != nil {
		return fmt.Errorf("query project members: %w", err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate project members: %w", err)
	}
	project.MemberIDs = members

	serviceStmt, args, err := r.builder.Select("service_id").
		From("oddl.project_services").
		Where(squirrel.Eq{"project_id": project.ID}).
		OrderBy("service_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select project services sql: %w", err)
	}

	serviceRows, err := r.exec.Query(ctx, serviceStmt, args...)
	if err != nil {
		return fmt.Errorf("query project services: %w", err)
	}
	defer serviceRows.Close()

	serviceIDs := make([]string, 0)
	for serviceRows.Next() {
		var id string
		if err := serviceRows.Scan(&id); err != nil {
			return fmt.Errorf("scan project service: %w", err)
		}
		serviceIDs = append(serviceIDs, id)
	}
	if err := serviceRows.Err(); err != nil {
		return fmt.Errorf("iterate project services: %w", err)
	}
	project.ServiceIDs = serviceIDs

	return nil
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
