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

// TaskRepository implements port.TaskRepository using PostgreSQL.
type TaskRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTaskRepository wires a PostgreSQL-backed task repository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var taskColumns = []string{
	"id",
	"title",
	"description",
	"status",
	"priority",
	"deadline",
	"created_by",
	"project_id",
	"service_id",
	"tags",
	"time_tracked",
	"estimated_time",
	"created_at",
	"updated_at",
	"completed_at",
}

// Create inserts a new task row and its assignment links.
func (r *TaskRepository) Create(ctx context.Context, task domain.Task) error {
	stmt, args, err := r.builder.Insert("oddl.tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.Deadline,
			task.CreatedBy,
			task.ProjectID,
			task.ServiceID,
			task.Tags,
			task.TimeTracked,
			task.EstimatedTime,
			task.CreatedAt,
			task.UpdatedAt,
			task.CompletedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert task sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	if len(task.AssignedTo) > 0 {
		if err := r.SetAssignees(ctx, task.ID, task.AssignedTo); err != nil {
			return err
		}
	}

	return nil
}

func (r *TaskRepository) scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task        domain.Task
		projectID   sql.NullString
		completedAt *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.Deadline,
		&task.CreatedBy,
		&projectID,
		&task.ServiceID,
		&task.Tags,
		&task.TimeTracked,
		&task.EstimatedTime,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.CompletedAt = completedAt
	if projectID.Valid {
		val := projectID.String
		task.ProjectID = &val
	}

	return &task, nil
}

// GetByID retrieves a task with its assignment list.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	stmt, args, err := r.builder.Select(taskColumns...).
		From("oddl.tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task sql: %w", err)
	}

	task, err := r.scanTask(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	assignees, err := r.listAssignees(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = assignees

	return task, nil
}

// Update modifies an existing task's fields.
func (r *TaskRepository) Update(ctx context.Context, task domain.Task) error {
	stmt, args, err := r.builder.Update("oddl.tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", task.Status).
		Set("priority", task.Priority).
		Set("deadline", task.Deadline).
		Set("project_id", task.ProjectID).
		Set("service_id", task.ServiceID).
		Set("tags", task.Tags).
		Set("time_tracked", task.TimeTracked).
		Set("estimated_time", task.EstimatedTime).
		Set("updated_at", task.UpdatedAt).
		Set("completed_at", task.CompletedAt).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("oddl.tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete task sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns tasks with optional filtering and pagination.
func (r *TaskRepository) List(ctx context.Context, filter port.TaskFilter) ([]domain.Task, error) {
	query := r.builder.Select(taskColumns...).
		From("oddl.tasks").
		OrderBy("created_at DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.ProjectID != "" {
		query = query.Where(squirrel.Eq{"project_id": filter.ProjectID})
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
		return nil, fmt.Errorf("build list tasks sql: %w", err)
	}

	return r.queryTasks(ctx, stmt, args)
}

// ListDueBetween returns open tasks with deadlines inside (after, until].
func (r *TaskRepository) ListDueBetween(ctx context.Context, after, until time.Time) ([]domain.Task, error) {
	stmt, args, err := r.builder.Select(taskColumns...).
		From("oddl.tasks").
		Where(squirrel.Gt{"deadline": after}).
		Where(squirrel.LtOrEq{"deadline": until}).
		Where(squirrel.NotEq{"status": domain.TaskStatusCompleted}).
		OrderBy("deadline ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due tasks sql: %w", err)
	}

	return r.queryTasks(ctx, stmt, args)
}

func (r *TaskRepository) queryTasks(ctx context.Context, stmt string, args []any) ([]domain.Task, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	for i := range tasks {
		assignees, err := r.listAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].AssignedTo = assignees
	}

	return tasks, nil
}

// SetAssignees replaces the task's assignment list.
func (r *TaskRepository) SetAssignees(ctx context.Context, taskID string, userIDs []string) error {
	del, args, err := r.builder.Delete("oddl.task_assignees").
		Where(squirrel.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete task assignees sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, args...); err != nil {
		return fmt.Errorf("delete task assignees: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	insert := r.builder.Insert("oddl.task_assignees").
		Columns("task_id", "user_id")
	for _, userID := range userIDs {
		insert = insert.Values(taskID, userID)
	}

	stmt, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert task assignees sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert task assignees: %w", err)
	}

	return nil
}

func (r *TaskRepository) listAssignees(ctx context.Context, taskID string) ([]string, error) {
	stmt, args, err := r.builder.Select("user_id").
		From("oddl.task_assignees").
		Where(squirrel.Eq{"task_id": taskID}).
		OrderBy("user_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task assignees sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query task assignees: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task assignee: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task assignees: %w", err)
	}

	return ids, nil
}

// AddComment inserts a task comment.
func (r *TaskRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	stmt, args, err := r.builder.Insert("oddl.task_comments").
		Columns("id", "task_id", "content", "author_id", "mentions", "parent_id", "is_edited", "created_at", "edited_at").
		Values(
			comment.ID,
			comment.TaskID,
			comment.Content,
			comment.AuthorID,
			comment.Mentions,
			comment.ParentID,
			comment.IsEdited,
			comment.CreatedAt,
			comment.EditedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert comment sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// ListComments returns a task's comments in creation order.
func (r *TaskRepository) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	stmt, args, err := r.builder.Select("id", "task_id", "content", "author_id", "mentions", "parent_id", "is_edited", "created_at", "edited_at").
		From("oddl.task_comments").
		Where(squirrel.Eq{"task_id": taskID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var (
			comment  domain.Comment
			parentID sql.NullString
			editedAt *time.Time
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TaskID,
			&comment.Content,
			&comment.AuthorID,
			&comment.Mentions,
			&parentID,
			&comment.IsEdited,
			&comment.CreatedAt,
			&editedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if parentID.Valid {
			val := parentID.String
			comment.ParentID = &val
		}
		comment.EditedAt = editedAt
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

var _ port.TaskRepository = (*TaskRepository)(nil)
