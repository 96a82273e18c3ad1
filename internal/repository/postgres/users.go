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

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{pool: r.pool, exec: tx, builder: r.builder}
}

var userColumns = []string{
	"id",
	"username",
	"email",
	"first_name",
	"last_name",
	"password_hash",
	"password_algo",
	"role",
	"service_id",
	"phone",
	"bio",
	"is_active",
	"last_login",
	"created_at",
}

// Create inserts a new user row and its permission codenames.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	query := r.builder.Insert("oddl.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.PasswordHash,
			user.PasswordAlgo,
			user.Role,
			user.ServiceID,
			user.Phone,
			user.Bio,
			user.IsActive,
			user.LastLogin,
			user.CreatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if len(user.Permissions) > 0 {
		if err := r.SetPermissions(ctx, user.ID, user.Permissions); err != nil {
			return err
		}
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		serviceID sql.NullString
		phone     sql.NullString
		bio       sql.NullString
		lastLogin *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.PasswordAlgo,
		&user.Role,
		&serviceID,
		&phone,
		&bio,
		&user.IsActive,
		&lastLogin,
		&user.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.LastLogin = lastLogin
	if serviceID.Valid {
		val := serviceID.String
		user.ServiceID = &val
	}
	if phone.Valid {
		val := phone.String
		user.Phone = &val
	}
	if bio.Valid {
		val := bio.String
		user.Bio = &val
	}

	return &user, nil
}

// GetByID retrieves a user by identifier, including permission codenames.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From("oddl.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	perms, err := r.listPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Permissions = perms

	return user, nil
}

// GetByIdentifier retrieves a user by username or email.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From("oddl.users").
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by identifier sql: %w", err)
	}

	user, err := r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	perms, err := r.listPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Permissions = perms

	return user, nil
}

// Update modifies an existing user's profile fields.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Update("oddl.users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("role", user.Role).
		Set("service_id", user.ServiceID).
		Set("phone", user.Phone).
		Set("bio", user.Bio).
		Set("is_active", user.IsActive).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns users with optional filtering and pagination.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	query := r.builder.Select(userColumns...).
		From("oddl.users").
		OrderBy("created_at ASC")

	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"role": filter.Role})
	}
	if filter.ServiceID != "" {
		query = query.Where(squirrel.Eq{"service_id": filter.ServiceID})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SetPermissions replaces the user's permission codenames.
func (r *UserRepository) SetPermissions(ctx context.Context, userID string, codenames []string) error {
	del, args, err := r.builder.Delete("oddl.user_permissions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user permissions sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, args...); err != nil {
		return fmt.Errorf("delete user permissions: %w", err)
	}

	if len(codenames) == 0 {
		return nil
	}

	insert := r.builder.Insert("oddl.user_permissions").
		Columns("user_id", "codename")
	for _, codename := range codenames {
		insert = insert.Values(userID, codename)
	}

	stmt, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert user permissions sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user permissions: %w", err)
	}

	return nil
}

func (r *UserRepository) listPermissions(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.Select("codename").
		From("oddl.user_permissions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("codename ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user permissions: %w", err)
	}
	defer rows.Close()

	codenames := make([]string, 0)
	for rows.Next() {
		var codename string
		if err := rows.Scan(&codename); err != nil {
			return nil, fmt.Errorf("scan user permission: %w", err)
		}
		codenames = append(codenames, codename)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user permissions: %w", err)
	}

	return codenames, nil
}

// RecordLogin stamps the last successful login time.
func (r *UserRepository) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	stmt, args, err := r.builder.Update("oddl.users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record login sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
