package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Services      *ServiceRepository
	Projects      *ProjectRepository
	Tasks         *TaskRepository
	Notifications *NotificationRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Services:      NewServiceRepository(pool),
		Projects:      NewProjectRepository(pool),
		Tasks:         NewTaskRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}
